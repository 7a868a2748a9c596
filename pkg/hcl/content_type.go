package hcl

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ContentTypeHCL is the custom MIME type for HCL plans
	ContentTypeHCL = "application/vnd.hcl"

	// ContentTypeJSON is the standard MIME type for JSON
	ContentTypeJSON = "application/json"

	// ContentTypeYAML is used for hand-written YAML plans
	ContentTypeYAML = "application/yaml"

	// ContentTypeText is the one-stream-per-line import format
	ContentTypeText = "text/plain"
)

var knownMediaTypes = map[string]string{
	ContentTypeHCL:       ContentTypeHCL,
	ContentTypeJSON:      ContentTypeJSON,
	ContentTypeYAML:      ContentTypeYAML,
	"application/x-yaml": ContentTypeYAML,
	"text/yaml":          ContentTypeYAML,
	ContentTypeText:      ContentTypeText,
	"text/csv":           ContentTypeText,
}

// DetectContentType determines the import format from the Content-Type header,
// falling back to inspecting the body. The body is left readable.
func DetectContentType(r *http.Request) (string, error) {
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if known, ok := knownMediaTypes[mediaType]; ok {
				return known, nil
			}
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return DetectContent(body), nil
}

// DetectContent guesses the format of body. JSON starts with { or [; HCL must parse
// and contain an assignment or block; YAML must be a mapping with a streams or
// total_duration key. Everything else is plain text.
func DetectContent(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ContentTypeText
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ContentTypeJSON
	}
	if bytes.ContainsAny(trimmed, "={") && IsHCL(trimmed) {
		return ContentTypeHCL
	}
	if isYAMLPlan(trimmed) {
		return ContentTypeYAML
	}
	return ContentTypeText
}

func isYAMLPlan(body []byte) bool {
	var top map[string]any
	if err := yaml.Unmarshal(body, &top); err != nil {
		return false
	}
	_, hasStreams := top["streams"]
	_, hasTotal := top["total_duration"]
	return hasStreams || hasTotal
}

// IsHCLBasedOnExtension checks if the filename has an HCL extension
func IsHCLBasedOnExtension(filename string) bool {
	return strings.HasSuffix(filename, ".hcl") ||
		strings.HasSuffix(filename, ".tf") ||
		strings.HasSuffix(filename, ".tfvars")
}

// ContentTypeForFile maps a file name to an import format.
func ContentTypeForFile(filename string) string {
	if IsHCLBasedOnExtension(filename) {
		return ContentTypeHCL
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return ContentTypeJSON
	case ".yaml", ".yml":
		return ContentTypeYAML
	default:
		return ContentTypeText
	}
}
