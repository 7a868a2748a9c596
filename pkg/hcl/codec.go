package hcl

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
)

// ErrUnknownFormat is returned for an export format other than text, json, yaml or hcl.
var ErrUnknownFormat = errors.New("unknown format")

// DecodePlan parses body according to contentType. Text imports replace the streams of
// the document returned by base, which is only called for text.
func DecodePlan(contentType string, body []byte, base func() plan.Document) (plan.Document, error) {
	switch contentType {
	case ContentTypeJSON:
		return plan.DecodeJSON(body)
	case ContentTypeYAML:
		return plan.DecodeYAML(body)
	case ContentTypeHCL:
		doc, err := ParseDocument(body)
		if err != nil {
			return plan.Document{}, err
		}
		return *doc, nil
	default:
		return plan.ImportText(bytes.NewReader(body), base())
	}
}

// EncodePlan renders doc in the named export format and returns its content type.
// An empty format means text.
func EncodePlan(doc plan.Document, format string) ([]byte, string, error) {
	switch format {
	case "", "text":
		return []byte(plan.ExportText(doc)), ContentTypeText + "; charset=utf-8", nil
	case "json":
		b, err := plan.EncodeJSON(doc)
		return b, ContentTypeJSON, err
	case "yaml":
		b, err := plan.EncodeYAML(doc)
		return b, ContentTypeYAML, err
	case "hcl":
		return FormatDocument(doc), ContentTypeHCL, nil
	default:
		return nil, "", fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// FormatContentType maps an import format name to its content type.
func FormatContentType(format string) (string, error) {
	switch format {
	case "hcl":
		return ContentTypeHCL, nil
	case "json":
		return ContentTypeJSON, nil
	case "yaml", "yml":
		return ContentTypeYAML, nil
	case "text", "txt", "csv":
		return ContentTypeText, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
