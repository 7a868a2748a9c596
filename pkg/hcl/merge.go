package hcl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
)

// MergeHCLFiles combines multiple HCL files into a single HCL file body,
// the way Terraform loads every .tf file in a directory.
func MergeHCLFiles(filePaths []string) (*hcl.File, error) {
	parser := hclparse.NewParser()
	var mergedContent bytes.Buffer

	for _, path := range filePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		mergedContent.Write(content)
		mergedContent.WriteString("\n")
	}

	file, diags := parser.ParseHCL(mergedContent.Bytes(), "merged.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse merged HCL content: %s", diags.Error())
	}
	return file, nil
}

// ParseDocumentFiles parses a plan split across several files. Header attributes
// may appear in only one of them.
func ParseDocumentFiles(filePaths []string) (*plan.Document, error) {
	file, err := MergeHCLFiles(filePaths)
	if err != nil {
		return nil, err
	}
	return decodeFile(file)
}

// ParseHCLDirectory parses every .hcl file in dirPath, in name order, as one plan.
func ParseHCLDirectory(dirPath string) (*plan.Document, error) {
	var hclFiles []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && (strings.HasSuffix(info.Name(), ".hcl") || strings.HasSuffix(info.Name(), ".tf")) {
			hclFiles = append(hclFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no HCL files found in directory %s", dirPath)
	}
	sort.Strings(hclFiles)

	return ParseDocumentFiles(hclFiles)
}
