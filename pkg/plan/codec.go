package plan

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EncodeJSON is the persisted blob format.
func EncodeJSON(doc Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// DecodeJSON parses and validates a persisted blob.
func DecodeJSON(b []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// EncodeYAML renders a hand-editable plan file.
func EncodeYAML(doc Document) ([]byte, error) {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return b, nil
}

// DecodeYAML parses a plan file. Streams without an id are given one.
func DecodeYAML(b []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode yaml: %w", err)
	}
	for i := range doc.Streams {
		if doc.Streams[i].ID == "" {
			doc.Streams[i].ID = NewStreamID()
		}
		if doc.Streams[i].Kind == "" {
			doc.Streams[i].Kind = KindOneShot
		}
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}
