package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// UnmarshalRecord decodes one property record from JSON. Numbers decode
// as json.Number so unsigned 64-bit values survive without float
// rounding. Unmarshal turns a JSON null into a nil pointer, erasing the
// difference between a null default and no default, so the explicit
// null is restored from the raw keys.
func UnmarshalRecord(data []byte) (*Record, error) {
	rec := &Record{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("failed to decode property record: %w", err)
	}

	if rec.Default == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err == nil {
			if raw, ok := keys["default"]; ok && string(raw) == "null" {
				rec.SetDefault(nil)
			}
		}
	}

	return rec, nil
}

// UnmarshalDocument decodes a document produced by Marshal.
func UnmarshalDocument(data []byte) (*Document, error) {
	var raw struct {
		Properties  map[string]json.RawMessage `json:"properties"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	doc := NewDocument()
	if raw.Definitions != nil {
		doc.Definitions = raw.Definitions
	}
	for name, rawRec := range raw.Properties {
		rec, err := UnmarshalRecord(rawRec)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		doc.Properties[name] = rec
	}
	return doc, nil
}

// ReadDocument loads a document from a JSON file on disk.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}
