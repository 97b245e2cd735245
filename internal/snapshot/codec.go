package snapshot

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// exportAPI mirrors JSON.stringify: no HTML escaping, UTF-8 kept as is.
// Map keys are sorted so re-encoding a decoded export is byte-identical.
var exportAPI = sonic.Config{
	SortMapKeys:      true,
	NoNullSliceOrMap: true,
	CopyString:       true,
	ValidateString:   true,
}.Froze()

// Encode serializes the whole document as 2-space indented JSON.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("snapshot: nil document")
	}
	cp := doc.normalizedCopy()
	data, err := exportAPI.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// EncodeValue serializes any section value with the export rules.
func EncodeValue(v interface{}) ([]byte, error) {
	data, err := exportAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Decode parses an exported document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := exportAPI.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}
