package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// Bundle is the structured export: the scalar property table, sanitized
// object/property name pairs mapped to numeric arrays, and the list of
// processed keys or intervals.
type Bundle struct {
	Scalars   []PropertyRow        `json:"scalars"`
	Arrays    map[string][]float64 `json:"arrays"`
	Processed []string             `json:"processed"`
}

// NewBundle returns an empty bundle ready to be filled.
func NewBundle() *Bundle {
	return &Bundle{Arrays: make(map[string][]float64)}
}

// AddArray stores values under the sanitized "<objectKey>.<property>" key.
func (b *Bundle) AddArray(objectKey, property string, values []float64) {
	b.Arrays[Sanitize(objectKey)+"."+Sanitize(property)] = values
}

// Write serializes the bundle as indented JSON.
func (b *Bundle) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}
