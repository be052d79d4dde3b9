package registryio

import (
	"encoding/json"

	"github.com/blockberries/witness/pkg/format"
)

// MarshalJSON renders reg as JSON. encoding/json already sorts
// map[string]any keys alphabetically during marshaling, which keeps
// version-control diffs stable across runs without this package needing
// to build an ordered tree the way MarshalYAML does.
func MarshalJSON(reg *format.Registry) ([]byte, error) {
	return json.MarshalIndent(registryToAny(reg), "", "  ")
}

// UnmarshalJSON parses a JSON registry document.
func UnmarshalJSON(data []byte) (*format.Registry, error) {
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return registryFromAny(generic)
}
