// Package yamljson converts decoded YAML values into JSON-compatible values.
package yamljson

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Normalize rewrites map[any]any nodes as map[string]any so the value can be JSON-encoded.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n, err := Normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v", k)
			}
			n, err := Normalize(val)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			n, err := Normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

// Convert re-encodes a single YAML document as JSON. An empty document becomes null.
func Convert(b []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	norm, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(norm)
}
