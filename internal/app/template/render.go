// Package template renders {{var}} placeholders in sample arguments and notebook parameters.
package template

import (
	"fmt"
	"strings"

	"github.com/CarterFendley/pipelines/internal/domain"
)

// Variable names available to argument and notebook parameter templates.
const (
	VarOutput         = "output"
	VarHost           = "host"
	VarTestName       = "test_name"
	VarExperimentName = "experiment_name"
	VarImagePrefix    = "target_image_prefix"
)

// RenderString replaces {{VAR}} placeholders with vars values.
// It returns an error if a variable is missing or a placeholder is malformed.
func RenderString(input string, vars map[string]string) (string, error) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", renderError(input, "unclosed template expression")
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", renderError(input, "empty template expression")
		}

		value, ok := vars[key]
		if !ok {
			return "", renderError(input, fmt.Sprintf("missing variable %q", key))
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

// RenderValue renders every string found in v, descending into maps and lists.
// Other scalars are returned unchanged.
func RenderValue(v any, vars map[string]string) (any, error) {
	switch t := v.(type) {
	case string:
		return RenderString(t, vars)
	case map[string]any:
		return RenderMap(t, vars)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, err := RenderValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// RenderMap returns a rendered copy of m. The input is not mutated.
func RenderMap(m map[string]any, vars map[string]string) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		r, err := RenderValue(v, vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = r
	}
	return out, nil
}

func renderError(input, msg string) error {
	return &domain.OpError{
		Op:   "template.render",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%s in %q: %w", msg, input, domain.ErrInvalidConfig),
	}
}
