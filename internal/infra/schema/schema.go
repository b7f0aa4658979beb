// Package schema validates YAML documents against a JSON Schema that is itself
// written in YAML.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/yamljson"
)

// Violation is a single schema failure.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// ValidationError lists every violation found in one document.
type ValidationError struct {
	Path       string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s does not match schema: %s", e.Path, strings.Join(parts, "; "))
}

// Validator is a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
	source string
}

// Compile reads a YAML-encoded JSON Schema from path.
func Compile(path string) (*Validator, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "schema.compile",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	return CompileBytes(path, b)
}

// CompileBytes compiles a YAML-encoded JSON Schema. name is used in errors only.
func CompileBytes(name string, b []byte) (*Validator, error) {
	doc, err := yamljson.Convert(b)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "schema.compile",
			Kind: domain.KindInvalidConfig,
			Path: name,
			Err:  err,
		}
	}

	const url = "mem://schema.config.json"
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, &domain.OpError{
			Op:   "schema.compile",
			Kind: domain.KindInvalidConfig,
			Path: name,
			Err:  err,
		}
	}

	s, err := c.Compile(url)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "schema.compile",
			Kind: domain.KindInvalidConfig,
			Path: name,
			Err:  err,
		}
	}
	return &Validator{schema: s, source: name}, nil
}

// ValidateFile reads and validates the YAML document at path.
func (v *Validator) ValidateFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &domain.OpError{
			Op:   "schema.validate",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	return v.ValidateBytes(path, b)
}

// ValidateBytes validates a YAML document. Schema violations are reported as *ValidationError
// wrapped in an OpError of kind invalid_config.
func (v *Validator) ValidateBytes(path string, b []byte) error {
	doc, err := yamljson.Convert(b)
	if err != nil {
		return &domain.OpError{
			Op:   "schema.validate",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return &domain.OpError{
			Op:   "schema.validate",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if err := v.schema.Validate(inst); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return &domain.OpError{
				Op:   "schema.validate",
				Kind: domain.KindExecution,
				Path: path,
				Err:  err,
			}
		}
		return &domain.OpError{
			Op:   "schema.validate",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  &ValidationError{Path: path, Violations: flatten(verr)},
		}
	}
	return nil
}

// flatten keeps the leaf causes, which carry the actionable messages.
func flatten(root *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{Location: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}
