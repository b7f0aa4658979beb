package pipelineapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/yamljson"
)

// Package is a compiled pipeline artifact. The compiler emits the pipeline spec as the
// first YAML document and, when platform config is present, a platform spec as the second.
type Package struct {
	PipelineSpec map[string]any
	PlatformSpec map[string]any
}

// LoadPackage reads a compiled artifact from disk.
func LoadPackage(path string) (Package, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Package{}, &domain.OpError{
			Op:   "pipelineapi.load_package",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	pkg, err := ParsePackage(b)
	if err != nil {
		return Package{}, &domain.OpError{
			Op:   "pipelineapi.load_package",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return pkg, nil
}

// ParsePackage decodes the documents of a compiled artifact.
func ParsePackage(b []byte) (Package, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))

	var docs []map[string]any
	for {
		var raw any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Package{}, err
		}
		if raw == nil {
			continue
		}
		norm, err := yamljson.Normalize(raw)
		if err != nil {
			return Package{}, err
		}
		m, ok := norm.(map[string]any)
		if !ok {
			return Package{}, fmt.Errorf("document %d is not a mapping", len(docs))
		}
		docs = append(docs, m)
	}

	if len(docs) == 0 {
		return Package{}, errors.New("empty pipeline package")
	}
	if _, ok := docs[0]["root"]; !ok {
		return Package{}, errors.New("pipeline spec has no root DAG")
	}

	pkg := Package{PipelineSpec: docs[0]}
	if len(docs) > 1 {
		pkg.PlatformSpec = docs[1]
	}
	return pkg, nil
}

// SetCaching overrides cachingOptions.enableCache on every task of the root DAG and of
// every DAG component, so nested pipelines are covered too. It returns the number of tasks touched.
func (p Package) SetCaching(enabled bool) int {
	n := setDAGCaching(p.PipelineSpec["root"], enabled)

	components, _ := p.PipelineSpec["components"].(map[string]any)
	for _, c := range components {
		n += setDAGCaching(c, enabled)
	}
	return n
}

func setDAGCaching(component any, enabled bool) int {
	c, ok := component.(map[string]any)
	if !ok {
		return 0
	}
	dag, ok := c["dag"].(map[string]any)
	if !ok {
		return 0
	}
	tasks, ok := dag["tasks"].(map[string]any)
	if !ok {
		return 0
	}

	n := 0
	for _, t := range tasks {
		task, ok := t.(map[string]any)
		if !ok {
			continue
		}
		opts, ok := task["cachingOptions"].(map[string]any)
		if !ok {
			opts = map[string]any{}
			task["cachingOptions"] = opts
		}
		opts["enableCache"] = enabled
		n++
	}
	return n
}

// requestSpec is the value sent as pipeline_spec when creating a run.
func (p Package) requestSpec() any {
	if p.PlatformSpec == nil {
		return p.PipelineSpec
	}
	return map[string]any{
		"pipeline_spec": p.PipelineSpec,
		"platform_spec": p.PlatformSpec,
	}
}

// DisplayName is the pipeline name recorded in the spec, if any.
func (p Package) DisplayName() string {
	info, _ := p.PipelineSpec["pipelineInfo"].(map[string]any)
	name, _ := info["name"].(string)
	return name
}
