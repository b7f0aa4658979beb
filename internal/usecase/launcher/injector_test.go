package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarterFendley/pipelines/internal/infra/inject"
)

func TestComponentInjector_PatternsMatchOnlyTaggedRefs(t *testing.T) {
	c := ComponentInjector{Images: ComponentImages{GCP: "G", ConfusionMatrix: "CM", ROC: "ROC"}}
	subs := c.Substitutions(GCPImageTest)
	require.Len(t, subs, 3)

	cases := map[string]string{
		"gcr.io/ml-pipeline/ml-pipeline/ml-pipeline-local-confusion-matrix:1.0.0-rc.3": "CM",
		"gcr.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc:latest":                 "ROC",
		"gcr.io/ml-pipeline/ml-pipeline-gcp:0.2.5":                                    "G",
		// untagged and differently hosted references are left alone
		"gcr.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc":         "gcr.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc",
		"gcrxio/ml-pipeline/ml-pipeline-gcp:0.2.5":                     "gcrxio/ml-pipeline/ml-pipeline-gcp:0.2.5",
		"docker.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc:1.0":  "docker.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc:1.0",
		"args: [--output, gs://bucket/ml-pipeline-local-roc:out]":      "args: [--output, gs://bucket/ml-pipeline-local-roc:out]",
		"image: mirror.gcr.io/ml-pipeline/ml-pipeline-gcp:1":           "image: mirror.gcr.io/ml-pipeline/ml-pipeline-gcp:1",
		`image: "gcr.io/ml-pipeline/ml-pipeline-gcp:0.2.5"`:            `image: "G"`,
		"  - gcr.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc:1.0": "  - ROC",
	}
	for in, want := range cases {
		assert.Equal(t, want, inject.Line(in, subs), in)
	}
}

func TestComponentInjector_GCPOnlyForItsTest(t *testing.T) {
	c := ComponentInjector{Images: ComponentImages{GCP: "G", ConfusionMatrix: "CM", ROC: "ROC"}}
	assert.Len(t, c.Substitutions("other_sample"), 2)
}

func TestComponentInjector_SkipsEmptyImages(t *testing.T) {
	c := ComponentInjector{Images: ComponentImages{ROC: "ROC"}}
	assert.Len(t, c.Substitutions(GCPImageTest), 1)

	dir := t.TempDir()
	p := filepath.Join(dir, "a.yaml")
	content := "image: gcr.io/ml-pipeline/ml-pipeline-gcp:0.2.5\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	require.NoError(t, ComponentInjector{}.Inject(p, GCPImageTest))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
}

func TestNoopInjector(t *testing.T) {
	assert.NoError(t, NoopInjector{}.Inject("/does/not/matter", "x"))
}
