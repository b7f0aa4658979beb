package junit

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarterFendley/pipelines/internal/domain"
)

func TestWriteReport_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", domain.ResultFileName("sequential"))

	var r domain.TestReport
	r.Name = "sequential"
	r.Add("input generated yaml file", true, "", 0)
	r.Add("create pipeline run", true, "", 0)
	r.Add("job completion", false, "waiting for job completion failure", 90*time.Second)

	require.NoError(t, NewWriter().WriteReport(path, r))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "<?xml"))

	var doc xmlSuites
	require.NoError(t, xml.Unmarshal(b, &doc))
	require.Len(t, doc.Suites, 1)

	s := doc.Suites[0]
	assert.Equal(t, "sequential", s.Name)
	assert.Equal(t, 3, s.Tests)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, "90.000", s.Time)
	require.NotNil(t, s.Cases[2].Failure)
	assert.Equal(t, "waiting for job completion failure", s.Cases[2].Failure.Message)
	assert.Nil(t, s.Cases[0].Failure)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestMarshal_FailureWithoutMessage(t *testing.T) {
	r := domain.TestReport{Name: "x", Cases: []domain.TestCase{{Name: "exit code"}}}

	b, err := Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `<failure message="failed">`)
}
