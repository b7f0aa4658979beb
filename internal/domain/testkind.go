package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TestKind tells the launcher how a sample source must be prepared before compilation.
type TestKind string

const (
	KindScript   TestKind = "script"
	KindNotebook TestKind = "notebook"
)

const (
	ScriptExt   = ".py"
	NotebookExt = ".ipynb"
)

// KindFromPath maps a test source path onto its TestKind.
// The match is exact: only ".py" and ".ipynb" are recognized.
func KindFromPath(path string) (TestKind, error) {
	ext := filepath.Ext(path)
	switch ext {
	case ScriptExt:
		return KindScript, nil
	case NotebookExt:
		return KindNotebook, nil
	default:
		return "", &OpError{
			Op:   "domain.kind_from_path",
			Kind: KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("%w: '%s'", ErrUnsupportedExtension, ext),
		}
	}
}

// TestNameFromPath returns the file name without directory and extension.
func TestNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExperimentName is the experiment every run of a sample test is filed under.
func ExperimentName(testName string) string {
	return testName + "-test"
}

// ResultFileName is the junit file name for a sample test.
func ResultFileName(testName string) string {
	return fmt.Sprintf("junit_Sample%sOutput.xml", testName)
}
