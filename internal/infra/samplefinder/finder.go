// Package samplefinder locates the sample-test directory, the one holding config/default.config.yaml.
package samplefinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CarterFendley/pipelines/internal/domain"
)

// DefaultMarker is the file whose presence identifies a sample-test directory.
const DefaultMarker = "config/default.config.yaml"

// DefaultSubdir is where the sample-test directory lives inside a repository checkout.
const DefaultSubdir = "test/sample-test"

// Finder searches upward from a start directory.
type Finder struct {
	Marker string
	Subdir string
}

func NewFinder() *Finder {
	return &Finder{Marker: DefaultMarker, Subdir: DefaultSubdir}
}

// FindRoot returns the first directory, walking upward from startDir, that either holds
// Marker itself or holds it under Subdir.
func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "samplefinder.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "samplefinder.findroot",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// If user passes a file path, use its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		if exists(filepath.Join(cur, f.Marker)) {
			return cur, nil
		}
		if f.Subdir != "" {
			nested := filepath.Join(cur, f.Subdir)
			if exists(filepath.Join(nested, f.Marker)) {
				return nested, nil
			}
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", &domain.OpError{
				Op:   "samplefinder.findroot",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
