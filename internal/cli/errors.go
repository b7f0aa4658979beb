package cli

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/schema"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// userMessage turns an error into a one-line hint followed by the full error.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	return hint(err) + ": " + err.Error()
}

func hint(err error) string {
	switch {
	case errors.Is(err, domain.ErrCredentials):
		return "Failed to get inverse proxy hostname"
	case errors.Is(err, domain.ErrCompileFailed):
		return "Pipeline compilation failed"
	case errors.Is(err, domain.ErrUnsupportedExtension):
		return "Unsupported test file"
	case errors.Is(err, domain.ErrCheckFailed):
		return "Sample test failed"
	}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return "Config does not match schema (" + filepath.Base(ve.Path) + ")"
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindNotFound:
			if strings.HasPrefix(oe.Op, "cli.sample_test_dir") {
				return "Sample-test directory not found"
			}
			return "Not found"
		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}
			if line := extractLine(err.Error()); line != "" {
				return "Invalid YAML at " + base + " line " + line
			}
			return "Invalid config " + base
		case domain.KindCredentials:
			return "Cluster credentials unavailable"
		}
	}
	return "Error"
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
