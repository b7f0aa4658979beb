package ports

import "github.com/CarterFendley/pipelines/internal/domain"

// ConfigLoader loads sample test configuration from a source (e.g., filesystem).
type ConfigLoader interface {
	// LoadDefault loads and validates the shared default config. Any failure is fatal.
	LoadDefault() (domain.TestConfig, error)

	// LoadForTest layers <testName>.config.yaml on top of base. The returned warning is
	// non-nil when the per-test config was missing or invalid and base was used instead.
	LoadForTest(base domain.TestConfig, testName string) (cfg domain.TestConfig, warning error)
}
