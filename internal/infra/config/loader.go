package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/schema"
	"github.com/CarterFendley/pipelines/internal/ports"
)

const (
	DefaultConfigFile = "default.config.yaml"
	SchemaConfigFile  = "schema.config.yaml"
	testConfigSuffix  = ".config.yaml"
)

// Loader reads sample test configs from a config directory.
type Loader struct {
	dir         string
	defaultFile string
	schemaFile  string

	once      sync.Once
	validator *schema.Validator
	schemaErr error
}

type Option func(*Loader)

func withDefaultFile(name string) Option {
	return func(l *Loader) { l.defaultFile = name }
}

func withSchemaFile(name string) Option {
	return func(l *Loader) { l.schemaFile = name }
}

func NewLoader(configDir string, opts ...Option) *Loader {
	l := &Loader{
		dir:         configDir,
		defaultFile: DefaultConfigFile,
		schemaFile:  SchemaConfigFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.ConfigLoader = (*Loader)(nil)

// Dir is the config directory the loader reads from.
func (l *Loader) Dir() string { return l.dir }

// TestConfigPath is where the per-test config of testName lives.
func (l *Loader) TestConfigPath(testName string) string {
	return filepath.Join(l.dir, testName+testConfigSuffix)
}

func (l *Loader) LoadDefault() (domain.TestConfig, error) {
	path := filepath.Join(l.dir, l.defaultFile)
	cfg, err := l.load(path, domain.DefaultTestConfig())
	if err != nil {
		return domain.TestConfig{}, fmt.Errorf("illegal default config: %w", err)
	}
	// Notebook params come from the per-test config only.
	cfg.NotebookParams = map[string]any{}
	return cfg, nil
}

func (l *Loader) LoadForTest(base domain.TestConfig, testName string) (domain.TestConfig, error) {
	path := l.TestConfigPath(testName)
	cfg, err := l.load(path, base)
	if err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks a single config file against the schema without mapping it.
func (l *Loader) Validate(path string) error {
	v, err := l.schemaValidator()
	if err != nil {
		return err
	}
	return v.ValidateFile(path)
}

func (l *Loader) load(path string, base domain.TestConfig) (domain.TestConfig, error) {
	v, err := l.schemaValidator()
	if err != nil {
		return domain.TestConfig{}, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.TestConfig{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	if err := v.ValidateBytes(path, b); err != nil {
		return domain.TestConfig{}, err
	}

	var dto YAMLTestConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.TestConfig{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return ApplyTestConfig(path, base, dto)
}

// schemaValidator compiles the schema once. A broken schema fails every load.
func (l *Loader) schemaValidator() (*schema.Validator, error) {
	l.once.Do(func() {
		l.validator, l.schemaErr = schema.Compile(filepath.Join(l.dir, l.schemaFile))
	})
	return l.validator, l.schemaErr
}
