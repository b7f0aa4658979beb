package config

type YAMLTestConfig struct {
	TestName       string            `yaml:"test_name"`
	Arguments      map[string]any    `yaml:"arguments"`
	NotebookParams map[string]any    `yaml:"notebook_params"`
	TestTimeout    *int              `yaml:"test_timeout"`
	RunPipeline    *bool             `yaml:"run_pipeline"`
	Expectations   *YAMLExpectations `yaml:"expectations"`
}

type YAMLExpectations struct {
	State    string                           `yaml:"state"`
	JSONPath map[string]YAMLJSONPathAssertion `yaml:"jsonpath"`
}

type YAMLJSONPathAssertion struct {
	Exists   bool     `yaml:"exists"`
	Eq       *string  `yaml:"eq"`
	Contains *string  `yaml:"contains"`
	Matches  *string  `yaml:"matches"`
	Gt       *float64 `yaml:"gt"`
	Lt       *float64 `yaml:"lt"`
}
