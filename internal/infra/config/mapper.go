package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CarterFendley/pipelines/internal/domain"
)

// ApplyTestConfig layers a parsed document on top of base. Scalars present in the document
// replace base values; maps are merged key by key.
func ApplyTestConfig(path string, base domain.TestConfig, yc YAMLTestConfig) (domain.TestConfig, error) {
	out := base.Clone()

	if strings.TrimSpace(yc.TestName) != "" {
		out.TestName = yc.TestName
	}
	for k, v := range yc.Arguments {
		out.Arguments[k] = v
	}
	for k, v := range yc.NotebookParams {
		out.NotebookParams[k] = v
	}
	if yc.TestTimeout != nil {
		if *yc.TestTimeout < 0 {
			return domain.TestConfig{}, invalidField(path, "test_timeout", "must be >= 0")
		}
		out.TestTimeout = *yc.TestTimeout
	}
	if yc.RunPipeline != nil {
		out.RunPipeline = *yc.RunPipeline
	}

	if yc.Expectations != nil {
		if s := strings.TrimSpace(yc.Expectations.State); s != "" {
			state, err := parseState(s)
			if err != nil {
				return domain.TestConfig{}, invalidField(path, "expectations.state", err.Error())
			}
			out.Expectations.State = state
		}
		for expr, a := range yc.Expectations.JSONPath {
			if a.Matches != nil {
				if _, err := regexp.Compile(*a.Matches); err != nil {
					return domain.TestConfig{}, invalidField(path,
						fmt.Sprintf("expectations.jsonpath[%q].matches", expr), err.Error())
				}
			}
			out.Expectations.JSONPath[expr] = domain.JSONPathAssertion{
				Exists:   a.Exists,
				Eq:       a.Eq,
				Contains: a.Contains,
				Matches:  a.Matches,
				Gt:       a.Gt,
				Lt:       a.Lt,
			}
		}
	}

	return out, nil
}

func parseState(s string) (domain.RunState, error) {
	st := domain.RunState(s)
	switch st {
	case domain.RunStateSucceeded,
		domain.RunStateSkipped,
		domain.RunStateFailed,
		domain.RunStateCanceled:
		return st, nil
	default:
		return "", fmt.Errorf("unsupported terminal state %q", s)
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
