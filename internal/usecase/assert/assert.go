// Package assert judges a finished run against the expectations of its test config.
package assert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/CarterFendley/pipelines/internal/domain"
)

// State checks the run ended in the expected terminal state.
func State(expected domain.RunState, run domain.Run) domain.TestCase {
	if expected == "" {
		expected = domain.RunStateSucceeded
	}
	name := "run state"
	if run.State == expected {
		return domain.TestCase{Name: name, Passed: true}
	}

	msg := fmt.Sprintf("expected run %s to be %s, got %s", run.ID, expected, run.State)
	if run.ErrorMessage != "" {
		msg += ": " + run.ErrorMessage
	}
	return domain.TestCase{Name: name, Failure: msg}
}

// Evaluate applies the expectations against a run. The run document is parsed only
// when JSONPath assertions are present. Cases come back in a stable order.
func Evaluate(exp domain.Expectations, run domain.Run) []domain.TestCase {
	out := []domain.TestCase{State(exp.State, run)}
	if len(exp.JSONPath) == 0 {
		return out
	}

	exprs := make([]string, 0, len(exp.JSONPath))
	for expr := range exp.JSONPath {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	var doc any
	if err := json.Unmarshal(run.Raw, &doc); err != nil {
		for _, expr := range exprs {
			out = append(out, jsonPathChecks(expr, exp.JSONPath[expr], nil,
				fmt.Errorf("run document is not valid JSON"))...)
		}
		return out
	}

	for _, expr := range exprs {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, exp.JSONPath[expr], val, getErr)...)
	}
	return out
}

type check func(val any) (ok bool, detail string, err error)

func jsonPathChecks(expr string, a domain.JSONPathAssertion, val any, getErr error) []domain.TestCase {
	var out []domain.TestCase
	add := func(op string, fn check) {
		out = append(out, evalCheck(expr, op, val, getErr, fn))
	}

	if a.Exists {
		add("exists", func(v any) (bool, string, error) {
			return !isEmpty(v), "expected value to exist, got empty", nil
		})
	}
	if a.Eq != nil {
		want := *a.Eq
		add("eq", func(v any) (bool, string, error) {
			s, err := toString(v)
			return s == want, fmt.Sprintf("expected %q, got %q", want, s), err
		})
	}
	if a.Contains != nil {
		sub := *a.Contains
		add("contains", func(v any) (bool, string, error) {
			s, err := toString(v)
			return strings.Contains(s, sub), fmt.Sprintf("%q does not contain %q", s, sub), err
		})
	}
	if a.Matches != nil {
		pattern := *a.Matches
		add("matches", func(v any) (bool, string, error) {
			s, err := toString(v)
			if err != nil {
				return false, "", err
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, "", fmt.Errorf("invalid regex %q: %v", pattern, err)
			}
			return re.MatchString(s), fmt.Sprintf("%q does not match %q", s, pattern), nil
		})
	}
	if a.Gt != nil {
		threshold := *a.Gt
		add("gt", func(v any) (bool, string, error) {
			f, err := toFloat64(v)
			return f > threshold, fmt.Sprintf("expected > %v, got %v", threshold, f), err
		})
	}
	if a.Lt != nil {
		threshold := *a.Lt
		add("lt", func(v any) (bool, string, error) {
			f, err := toFloat64(v)
			return f < threshold, fmt.Sprintf("expected < %v, got %v", threshold, f), err
		})
	}
	return out
}

func evalCheck(expr, op string, val any, getErr error, fn check) domain.TestCase {
	name := fmt.Sprintf("jsonpath.%s %s", op, expr)
	if getErr != nil {
		return domain.TestCase{Name: name, Failure: fmt.Sprintf("jsonpath %q: %v", expr, getErr)}
	}
	ok, detail, err := fn(val)
	if err != nil {
		return domain.TestCase{Name: name, Failure: fmt.Sprintf("jsonpath %q: %v", expr, err)}
	}
	if !ok {
		return domain.TestCase{Name: name, Failure: fmt.Sprintf("jsonpath %q: %s", expr, detail)}
	}
	return domain.TestCase{Name: name, Passed: true}
}

func toString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func toFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", val)
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
