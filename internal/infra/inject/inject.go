// Package inject rewrites text artifacts line by line with regular-expression substitutions.
package inject

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/CarterFendley/pipelines/internal/domain"
)

// TmpSuffix is appended to the artifact path while the substituted copy is written.
const TmpSuffix = ".tmp"

// LeadGroup names an optional submatch that is kept in front of the replacement.
const LeadGroup = "lead"

// Substitution replaces every match of Pattern with Replacement, taken literally.
type Substitution struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// MustSubstitution compiles pattern and panics on a malformed expression.
func MustSubstitution(pattern, replacement string) Substitution {
	return Substitution{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// Line applies subs in order; each substitution sees the output of the previous one.
func Line(line string, subs []Substitution) string {
	for _, s := range subs {
		line = s.apply(line)
	}
	return line
}

func (s Substitution) apply(line string) string {
	if s.Pattern.SubexpIndex(LeadGroup) < 0 {
		return s.Pattern.ReplaceAllLiteralString(line, s.Replacement)
	}
	repl := "${" + LeadGroup + "}" + strings.ReplaceAll(s.Replacement, "$", "$$")
	return s.Pattern.ReplaceAllString(line, repl)
}

// Copy streams r to w applying subs to each line. Line endings are preserved.
func Copy(w io.Writer, r io.Reader, subs []Substitution) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if _, werr := bw.WriteString(Line(line, subs)); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// File substitutes path in place: the result is written to path+TmpSuffix and renamed over path.
func File(path string, subs []Substitution) error {
	in, err := os.Open(path)
	if err != nil {
		return &domain.OpError{
			Op:   "inject.open",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	defer in.Close()

	tmp := path + TmpSuffix
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &domain.OpError{
			Op:   "inject.create",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}

	if err := Copy(out, in, subs); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "inject.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "inject.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "inject.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}
