// Package junit writes sample test results in the JUnit XML format CI dashboards read.
package junit

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

type xmlSuites struct {
	XMLName xml.Name   `xml:"testsuites"`
	Suites  []xmlSuite `xml:"testsuite"`
}

type xmlSuite struct {
	Name     string    `xml:"name,attr"`
	Tests    int       `xml:"tests,attr"`
	Failures int       `xml:"failures,attr"`
	Time     string    `xml:"time,attr"`
	Cases    []xmlCase `xml:"testcase"`
}

type xmlCase struct {
	Name      string      `xml:"name,attr"`
	ClassName string      `xml:"classname,attr"`
	Time      string      `xml:"time,attr"`
	Failure   *xmlFailure `xml:"failure,omitempty"`
}

type xmlFailure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

var _ ports.ReportWriter = (*Writer)(nil)

// WriteReport renders report into path, creating parent directories as needed.
func (w *Writer) WriteReport(path string, report domain.TestReport) error {
	b, err := Marshal(report)
	if err != nil {
		return &domain.OpError{Op: "junit.marshal", Kind: domain.KindExecution, Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "junit.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return &domain.OpError{Op: "junit.write", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: "junit.rename", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// Marshal encodes a report as a single-suite JUnit document.
func Marshal(report domain.TestReport) ([]byte, error) {
	suite := xmlSuite{
		Name:     report.Name,
		Tests:    len(report.Cases),
		Failures: report.Failures(),
	}

	var total time.Duration
	for _, c := range report.Cases {
		total += c.Elapsed
		xc := xmlCase{
			Name:      c.Name,
			ClassName: report.Name,
			Time:      seconds(c.Elapsed),
		}
		if !c.Passed {
			msg := c.Failure
			if msg == "" {
				msg = "failed"
			}
			xc.Failure = &xmlFailure{Message: msg, Text: msg}
		}
		suite.Cases = append(suite.Cases, xc)
	}
	suite.Time = seconds(total)

	b, err := xml.MarshalIndent(xmlSuites{Suites: []xmlSuite{suite}}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(b, '\n')...), nil
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
