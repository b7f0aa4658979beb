package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/CarterFendley/pipelines/internal/usecase/launcher"
)

type Theme struct {
	Title lipgloss.Style
	Faint lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Card  lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().Bold(true),
		Faint: lipgloss.NewStyle().Faint(true),
		Pass:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
	}
}

// printSummary renders the outcome of a launcher run. Nothing is printed before a test name is known.
func printSummary(w io.Writer, th Theme, res launcher.Result) {
	if res.TestName == "" {
		return
	}

	header := fmt.Sprintf("%s  %s", th.Title.Render(res.TestName), th.Faint.Render(string(res.Kind)))
	lines := []string{header}
	if res.ExperimentName != "" {
		lines = append(lines, th.Faint.Render("experiment: "+res.ExperimentName))
	}
	if res.Host != "" {
		lines = append(lines, th.Faint.Render("host:       "+res.Host))
	}

	for _, c := range res.Report.Cases {
		if c.Passed {
			lines = append(lines, th.Pass.Render("✓ ")+c.Name)
			continue
		}
		line := th.Fail.Render("✗ ") + c.Name
		if c.Failure != "" {
			line += th.Faint.Render(": " + c.Failure)
		}
		lines = append(lines, line)
	}

	if len(res.Report.Cases) > 0 {
		status := th.Pass.Render("PASS")
		if !res.Report.Passed() {
			status = th.Fail.Render(fmt.Sprintf("FAIL (%d/%d)", res.Report.Failures(), len(res.Report.Cases)))
		}
		lines = append(lines, status)
	}
	if res.ResultPath != "" {
		lines = append(lines, th.Faint.Render("report: "+res.ResultPath))
	}

	fmt.Fprintln(w, th.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
