package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/precheck/internal/analysis"
	"github.com/dshills/precheck/internal/review"
	"github.com/dshills/precheck/internal/runner"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}

	// Summary header
	ew.printf("Precheck Review — %s\n", verdictLabel(report.Summary.Verdict))
	ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	ew.printf("Changed files: %d | Projects: %s\n", report.ChangeCount, projectSummary(report))
	ew.println(strings.Repeat("─", 60))

	// Build and test stages
	ew.println("Build:")
	for _, b := range report.Builds {
		ew.printf("  %-8s %s", b.Target, stageLabel(b.Status))
		if b.Status != runner.StatusSkipped {
			ew.printf(" (%dms)", b.DurationMs)
		}
		ew.println("")
		if b.ErrorSummary != "" {
			for _, line := range strings.Split(b.ErrorSummary, "\n") {
				ew.printf("    %s\n", line)
			}
		}
	}
	ew.println("Tests:")
	for _, tr := range report.Tests {
		ew.printf("  %-8s %s", tr.Target, stageLabel(tr.Status))
		if tr.Status != runner.StatusSkipped {
			ew.printf(" (%d passed, %d failed, %d skipped)", tr.Passed, tr.Failed, tr.Skipped)
		}
		ew.println("")
		for _, f := range tr.Failures {
			ew.printf("    ✗ %s\n", f.Name)
			if f.Message != "" {
				for _, line := range wrapText(f.Message, 66) {
					ew.printf("      %s\n", line)
				}
			}
		}
	}
	ew.println(strings.Repeat("─", 60))

	// Findings
	total := report.Summary.FilteredFindings
	ew.printf("Findings: %d of %d raw at threshold %d",
		total, report.Summary.RawFindings, report.Summary.Threshold)
	if total > 0 {
		c := report.Summary.Counts
		ew.printf(" (%d security, %d bug, %d compliance, %d best-practice)",
			c.Security, c.Bug, c.Compliance, c.BestPractice)
	}
	ew.println("")

	if total == 0 && report.Summary.Verdict == review.VerdictPassed {
		ew.println("\nNo issues found. Looks good!")
		t.writeFooter(ew, report)
		return ew.err
	}

	// Group by category (security first), then by file
	grouped := groupByCategory(report.Findings)
	for _, cat := range categoryOrder {
		findings := grouped[cat]
		if len(findings) == 0 {
			continue
		}

		ew.printf("\n%s %s\n", categoryIcon(cat), strings.ToUpper(string(cat)))
		ew.println(strings.Repeat("─", 40))

		// Sort by file path, then line, within category
		sort.Slice(findings, func(i, j int) bool {
			if findings[i].FilePath != findings[j].FilePath {
				return findings[i].FilePath < findings[j].FilePath
			}
			return findings[i].Line < findings[j].Line
		})

		for _, f := range findings {
			ew.printf("\n  %s  %s\n", findingLocation(f), f.Title)
			ew.printf("  Source: %s | Confidence: %d%%\n", f.Source, f.Confidence)

			for _, line := range wrapText(f.Detail, 70) {
				ew.printf("    %s\n", line)
			}

			if f.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(f.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	if len(report.Degraded) > 0 {
		ew.printf("\nDegraded: %d analysis task(s) did not complete\n", len(report.Degraded))
		for _, d := range report.Degraded {
			ew.printf("  %s: %s\n", d.Task, d.Reason)
		}
	}

	t.writeFooter(ew, report)
	return ew.err
}

func (t *TextWriter) writeFooter(ew *errWriter, report *review.Report) {
	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (git: %dms, analysis: %dms, build: %dms, test: %dms)\n",
		report.Timing.TotalMs, report.Timing.GitMs, report.Timing.AnalysisMs,
		report.Timing.BuildMs, report.Timing.TestMs)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

// categoryOrder fixes the display order, most severe first.
var categoryOrder = []analysis.Category{
	analysis.CategorySecurity,
	analysis.CategoryBug,
	analysis.CategoryCompliance,
	analysis.CategoryBestPractice,
}

func groupByCategory(findings []analysis.Finding) map[analysis.Category][]analysis.Finding {
	m := make(map[analysis.Category][]analysis.Finding)
	for _, f := range findings {
		m[f.Category] = append(m[f.Category], f)
	}
	return m
}

func findingLocation(f analysis.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.FilePath, f.Line)
	}
	return f.FilePath
}

func categoryIcon(c analysis.Category) string {
	switch c {
	case analysis.CategorySecurity:
		return "[!!]"
	case analysis.CategoryBug:
		return "[!]"
	case analysis.CategoryCompliance:
		return "[*]"
	case analysis.CategoryBestPractice:
		return "[-]"
	default:
		return "[?]"
	}
}

func verdictLabel(v review.Verdict) string {
	switch v {
	case review.VerdictPassed:
		return "PASSED"
	case review.VerdictNeedsAttention:
		return "NEEDS ATTENTION"
	case review.VerdictFailed:
		return "FAILED"
	default:
		return strings.ToUpper(string(v))
	}
}

func stageLabel(s runner.Status) string {
	switch s {
	case runner.StatusPassed:
		return "PASSED"
	case runner.StatusFailed:
		return "FAILED"
	case runner.StatusSkipped:
		return "NOT APPLICABLE"
	default:
		return strings.ToUpper(string(s))
	}
}

func projectSummary(report *review.Report) string {
	var parts []string
	if len(report.Projects.Solutions) > 0 {
		parts = append(parts, fmt.Sprintf("%d .NET solution(s)", len(report.Projects.Solutions)))
	}
	if len(report.Projects.AngularConfigs) > 0 {
		parts = append(parts, fmt.Sprintf("%d Angular workspace(s)", len(report.Projects.AngularConfigs)))
	}
	if len(parts) == 0 {
		return "none detected"
	}
	return strings.Join(parts, ", ")
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
