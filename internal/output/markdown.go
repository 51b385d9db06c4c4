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

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	fmt.Fprintf(w, "## Precheck Review — %s %s\n\n",
		mdVerdictIcon(report.Summary.Verdict), verdictLabel(report.Summary.Verdict))

	// Stage table
	fmt.Fprintf(w, "| Stage | Result |\n")
	fmt.Fprintf(w, "|-------|--------|\n")
	for _, b := range report.Builds {
		fmt.Fprintf(w, "| Build (%s) | %s |\n", b.Target, mdStageCell(b.Status, b.DurationMs))
	}
	for _, t := range report.Tests {
		cell := mdStageCell(t.Status, t.DurationMs)
		if t.Status != runner.StatusSkipped {
			cell = fmt.Sprintf("%s — %d passed, %d failed, %d skipped",
				cell, t.Passed, t.Failed, t.Skipped)
		}
		fmt.Fprintf(w, "| Tests (%s) | %s |\n", t.Target, cell)
	}
	fmt.Fprintln(w)

	// Findings table
	total := report.Summary.FilteredFindings
	c := report.Summary.Counts
	fmt.Fprintf(w, "| Category | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Security | %d |\n", c.Security)
	fmt.Fprintf(w, "| Bug | %d |\n", c.Bug)
	fmt.Fprintf(w, "| Compliance | %d |\n", c.Compliance)
	fmt.Fprintf(w, "| Best practice | %d |\n", c.BestPractice)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", total)

	if total == 0 && report.Summary.Verdict == review.VerdictPassed {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	// Failed builds get their error summaries up front
	for _, b := range report.Builds {
		if b.Status == runner.StatusFailed && b.ErrorSummary != "" {
			fmt.Fprintf(w, "**Build errors (%s):**\n\n```\n%s\n```\n\n", b.Target, b.ErrorSummary)
		}
	}
	for _, t := range report.Tests {
		for _, f := range t.Failures {
			fmt.Fprintf(w, "- :x: `%s`", f.Name)
			if f.Message != "" {
				fmt.Fprintf(w, " — %s", f.Message)
			}
			fmt.Fprintln(w)
		}
	}
	if hasTestFailures(report) {
		fmt.Fprintln(w)
	}

	// Collapsible sections by category
	grouped := groupByCategory(report.Findings)
	for _, cat := range categoryOrder {
		findings := grouped[cat]
		if len(findings) == 0 {
			continue
		}

		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n",
			mdCategoryIcon(cat), strings.ToUpper(string(cat)), len(findings))

		sort.Slice(findings, func(i, j int) bool {
			if findings[i].FilePath != findings[j].FilePath {
				return findings[i].FilePath < findings[j].FilePath
			}
			return findings[i].Line < findings[j].Line
		})

		for _, f := range findings {
			fmt.Fprintf(w, "### %s\n\n", f.Title)
			fmt.Fprintf(w, "**`%s`** | %s | Confidence: %d%%\n\n",
				findingLocation(f), f.Source, f.Confidence)
			fmt.Fprintf(w, "%s\n\n", f.Detail)

			if f.Suggestion != "" {
				fmt.Fprintf(w, "**Suggestion:**\n\n")
				// Wrap suggestion in code fence if it looks like code
				if looksLikeCode(f.Suggestion) {
					lang := inferLang(f.FilePath)
					fmt.Fprintf(w, "```%s\n%s\n```\n\n", lang, f.Suggestion)
				} else {
					fmt.Fprintf(w, "> %s\n\n", strings.ReplaceAll(f.Suggestion, "\n", "\n> "))
				}
			}

			fmt.Fprintf(w, "---\n\n")
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	if len(report.Degraded) > 0 {
		fmt.Fprintf(w, "> %d analysis task(s) did not complete:\n", len(report.Degraded))
		for _, d := range report.Degraded {
			fmt.Fprintf(w, "> - %s: %s\n", d.Task, d.Reason)
		}
		fmt.Fprintln(w)
	}

	// Timing footer
	fmt.Fprintf(w, "*Reviewed in %dms (git: %dms, analysis: %dms, build: %dms, test: %dms)*\n",
		report.Timing.TotalMs, report.Timing.GitMs, report.Timing.AnalysisMs,
		report.Timing.BuildMs, report.Timing.TestMs)

	return nil
}

func hasTestFailures(report *review.Report) bool {
	for _, t := range report.Tests {
		if len(t.Failures) > 0 {
			return true
		}
	}
	return false
}

func mdStageCell(s runner.Status, durationMs int64) string {
	switch s {
	case runner.StatusPassed:
		return fmt.Sprintf(":white_check_mark: passed (%dms)", durationMs)
	case runner.StatusFailed:
		return fmt.Sprintf(":x: failed (%dms)", durationMs)
	default:
		return "NOT APPLICABLE"
	}
}

func mdVerdictIcon(v review.Verdict) string {
	switch v {
	case review.VerdictPassed:
		return ":white_check_mark:"
	case review.VerdictNeedsAttention:
		return ":warning:"
	case review.VerdictFailed:
		return ":x:"
	default:
		return ":white_circle:"
	}
}

func mdCategoryIcon(c analysis.Category) string {
	switch c {
	case analysis.CategorySecurity:
		return ":red_circle:"
	case analysis.CategoryBug:
		return ":orange_circle:"
	case analysis.CategoryCompliance:
		return ":large_blue_circle:"
	case analysis.CategoryBestPractice:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func looksLikeCode(s string) bool {
	codeIndicators := []string{
		"func ", "if ", "for ", "return ", "var ", "const ",
		"public ", "private ", "class ", "import ", "using ",
		"{", "}", "=>", "->", ":=", "==",
		"()", "[];",
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

func inferLang(path string) string {
	langMap := map[string]string{
		".cs":     "csharp",
		".ts":     "typescript",
		".tsx":    "tsx",
		".js":     "javascript",
		".html":   "html",
		".scss":   "scss",
		".css":    "css",
		".go":     "go",
		".sh":     "bash",
		".sql":    "sql",
		".yaml":   "yaml",
		".yml":    "yaml",
		".json":   "json",
		".csproj": "xml",
	}
	for ext, lang := range langMap {
		if strings.HasSuffix(path, ext) {
			return lang
		}
	}
	return ""
}
