package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

var (
	debugStatementRe = regexp.MustCompile(`(?i)\b(Console\.WriteLine|console\.(log|debug|trace)|System\.Diagnostics\.Debug\.Write)\b|\bdebugger;`)
	todoMarkerRe     = regexp.MustCompile(`\b(TODO|FIXME|HACK|XXX)\b`)
)

// HygieneTask flags leftover debug output and unfinished-work markers in
// added lines.
type HygieneTask struct{}

func (HygieneTask) Name() string { return "hygiene" }

func (HygieneTask) Applies(project.Context) bool { return true }

func (HygieneTask) Run(ctx context.Context, cs gitctx.ChangeSet, _ project.Context) ([]Finding, error) {
	var findings []Finding
	for _, fc := range cs.Files {
		if fc.Kind == gitctx.KindDeleted || isTestPath(fc.Path) {
			continue
		}
		for _, line := range fc.AddedLines() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			switch {
			case debugStatementRe.MatchString(line.Text):
				findings = append(findings, Finding{
					Title:      "Debug statement left in change",
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategoryBestPractice,
					Detail:     "The added line writes debug output that should not ship.",
					Suggestion: "Remove the statement or route it through the application logger.",
					Confidence: 60,
				})
			case todoMarkerRe.MatchString(line.Text):
				findings = append(findings, Finding{
					Title:      "Unfinished-work marker added",
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategoryBestPractice,
					Detail:     "The change introduces a TODO/FIXME marker without tracking.",
					Suggestion: "Finish the work or link the marker to a tracked issue.",
					Confidence: 30,
				})
			}
		}
	}
	return findings, nil
}

func isTestPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, ".spec.") ||
		strings.Contains(lower, "tests/") ||
		strings.Contains(lower, ".tests/") ||
		strings.HasSuffix(lower, "tests.cs") ||
		strings.HasSuffix(lower, "test.cs")
}
