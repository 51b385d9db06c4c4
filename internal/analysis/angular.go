package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

var (
	anyTypeRe      = regexp.MustCompile(`:\s*any\b`)
	subscribeRe    = regexp.MustCompile(`\.subscribe\s*\(`)
	directDomRe    = regexp.MustCompile(`\bdocument\.(getElementById|querySelector|querySelectorAll)\b`)
	unsubscribedOK = regexp.MustCompile(`takeUntil|takeUntilDestroyed|first\(\)|take\(1\)`)
)

// AngularTask flags Angular-specific smells in added TypeScript lines. It
// only runs when an angular.json workspace was detected.
type AngularTask struct{}

func (AngularTask) Name() string { return "angular" }

func (AngularTask) Applies(pctx project.Context) bool { return pctx.HasAngular() }

func (AngularTask) Run(ctx context.Context, cs gitctx.ChangeSet, _ project.Context) ([]Finding, error) {
	var findings []Finding
	for _, fc := range cs.Files {
		if fc.Kind == gitctx.KindDeleted || !strings.HasSuffix(fc.Path, ".ts") || isTestPath(fc.Path) {
			continue
		}
		for _, line := range fc.AddedLines() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			switch {
			case anyTypeRe.MatchString(line.Text):
				findings = append(findings, Finding{
					Title:      "Untyped 'any' annotation added",
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategoryBestPractice,
					Detail:     "The added declaration opts out of type checking with 'any'.",
					Suggestion: "Declare a concrete interface or use 'unknown' with narrowing.",
					Confidence: 40,
				})
			case subscribeRe.MatchString(line.Text) && !unsubscribedOK.MatchString(line.Text):
				findings = append(findings, Finding{
					Title:      "Subscription without teardown",
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategoryBug,
					Detail:     "The added subscribe call has no visible unsubscribe strategy; long-lived components will leak.",
					Suggestion: "Pipe through takeUntilDestroyed() or store and dispose the subscription.",
					Confidence: 55,
				})
			case directDomRe.MatchString(line.Text):
				findings = append(findings, Finding{
					Title:      "Direct DOM access in Angular code",
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategoryBestPractice,
					Detail:     "Direct document queries bypass Angular's renderer and break server-side rendering.",
					Suggestion: "Inject Renderer2 or use template references instead.",
					Confidence: 50,
				})
			}
		}
	}
	return findings, nil
}
