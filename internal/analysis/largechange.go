package analysis

import (
	"context"
	"fmt"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

// defaultLargeChangeLines is the added-line count above which an untested
// file change is flagged.
const defaultLargeChangeLines = 200

// LargeChangeTask flags files that gain many lines while the change-set
// contains no accompanying test change. Big untested additions are where
// regressions hide.
type LargeChangeTask struct {
	// Threshold overrides defaultLargeChangeLines when positive.
	Threshold int
}

func (LargeChangeTask) Name() string { return "largechange" }

func (LargeChangeTask) Applies(project.Context) bool { return true }

func (t LargeChangeTask) Run(ctx context.Context, cs gitctx.ChangeSet, _ project.Context) ([]Finding, error) {
	threshold := t.Threshold
	if threshold <= 0 {
		threshold = defaultLargeChangeLines
	}

	hasTestChange := false
	for _, fc := range cs.Files {
		if isTestPath(fc.Path) {
			hasTestChange = true
			break
		}
	}
	if hasTestChange {
		return nil, nil
	}

	var findings []Finding
	for _, fc := range cs.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		added := len(fc.AddedLines())
		if added <= threshold {
			continue
		}
		findings = append(findings, Finding{
			Title:      "Large change without test coverage",
			FilePath:   fc.Path,
			Category:   CategoryBug,
			Detail:     fmt.Sprintf("%d lines added with no test change anywhere in the change-set.", added),
			Suggestion: "Add or update tests covering the new behavior before committing.",
			Confidence: 50,
		})
	}
	return findings, nil
}
