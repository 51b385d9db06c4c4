package score

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dshills/precheck/internal/analysis"
	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

// Rubric anchor values. Adjustments pin or cap scores at these anchors:
//
//	0   confirmed false positive or pre-existing issue
//	25  plausible but unverified, or stylistic without policy backing
//	50  real but minor
//	75  verified, will manifest in practice
//	100 certain and severe
const (
	FalsePositive = 0
	Unverified    = 25
	Minor         = 50
	Verified      = 75
	Certain       = 100
)

// Finding computes the final confidence for one finding. It is a pure
// function of the finding's content and the shared run context: identical
// inputs always produce identical scores. The raw task confidence is kept
// as the base and adjusted against the rubric anchors; a finding that
// cannot be scored (confidence outside [0,100]) gets the conservative 0.
func Finding(f analysis.Finding, cs gitctx.ChangeSet, pctx project.Context) int {
	if f.Confidence < 0 || f.Confidence > 100 {
		return FalsePositive
	}

	fc, inChangeSet := fileChange(cs, f.FilePath)
	if !inChangeSet || fc.Kind == gitctx.KindDeleted {
		// The issue is not part of this change: pre-existing.
		return FalsePositive
	}

	c := f.Confidence

	if f.Line > 0 && !lineWasAdded(fc, f.Line) {
		// Points at a line this change did not introduce.
		return min(c, Unverified)
	}

	switch f.Category {
	case analysis.CategorySecurity:
		// A credential on a verified added line will manifest.
		if f.Line > 0 && c >= Minor && c < Verified {
			c = Verified
		}
	case analysis.CategoryBestPractice:
		// Style issues without policy backing never exceed minor.
		c = min(c, Minor)
	case analysis.CategoryCompliance:
		// Policy-backed findings keep their rule's weight.
	}
	return c
}

// All scores every finding concurrently and returns scored copies in the
// input order. Scoring never discards a finding; filtering belongs to the
// aggregator.
func All(ctx context.Context, findings []analysis.Finding, cs gitctx.ChangeSet, pctx project.Context) []analysis.Finding {
	scored := make([]analysis.Finding, len(findings))
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	g, ctx := errgroup.WithContext(ctx)

	for i, f := range findings {
		i, f := i, f
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: score the rest inline with the same pure
			// rubric so no finding is lost.
			scored[i] = scoredCopy(f, cs, pctx)
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)
			scored[i] = scoredCopy(f, cs, pctx)
			return nil
		})
	}
	_ = g.Wait()
	return scored
}

func scoredCopy(f analysis.Finding, cs gitctx.ChangeSet, pctx project.Context) analysis.Finding {
	f.Confidence = Finding(f, cs, pctx)
	return f
}

func fileChange(cs gitctx.ChangeSet, path string) (gitctx.FileChange, bool) {
	for _, fc := range cs.Files {
		if fc.Path == path {
			return fc, true
		}
	}
	return gitctx.FileChange{}, false
}

func lineWasAdded(fc gitctx.FileChange, line int) bool {
	for _, l := range fc.AddedLines() {
		if l.Number == line {
			return true
		}
	}
	return false
}
