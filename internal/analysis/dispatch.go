package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

// DegradedSource records an analysis task that contributed no findings
// because it failed or timed out. Degraded sources never abort the run.
type DegradedSource struct {
	Task   string `json:"task"`
	Reason string `json:"reason"`
}

// Result is the combined output of one dispatch: findings from every task
// that completed, and a record per task that did not.
type Result struct {
	Findings []Finding
	Degraded []DegradedSource
	Skipped  []string
}

// taskResult holds one task's outcome, written only by its own goroutine.
type taskResult struct {
	name     string
	findings []Finding
	err      error
}

// Dispatch runs every applicable task concurrently against the same
// change-set and context. Each task gets an independent deadline; a task
// that fails or expires contributes zero findings and is recorded as
// degraded. There is no ordering guarantee between tasks.
func Dispatch(ctx context.Context, tasks []Task, cs gitctx.ChangeSet, pctx project.Context, timeout time.Duration, log *zap.Logger) Result {
	var res Result
	var applicable []Task
	for _, t := range tasks {
		if t.Applies(pctx) {
			applicable = append(applicable, t)
		} else {
			res.Skipped = append(res.Skipped, t.Name())
		}
	}

	results := make([]taskResult, len(applicable))
	var wg sync.WaitGroup
	for i, t := range applicable {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			findings, err := t.Run(taskCtx, cs, pctx)
			if err == nil && taskCtx.Err() != nil {
				err = taskCtx.Err()
			}
			results[i] = taskResult{name: t.Name(), findings: findings, err: err}
			log.Debug("analysis task finished",
				zap.String("task", t.Name()),
				zap.Int("findings", len(findings)),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}(i, t)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			reason := r.err.Error()
			if errors.Is(r.err, context.DeadlineExceeded) {
				reason = "timed out"
			}
			res.Degraded = append(res.Degraded, DegradedSource{Task: r.name, Reason: reason})
			log.Warn("analysis task degraded", zap.String("task", r.name), zap.String("reason", reason))
			continue
		}
		for i := range r.findings {
			r.findings[i].Source = r.name
			if r.findings[i].ID == "" {
				r.findings[i].ID = NewID(r.findings[i].FilePath, r.findings[i].Title, r.findings[i].Line)
			}
		}
		res.Findings = append(res.Findings, r.findings...)
	}
	return res
}
