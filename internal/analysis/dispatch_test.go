package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubTask struct {
	name     string
	applies  bool
	findings []Finding
	err      error
	delay    time.Duration
}

func (s stubTask) Name() string { return s.name }

func (s stubTask) Applies(project.Context) bool { return s.applies }

func (s stubTask) Run(ctx context.Context, _ gitctx.ChangeSet, _ project.Context) ([]Finding, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.findings, s.err
}

func TestDispatch_FailingTaskDoesNotAffectSiblings(t *testing.T) {
	tasks := []Task{
		stubTask{name: "ok", applies: true, findings: []Finding{
			{Title: "issue", FilePath: "a.cs", Line: 3, Category: CategoryBug, Confidence: 80},
		}},
		stubTask{name: "broken", applies: true, err: errors.New("boom")},
	}

	res := Dispatch(context.Background(), tasks, gitctx.ChangeSet{}, project.Context{}, time.Second, zap.NewNop())

	if len(res.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(res.Findings))
	}
	if res.Findings[0].Source != "ok" {
		t.Errorf("Source = %q, want %q", res.Findings[0].Source, "ok")
	}
	if res.Findings[0].ID == "" {
		t.Error("finding ID should be assigned")
	}
	if len(res.Degraded) != 1 || res.Degraded[0].Task != "broken" {
		t.Fatalf("Degraded = %+v, want one entry for broken", res.Degraded)
	}
}

func TestDispatch_TimeoutIsLocal(t *testing.T) {
	tasks := []Task{
		stubTask{name: "slow", applies: true, delay: 5 * time.Second},
		stubTask{name: "fast", applies: true, findings: []Finding{
			{Title: "quick", FilePath: "b.ts", Line: 1, Category: CategoryBestPractice},
		}},
	}

	res := Dispatch(context.Background(), tasks, gitctx.ChangeSet{}, project.Context{}, 50*time.Millisecond, zap.NewNop())

	if len(res.Findings) != 1 || res.Findings[0].Source != "fast" {
		t.Fatalf("Findings = %+v, want only fast's finding", res.Findings)
	}
	if len(res.Degraded) != 1 || res.Degraded[0].Reason != "timed out" {
		t.Fatalf("Degraded = %+v, want slow timed out", res.Degraded)
	}
}

func TestDispatch_InapplicableTaskSkipped(t *testing.T) {
	tasks := []Task{
		stubTask{name: "ngonly", applies: false},
		stubTask{name: "always", applies: true},
	}

	res := Dispatch(context.Background(), tasks, gitctx.ChangeSet{}, project.Context{}, time.Second, zap.NewNop())

	if len(res.Skipped) != 1 || res.Skipped[0] != "ngonly" {
		t.Fatalf("Skipped = %v, want [ngonly]", res.Skipped)
	}
	if len(res.Degraded) != 0 {
		t.Errorf("Degraded = %+v, want none", res.Degraded)
	}
}

func TestDispatch_NoTasks(t *testing.T) {
	res := Dispatch(context.Background(), nil, gitctx.ChangeSet{}, project.Context{}, time.Second, zap.NewNop())
	if len(res.Findings) != 0 || len(res.Degraded) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}
