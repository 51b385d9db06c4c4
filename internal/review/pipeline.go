package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/precheck/internal/analysis"
	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
	"github.com/dshills/precheck/internal/runner"
	"github.com/dshills/precheck/internal/score"
)

const (
	toolName      = "precheck"
	reportVersion = "1.0"

	// DefaultThreshold is the minimum confidence a finding needs to appear
	// in the report.
	DefaultThreshold = 80

	// DefaultTaskTimeout bounds each analysis task independently.
	DefaultTaskTimeout = 60 * time.Second
)

// Options configures one review run. Zero values fall back to defaults; the
// Git, Exec, Tasks, and Log fields exist so tests can substitute fakes.
type Options struct {
	Root        string
	Threshold   int
	WithTests   bool
	TaskTimeout time.Duration
	DetectDepth int
	RulesFile   string

	Tasks []analysis.Task
	Git   gitctx.Runner
	Exec  runner.Exec
	Log   *zap.Logger
}

func (o *Options) fillDefaults() {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = DefaultTaskTimeout
	}
	if o.DetectDepth <= 0 {
		o.DetectDepth = project.DefaultOptions().MaxDepth
	}
	if o.Tasks == nil {
		o.Tasks = analysis.DefaultTasks(o.RulesFile)
	}
	if o.Git == nil {
		o.Git = gitctx.GitRunner{}
	}
	if o.Exec == nil {
		o.Exec = runner.ShellExec{}
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
}

// Run executes the full review pipeline and returns the terminal Report.
// Only the two extraction errors (gitctx.ErrNoChanges, gitctx.ErrNotRepository)
// abort the run; every other failure is captured as data in the report.
func Run(ctx context.Context, opts Options) (*Report, error) {
	opts.fillDefaults()
	start := time.Now()

	// Extraction runs first: its terminal errors cancel the run before any
	// other stage starts.
	cs, err := gitctx.Extract(ctx, opts.Git, opts.Root)
	if err != nil {
		return nil, err
	}
	gitMs := time.Since(start).Milliseconds()
	opts.Log.Info("change-set extracted",
		zap.Int("files", len(cs.Files)),
		zap.String("branch", cs.Branch))

	pctx := project.Detect(cs.Root, cs, project.Options{
		MaxDepth: opts.DetectDepth,
		Markers:  project.DefaultTestMarkers(),
	})
	opts.Log.Info("projects detected",
		zap.Int("solutions", len(pctx.Solutions)),
		zap.Int("angular", len(pctx.AngularConfigs)),
		zap.Int("testProjects", len(pctx.TestProjects)))

	// ChangeSet and Context are read-only from here on and shared by
	// reference across the concurrent stages below.
	var (
		scored     []analysis.Finding
		degraded   []analysis.DegradedSource
		builds     []runner.BuildResult
		tests      []runner.TestResult
		analysisMs int64
		buildMs    int64
		testMs     int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t := time.Now()
		res := analysis.Dispatch(gctx, opts.Tasks, cs, pctx, opts.TaskTimeout, opts.Log)
		scored = score.All(gctx, res.Findings, cs, pctx)
		degraded = res.Degraded
		analysisMs = time.Since(t).Milliseconds()
		return nil
	})

	g.Go(func() error {
		t := time.Now()
		builds = runner.BuildAll(gctx, opts.Exec, pctx)
		buildMs = time.Since(t).Milliseconds()

		t = time.Now()
		if opts.WithTests {
			// Rebuilding inside dotnet test is redundant when the build
			// stage just succeeded.
			skipRebuild := len(builds) > 0 && builds[0].Status == runner.StatusPassed
			tests = runner.TestAll(gctx, opts.Exec, pctx, runner.TestOptions{SkipRebuild: skipRebuild})
		} else {
			tests = []runner.TestResult{
				{Target: runner.TargetDotnet, Status: runner.StatusSkipped},
				{Target: runner.TargetAngular, Status: runner.StatusSkipped},
			}
		}
		testMs = time.Since(t).Milliseconds()
		return nil
	})

	// The aggregator waits for every stage to reach a terminal state; there
	// is no partial report.
	_ = g.Wait()

	filtered, raw := Aggregate(scored, opts.Threshold)

	report := &Report{
		Tool:        toolName,
		Version:     reportVersion,
		RunID:       uuid.NewString(),
		Repo:        RepoInfo{Root: cs.Root, Head: cs.Head, Branch: cs.Branch},
		ChangeCount: len(cs.Files),
		Projects:    pctx,
		Builds:      builds,
		Tests:       tests,
		Findings:    filtered,
		Degraded:    degraded,
		Summary:     ComputeSummary(raw, filtered, opts.Threshold, builds, tests),
		Timing: Timing{
			GitMs:      gitMs,
			AnalysisMs: analysisMs,
			BuildMs:    buildMs,
			TestMs:     testMs,
			TotalMs:    time.Since(start).Milliseconds(),
		},
	}
	opts.Log.Info("review complete",
		zap.String("verdict", string(report.Summary.Verdict)),
		zap.Int("findings", len(filtered)))
	return report, nil
}
