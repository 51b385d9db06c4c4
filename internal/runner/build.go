package runner

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/precheck/internal/project"
)

// Target identifies the toolchain a build or test stage ran against.
type Target string

const (
	TargetDotnet  Target = "dotnet"
	TargetAngular Target = "angular"
)

// Status is the terminal state of a build or test stage.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// BuildResult captures one build stage's outcome. A failed build is data,
// not a pipeline error.
type BuildResult struct {
	Target       Target `json:"target"`
	Status       Status `json:"status"`
	ErrorSummary string `json:"errorSummary,omitempty"`
	DurationMs   int64  `json:"durationMs"`
}

// BuildAll runs one build per detected project kind, concurrently safe to
// call alongside analysis. Kinds absent from the context yield skipped
// results so the report can say "NOT APPLICABLE" instead of omitting them.
func BuildAll(ctx context.Context, exec Exec, pctx project.Context) []BuildResult {
	results := []BuildResult{
		{Target: TargetDotnet, Status: StatusSkipped},
		{Target: TargetAngular, Status: StatusSkipped},
	}
	if pctx.HasDotnet() {
		results[0] = buildDotnet(ctx, exec, pctx.Solutions[0])
	}
	if pctx.HasAngular() {
		results[1] = buildAngular(ctx, exec, filepath.Dir(pctx.AngularConfigs[0]))
	}
	return results
}

func buildDotnet(ctx context.Context, exec Exec, solution string) BuildResult {
	start := time.Now()
	out, err := exec.Run(ctx, filepath.Dir(solution), "dotnet", "build", filepath.Base(solution), "--nologo")
	res := BuildResult{Target: TargetDotnet, Status: StatusPassed, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusFailed
		res.ErrorSummary = summarizeDotnetErrors(out, err)
	}
	return res
}

func buildAngular(ctx context.Context, exec Exec, dir string) BuildResult {
	start := time.Now()
	out, err := exec.Run(ctx, dir, "npx", "ng", "build")
	res := BuildResult{Target: TargetAngular, Status: StatusPassed, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusFailed
		res.ErrorSummary = summarizeAngularErrors(out, err)
	}
	return res
}

// maxSummaryLines bounds how much compiler output lands in the report.
const maxSummaryLines = 10

// summarizeDotnetErrors pulls "error CSxxxx"-style diagnostics out of MSBuild
// output, falling back to the exec error.
func summarizeDotnetErrors(out string, err error) string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, ": error ") || strings.HasPrefix(trimmed, "error ") {
			lines = append(lines, trimmed)
			if len(lines) == maxSummaryLines {
				break
			}
		}
	}
	if len(lines) == 0 {
		return err.Error()
	}
	return strings.Join(lines, "\n")
}

// summarizeAngularErrors keeps lines the Angular CLI marks as errors.
func summarizeAngularErrors(out string, err error) string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Error:") || strings.HasPrefix(trimmed, "ERROR") || strings.Contains(trimmed, "error TS") {
			lines = append(lines, trimmed)
			if len(lines) == maxSummaryLines {
				break
			}
		}
	}
	if len(lines) == 0 {
		return err.Error()
	}
	return strings.Join(lines, "\n")
}
