package runner

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/precheck/internal/project"
)

// TestFailure is one failed test with its message.
type TestFailure struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

// TestResult captures one test stage's outcome.
type TestResult struct {
	Target     Target        `json:"target"`
	Status     Status        `json:"status"`
	Total      int           `json:"total"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Failures   []TestFailure `json:"failures,omitempty"`
	DurationMs int64         `json:"durationMs"`
}

// TestOptions controls test execution.
type TestOptions struct {
	// SkipRebuild passes --no-build to dotnet test when a prior build stage
	// already succeeded.
	SkipRebuild bool
}

// TestAll runs tests per project kind. Stages without targets are skipped.
// Callers only invoke this when test execution was explicitly requested.
func TestAll(ctx context.Context, exec Exec, pctx project.Context, opts TestOptions) []TestResult {
	results := []TestResult{
		{Target: TargetDotnet, Status: StatusSkipped},
		{Target: TargetAngular, Status: StatusSkipped},
	}
	if pctx.HasDotnet() && hasDotnetTests(pctx) {
		results[0] = testDotnet(ctx, exec, pctx.Solutions[0], opts)
	}
	if pctx.HasAngular() && hasAngularTests(pctx) {
		results[1] = testAngular(ctx, exec, filepath.Dir(pctx.AngularConfigs[0]))
	}
	return results
}

func hasDotnetTests(pctx project.Context) bool {
	for _, p := range pctx.TestProjects {
		if strings.HasSuffix(p, ".csproj") {
			return true
		}
	}
	return false
}

func hasAngularTests(pctx project.Context) bool {
	for _, p := range pctx.TestProjects {
		if strings.HasSuffix(p, "karma.conf.js") {
			return true
		}
	}
	return false
}

func testDotnet(ctx context.Context, exec Exec, solution string, opts TestOptions) TestResult {
	args := []string{"test", filepath.Base(solution), "--nologo"}
	if opts.SkipRebuild {
		args = append(args, "--no-build")
	}
	start := time.Now()
	out, err := exec.Run(ctx, filepath.Dir(solution), "dotnet", args...)
	res := ParseDotnetTestOutput(out)
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil && res.Total == 0 {
		// The run never reached a summary line; report the whole stage failed.
		res.Status = StatusFailed
		res.Failures = append(res.Failures, TestFailure{Name: "dotnet test", Message: err.Error()})
	}
	return res
}

func testAngular(ctx context.Context, exec Exec, dir string) TestResult {
	start := time.Now()
	out, err := exec.Run(ctx, dir, "npx", "ng", "test", "--watch=false", "--browsers=ChromeHeadless")
	res := ParseKarmaOutput(out)
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil && res.Total == 0 {
		res.Status = StatusFailed
		res.Failures = append(res.Failures, TestFailure{Name: "ng test", Message: err.Error()})
	}
	return res
}

var (
	dotnetSummaryRe = regexp.MustCompile(`(?i)Failed:\s*(\d+),\s*Passed:\s*(\d+),\s*Skipped:\s*(\d+),\s*Total:\s*(\d+)`)
	dotnetFailedRe  = regexp.MustCompile(`^\s*Failed\s+(\S+)`)
	karmaTotalRe    = regexp.MustCompile(`TOTAL:\s*(?:(\d+)\s+FAILED,\s*)?(\d+)\s+SUCCESS`)
	karmaExecutedRe = regexp.MustCompile(`Executed\s+(\d+)\s+of\s+(\d+)(?:.*\((\d+)\s+skipped\))?`)
)

// ParseDotnetTestOutput maps VSTest console output to a TestResult. The
// summary line looks like:
//
//	Failed!  - Failed:     2, Passed:     8, Skipped:     0, Total:    10
//
// Individual failures appear as "Failed <name> [<t> ms]" followed by an
// "Error Message:" block.
func ParseDotnetTestOutput(out string) TestResult {
	res := TestResult{Target: TargetDotnet, Status: StatusPassed}

	if m := dotnetSummaryRe.FindStringSubmatch(out); m != nil {
		res.Failed, _ = strconv.Atoi(m[1])
		res.Passed, _ = strconv.Atoi(m[2])
		res.Skipped, _ = strconv.Atoi(m[3])
		res.Total, _ = strconv.Atoi(m[4])
	}
	if res.Failed > 0 {
		res.Status = StatusFailed
	}

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		m := dotnetFailedRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		name := strings.TrimSpace(m[1])
		// Skip the summary line itself ("Failed!  - Failed: ...").
		if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "!") {
			continue
		}
		failure := TestFailure{Name: name}
		for j := i + 1; j < len(lines) && j < i+6; j++ {
			if strings.Contains(lines[j], "Error Message:") {
				if j+1 < len(lines) {
					failure.Message = strings.TrimSpace(lines[j+1])
				}
				break
			}
		}
		res.Failures = append(res.Failures, failure)
	}
	return res
}

// ParseKarmaOutput maps Karma console output to a TestResult. Karma prints
// either "TOTAL: 2 FAILED, 10 SUCCESS" or, for clean runs, a single
// "Executed 12 of 12 SUCCESS" line.
func ParseKarmaOutput(out string) TestResult {
	res := TestResult{Target: TargetAngular, Status: StatusPassed}

	if m := karmaTotalRe.FindStringSubmatch(out); m != nil {
		if m[1] != "" {
			res.Failed, _ = strconv.Atoi(m[1])
		}
		res.Passed, _ = strconv.Atoi(m[2])
	}
	if m := karmaExecutedRe.FindStringSubmatch(out); m != nil {
		executed, _ := strconv.Atoi(m[1])
		res.Total, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			res.Skipped, _ = strconv.Atoi(m[3])
		}
		if res.Passed == 0 && res.Failed == 0 {
			res.Passed = executed
		}
	}
	if res.Total == 0 {
		res.Total = res.Passed + res.Failed + res.Skipped
	}
	if res.Failed > 0 {
		res.Status = StatusFailed
		res.Failures = parseKarmaFailures(out)
	}
	return res
}

// parseKarmaFailures extracts failed spec descriptions. Karma reports each
// as the spec name followed by a FAILED marker and indented message lines.
func parseKarmaFailures(out string) []TestFailure {
	var failures []TestFailure
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasSuffix(trimmed, "FAILED") || strings.HasPrefix(trimmed, "TOTAL:") {
			continue
		}
		name := strings.TrimSpace(strings.TrimSuffix(trimmed, "FAILED"))
		if name == "" {
			continue
		}
		failure := TestFailure{Name: name}
		if i+1 < len(lines) {
			msg := strings.TrimSpace(lines[i+1])
			if msg != "" && !strings.HasSuffix(msg, "FAILED") {
				failure.Message = msg
			}
		}
		failures = append(failures, failure)
	}
	return failures
}
