package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/precheck/internal/analysis"
	"github.com/dshills/precheck/internal/project"
	"github.com/dshills/precheck/internal/review"
	"github.com/dshills/precheck/internal/runner"
)

// sampleReport builds a report with one security and one best-practice
// finding, a passed dotnet build, and everything Angular skipped.
func sampleReport() *review.Report {
	findings := []analysis.Finding{
		{
			ID:         "a1b2c3d4",
			Title:      "Hardcoded credential",
			FilePath:   "src/Auth/Login.cs",
			Line:       42,
			Category:   analysis.CategorySecurity,
			Detail:     "An API key appears in source",
			Suggestion: "Move the key to configuration",
			Confidence: 95,
			Source:     "secrets",
		},
		{
			ID:         "e5f6a7b8",
			Title:      "Untyped any",
			FilePath:   "src/app/app.component.ts",
			Line:       7,
			Category:   analysis.CategoryBestPractice,
			Detail:     "Explicit any defeats type checking",
			Confidence: 80,
			Source:     "angular",
		},
	}
	builds := []runner.BuildResult{
		{Target: runner.TargetDotnet, Status: runner.StatusPassed, DurationMs: 1200},
		{Target: runner.TargetAngular, Status: runner.StatusSkipped},
	}
	tests := []runner.TestResult{
		{Target: runner.TargetDotnet, Status: runner.StatusPassed, Total: 10, Passed: 10},
		{Target: runner.TargetAngular, Status: runner.StatusSkipped},
	}
	return &review.Report{
		Tool:        "precheck",
		Version:     "1.0",
		RunID:       "run-1",
		Repo:        review.RepoInfo{Root: "/tmp/repo", Head: "abc1234", Branch: "main"},
		ChangeCount: 2,
		Projects:    project.Context{Solutions: []string{"/tmp/repo/App.sln"}},
		Builds:      builds,
		Tests:       tests,
		Findings:    findings,
		Summary:     review.ComputeSummary(5, findings, 80, builds, tests),
	}
}

// allSkippedReport builds a report for a repo with no detected projects.
func allSkippedReport() *review.Report {
	builds := []runner.BuildResult{
		{Target: runner.TargetDotnet, Status: runner.StatusSkipped},
		{Target: runner.TargetAngular, Status: runner.StatusSkipped},
	}
	tests := []runner.TestResult{
		{Target: runner.TargetDotnet, Status: runner.StatusSkipped},
		{Target: runner.TargetAngular, Status: runner.StatusSkipped},
	}
	return &review.Report{
		Tool:        "precheck",
		Version:     "1.0",
		RunID:       "run-2",
		Repo:        review.RepoInfo{Root: "/tmp/repo", Branch: "main"},
		ChangeCount: 1,
		Builds:      builds,
		Tests:       tests,
		Summary:     review.ComputeSummary(0, nil, 80, builds, tests),
	}
}

func TestTextWriter_NoFindings(t *testing.T) {
	report := allSkippedReport()

	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "PASSED") {
		t.Error("Output should show the passed verdict")
	}
	if !strings.Contains(out, "NOT APPLICABLE") {
		t.Error("Skipped stages should render as NOT APPLICABLE")
	}
	if !strings.Contains(out, "none detected") {
		t.Error("Output should say no projects were detected")
	}
	if !strings.Contains(out, "No issues found") {
		t.Error("Output should say no issues found")
	}
}

func TestTextWriter_WithFindings(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "NEEDS ATTENTION") {
		t.Error("Output should show the needsAttention verdict")
	}
	if !strings.Contains(out, "src/Auth/Login.cs:42") {
		t.Error("Output should show the finding location")
	}
	if !strings.Contains(out, "Confidence: 95%") {
		t.Error("Output should show the confidence")
	}
	if !strings.Contains(out, "Move the key to configuration") {
		t.Error("Output should show the suggestion")
	}

	// Security section renders before best practice
	secIdx := strings.Index(out, "SECURITY")
	bpIdx := strings.Index(out, "BESTPRACTICE")
	if secIdx < 0 || bpIdx < 0 {
		t.Fatalf("Missing category headers in output:\n%s", out)
	}
	if secIdx > bpIdx {
		t.Error("Security findings should render before best practice")
	}
}

func TestTextWriter_BuildFailure(t *testing.T) {
	report := sampleReport()
	report.Builds[0] = runner.BuildResult{
		Target:       runner.TargetDotnet,
		Status:       runner.StatusFailed,
		ErrorSummary: "Program.cs(10,5): error CS0103: The name 'x' does not exist",
		DurationMs:   900,
	}
	report.Summary = review.ComputeSummary(5, report.Findings, 80, report.Builds, report.Tests)

	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FAILED") {
		t.Error("Output should show the failed verdict")
	}
	if !strings.Contains(out, "error CS0103") {
		t.Error("Output should include the build error summary")
	}
}

func TestTextWriter_DegradedSources(t *testing.T) {
	report := sampleReport()
	report.Degraded = []analysis.DegradedSource{
		{Task: "policy", Reason: "timed out"},
	}

	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "policy: timed out") {
		t.Error("Output should list degraded tasks")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  int
	}{
		{"short stays single line", "hello world", 70, 1},
		{"long text wraps", strings.Repeat("word ", 40), 70, 3},
		{"exact width single line", strings.Repeat("a", 70), 70, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			if len(got) != tt.want {
				t.Errorf("wrapText line count = %d, want %d", len(got), tt.want)
			}
			for _, line := range got {
				if len(line) > tt.width {
					t.Errorf("Line exceeds width %d: %q", tt.width, line)
				}
			}
		})
	}
}
