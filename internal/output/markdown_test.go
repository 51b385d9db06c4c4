package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/precheck/internal/runner"
)

func TestMarkdownWriter_Clean(t *testing.T) {
	report := allSkippedReport()

	var buf bytes.Buffer
	w := &MarkdownWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "## Precheck Review") {
		t.Error("Output should have the report heading")
	}
	if !strings.Contains(out, "NOT APPLICABLE") {
		t.Error("Skipped stages should render as NOT APPLICABLE")
	}
	if !strings.Contains(out, "No issues found") {
		t.Error("Clean report should say no issues found")
	}
	if strings.Contains(out, "<details>") {
		t.Error("Clean report should have no collapsible sections")
	}
}

func TestMarkdownWriter_WithFindings(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	w := &MarkdownWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "| Security | 1 |") {
		t.Error("Summary table should count security findings")
	}
	if !strings.Contains(out, "| **Total** | **2** |") {
		t.Error("Summary table should show the total")
	}
	if !strings.Contains(out, "<details>") || !strings.Contains(out, "</details>") {
		t.Error("Findings should render inside collapsible sections")
	}
	if !strings.Contains(out, "### Hardcoded credential") {
		t.Error("Finding title should render as a heading")
	}
	if !strings.Contains(out, "`src/Auth/Login.cs:42`") {
		t.Error("Finding location should render in backticks")
	}
}

func TestMarkdownWriter_TestFailures(t *testing.T) {
	report := sampleReport()
	report.Tests[0] = runner.TestResult{
		Target: runner.TargetDotnet,
		Status: runner.StatusFailed,
		Total:  10, Passed: 8, Failed: 2,
		Failures: []runner.TestFailure{
			{Name: "Auth.LoginTests.RejectsEmptyPassword", Message: "Expected false, got true"},
		},
	}

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "8 passed, 2 failed") {
		t.Error("Test stage cell should show pass/fail counts")
	}
	if !strings.Contains(out, "Auth.LoginTests.RejectsEmptyPassword") {
		t.Error("Failed test names should be listed")
	}
}

func TestLooksLikeCode(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"var x = 5;", true},
		{"if (user == null) return;", true},
		{"Consider extracting this into a helper method", false},
		{"using Microsoft.Extensions.Logging;", true},
	}
	for _, tt := range tests {
		if got := looksLikeCode(tt.input); got != tt.want {
			t.Errorf("looksLikeCode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInferLang(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/Auth/Login.cs", "csharp"},
		{"src/app/app.component.ts", "typescript"},
		{"angular.json", "json"},
		{"README.md", ""},
	}
	for _, tt := range tests {
		if got := inferLang(tt.path); got != tt.want {
			t.Errorf("inferLang(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
