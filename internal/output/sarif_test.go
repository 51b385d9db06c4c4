package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dshills/precheck/internal/analysis"
)

func TestSARIFWriter_Empty(t *testing.T) {
	report := allSkippedReport()

	var buf bytes.Buffer
	w := &SARIFWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", sarif.Version, "2.1.0")
	}
	if len(sarif.Runs) != 1 {
		t.Fatalf("Runs count = %d, want 1", len(sarif.Runs))
	}
	if len(sarif.Runs[0].Results) != 0 {
		t.Errorf("Results count = %d, want 0", len(sarif.Runs[0].Results))
	}
	if sarif.Runs[0].Tool.Driver.Name != "precheck" {
		t.Errorf("Driver name = %q, want %q", sarif.Runs[0].Tool.Driver.Name, "precheck")
	}
}

func TestSARIFWriter_WithFindings(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	w := &SARIFWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}

	run := sarif.Runs[0]
	if len(run.Results) != 2 {
		t.Fatalf("Results count = %d, want 2", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("Rules count = %d, want 2", len(run.Tool.Driver.Rules))
	}

	// Security finding maps to error level
	sec := run.Results[0]
	if sec.Level != "error" {
		t.Errorf("Security result level = %q, want %q", sec.Level, "error")
	}
	if len(sec.Locations) != 1 {
		t.Fatalf("Security result locations = %d, want 1", len(sec.Locations))
	}
	loc := sec.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "src/Auth/Login.cs" {
		t.Errorf("URI = %q, want %q", loc.ArtifactLocation.URI, "src/Auth/Login.cs")
	}
	if loc.Region.StartLine != 42 {
		t.Errorf("StartLine = %d, want 42", loc.Region.StartLine)
	}
	if len(sec.Fixes) != 1 {
		t.Errorf("Security result fixes = %d, want 1", len(sec.Fixes))
	}
}

func TestSARIFWriter_FileLevelFinding(t *testing.T) {
	report := sampleReport()
	report.Findings = []analysis.Finding{
		{
			ID:       "cafe0102",
			Title:    "Sweeping change without tests",
			FilePath: "src/Billing/Invoice.cs",
			Category: analysis.CategoryBug,
			Detail:   "231 added lines with no accompanying test changes",
			Source:   "largechange",
		},
	}

	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}

	// Line 0 findings clamp to line 1 so SARIF consumers accept them
	region := sarif.Runs[0].Results[0].Locations[0].PhysicalLocation.Region
	if region.StartLine != 1 {
		t.Errorf("StartLine = %d, want 1", region.StartLine)
	}
}

func TestFindingToLevel(t *testing.T) {
	tests := []struct {
		name    string
		finding analysis.Finding
		want    string
	}{
		{"security is error", analysis.Finding{Category: analysis.CategorySecurity, Confidence: 40}, "error"},
		{"bug is error", analysis.Finding{Category: analysis.CategoryBug, Confidence: 50}, "error"},
		{"confident compliance is warning", analysis.Finding{Category: analysis.CategoryCompliance, Confidence: 80}, "warning"},
		{"low-confidence best practice is note", analysis.Finding{Category: analysis.CategoryBestPractice, Confidence: 40}, "note"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findingToLevel(tt.finding); got != tt.want {
				t.Errorf("findingToLevel = %q, want %q", got, tt.want)
			}
		})
	}
}
