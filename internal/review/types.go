package review

import (
	"github.com/dshills/precheck/internal/analysis"
	"github.com/dshills/precheck/internal/project"
	"github.com/dshills/precheck/internal/runner"
)

// Verdict is the tri-state outcome of a review run.
type Verdict string

const (
	VerdictPassed         Verdict = "passed"
	VerdictNeedsAttention Verdict = "needsAttention"
	VerdictFailed         Verdict = "failed"
)

// CategoryCounts holds filtered-finding counts by category.
type CategoryCounts struct {
	Compliance   int `json:"compliance"`
	Bug          int `json:"bug"`
	Security     int `json:"security"`
	BestPractice int `json:"bestPractice"`
}

// Summary is the report overview.
type Summary struct {
	RawFindings      int            `json:"rawFindings"`
	FilteredFindings int            `json:"filteredFindings"`
	Counts           CategoryCounts `json:"counts"`
	Threshold        int            `json:"threshold"`
	Verdict          Verdict        `json:"verdict"`
}

// Timing contains stage wall-clock metrics.
type Timing struct {
	GitMs      int64 `json:"gitMs"`
	AnalysisMs int64 `json:"analysisMs"`
	BuildMs    int64 `json:"buildMs"`
	TestMs     int64 `json:"testMs"`
	TotalMs    int64 `json:"totalMs"`
}

// RepoInfo identifies what was reviewed.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// Report is the terminal artifact of a run: constructed once by the
// aggregator, immutable afterward.
type Report struct {
	Tool        string                    `json:"tool"`
	Version     string                    `json:"version"`
	RunID       string                    `json:"runId"`
	Repo        RepoInfo                  `json:"repo"`
	ChangeCount int                       `json:"changeCount"`
	Projects    project.Context           `json:"projects"`
	Builds      []runner.BuildResult      `json:"builds"`
	Tests       []runner.TestResult       `json:"tests"`
	Findings    []analysis.Finding        `json:"findings"`
	Degraded    []analysis.DegradedSource `json:"degradedSources,omitempty"`
	Summary     Summary                   `json:"summary"`
	Timing      Timing                    `json:"timing"`
}

// ComputeSummary derives the overview from filtered findings and stage
// outcomes.
func ComputeSummary(raw int, filtered []analysis.Finding, threshold int, builds []runner.BuildResult, tests []runner.TestResult) Summary {
	s := Summary{
		RawFindings:      raw,
		FilteredFindings: len(filtered),
		Threshold:        threshold,
	}
	for _, f := range filtered {
		switch f.Category {
		case analysis.CategoryCompliance:
			s.Counts.Compliance++
		case analysis.CategoryBug:
			s.Counts.Bug++
		case analysis.CategorySecurity:
			s.Counts.Security++
		case analysis.CategoryBestPractice:
			s.Counts.BestPractice++
		}
	}
	s.Verdict = ComputeVerdict(filtered, builds, tests)
	return s
}

// ComputeVerdict derives the tri-state verdict: failed if any build failed
// or any test stage has failures, needsAttention if any filtered finding
// remains, passed otherwise.
func ComputeVerdict(filtered []analysis.Finding, builds []runner.BuildResult, tests []runner.TestResult) Verdict {
	for _, b := range builds {
		if b.Status == runner.StatusFailed {
			return VerdictFailed
		}
	}
	for _, t := range tests {
		if t.Status == runner.StatusFailed || t.Failed > 0 {
			return VerdictFailed
		}
	}
	if len(filtered) > 0 {
		return VerdictNeedsAttention
	}
	return VerdictPassed
}
