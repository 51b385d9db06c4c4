package review

import (
	"sort"

	"github.com/dshills/precheck/internal/analysis"
)

// dedupKey is the exact-identity tuple for duplicate findings. Coarser
// fuzzy matching across granularities is an extension point, not default
// behavior.
type dedupKey struct {
	path     string
	line     int
	category analysis.Category
}

// Dedupe collapses findings that reference the same (path, line, category)
// tuple, keeping the highest-confidence instance. Output is sorted by path,
// line, then category for stable reports regardless of dispatch order.
func Dedupe(findings []analysis.Finding) []analysis.Finding {
	best := make(map[dedupKey]analysis.Finding, len(findings))
	for _, f := range findings {
		key := dedupKey{f.FilePath, f.Line, f.Category}
		if cur, ok := best[key]; !ok || f.Confidence > cur.Confidence {
			best[key] = f
		}
	}
	out := make([]analysis.Finding, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Filter returns exactly the findings with confidence at or above the
// threshold.
func Filter(findings []analysis.Finding, threshold int) []analysis.Finding {
	out := make([]analysis.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Confidence >= threshold {
			out = append(out, f)
		}
	}
	return out
}

// Aggregate is the final merge step: dedupe scored findings, apply the
// confidence threshold, and return both the surviving findings and the raw
// count for the summary.
func Aggregate(scored []analysis.Finding, threshold int) (filtered []analysis.Finding, raw int) {
	deduped := Dedupe(scored)
	return Filter(deduped, threshold), len(scored)
}
