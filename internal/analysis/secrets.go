package analysis

import (
	"context"
	"regexp"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

// secretPattern pairs a credential heuristic with its title and raw
// confidence. Prefixed vendor tokens are near-certain; generic assignment
// patterns are weaker.
type secretPattern struct {
	re         *regexp.Regexp
	title      string
	confidence int
}

var secretPatterns = []secretPattern{
	{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "AWS access key ID in source", 95},
	{regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`), "AWS secret access key in source", 95},
	{regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`), "GitHub token in source", 95},
	{regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`), "Slack token in source", 95},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`), "JWT committed to source", 85},
	{regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`), "Private key block in source", 95},
	{regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`), "Bearer token in source", 80},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`), "API key assignment in source", 80},
	{regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`), "Hardcoded credential assignment", 70},
}

// SecretsTask flags added lines that look like committed credentials.
type SecretsTask struct{}

func (SecretsTask) Name() string { return "secrets" }

func (SecretsTask) Applies(project.Context) bool { return true }

func (SecretsTask) Run(ctx context.Context, cs gitctx.ChangeSet, _ project.Context) ([]Finding, error) {
	var findings []Finding
	for _, fc := range cs.Files {
		if fc.Kind == gitctx.KindDeleted {
			continue
		}
		for _, line := range fc.AddedLines() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, p := range secretPatterns {
				if !p.re.MatchString(line.Text) {
					continue
				}
				findings = append(findings, Finding{
					Title:      p.title,
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategorySecurity,
					Detail:     "The added line matches a known credential pattern. Committed secrets stay in history even after removal.",
					Suggestion: "Move the value to environment configuration or a secret store and rotate the credential.",
					Confidence: p.confidence,
				})
				break // one finding per line is enough
			}
		}
	}
	return findings, nil
}
