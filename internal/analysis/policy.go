package analysis

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

// PolicyRule is one compliance rule from the rules file.
type PolicyRule struct {
	ID         string `yaml:"id"`
	Pattern    string `yaml:"pattern"`
	Message    string `yaml:"message"`
	Suggestion string `yaml:"suggestion"`
	Confidence int    `yaml:"confidence"`
}

// PolicyRules is the rules-file document.
type PolicyRules struct {
	Rules []PolicyRule `yaml:"rules"`
}

// LoadPolicyRules reads and validates a YAML rules file.
func LoadPolicyRules(path string) (*PolicyRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules PolicyRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	for i, r := range rules.Rules {
		if r.ID == "" || r.Pattern == "" {
			return nil, fmt.Errorf("rule %d: id and pattern are required", i)
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return nil, fmt.Errorf("rule %s: invalid pattern: %w", r.ID, err)
		}
		if r.Confidence < 0 || r.Confidence > 100 {
			return nil, fmt.Errorf("rule %s: confidence must be 0-100", r.ID)
		}
	}
	return &rules, nil
}

// PolicyTask flags added lines matching organization compliance rules. It
// applies only when a rules file is configured.
type PolicyTask struct {
	RulesFile string
}

func (PolicyTask) Name() string { return "policy" }

func (t PolicyTask) Applies(project.Context) bool { return t.RulesFile != "" }

func (t PolicyTask) Run(ctx context.Context, cs gitctx.ChangeSet, _ project.Context) ([]Finding, error) {
	rules, err := LoadPolicyRules(t.RulesFile)
	if err != nil {
		return nil, err
	}

	compiled := make([]*regexp.Regexp, len(rules.Rules))
	for i, r := range rules.Rules {
		compiled[i] = regexp.MustCompile(r.Pattern)
	}

	var findings []Finding
	for _, fc := range cs.Files {
		if fc.Kind == gitctx.KindDeleted {
			continue
		}
		for _, line := range fc.AddedLines() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for i, r := range rules.Rules {
				if !compiled[i].MatchString(line.Text) {
					continue
				}
				conf := r.Confidence
				if conf == 0 {
					conf = 75
				}
				findings = append(findings, Finding{
					Title:      fmt.Sprintf("Policy violation: %s", r.ID),
					FilePath:   fc.Path,
					Line:       line.Number,
					Category:   CategoryCompliance,
					Detail:     r.Message,
					Suggestion: r.Suggestion,
					Confidence: conf,
				})
			}
		}
	}
	return findings, nil
}
