package analysis

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/project"
)

// Category classifies a finding.
type Category string

const (
	CategoryCompliance   Category = "compliance"
	CategoryBug          Category = "bug"
	CategorySecurity     Category = "security"
	CategoryBestPractice Category = "bestPractice"
)

// Finding is a single reported issue. Confidence starts as the raw value
// assigned by the producing task and is revised exactly once by the scorer;
// after scoring a Finding is immutable.
type Finding struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	FilePath   string   `json:"filePath"`
	Line       int      `json:"line,omitempty"`
	Category   Category `json:"category"`
	Detail     string   `json:"detail"`
	Suggestion string   `json:"suggestion,omitempty"`
	Confidence int      `json:"confidence"`
	Source     string   `json:"source"`
}

// NewID derives a stable finding ID from its identity fields. Identical
// issues reported across runs hash to the same ID.
func NewID(path, title string, line int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", path, title, line)))
	return fmt.Sprintf("%x", h[:8])
}

// Task is a pluggable analysis capability: consume a change-set and project
// context, produce findings, succeed or fail independently of sibling tasks.
type Task interface {
	Name() string
	Applies(pctx project.Context) bool
	Run(ctx context.Context, cs gitctx.ChangeSet, pctx project.Context) ([]Finding, error)
}

// DefaultTasks returns the shipped task set. rulesFile enables the policy
// task when non-empty.
func DefaultTasks(rulesFile string) []Task {
	return []Task{
		SecretsTask{},
		HygieneTask{},
		LargeChangeTask{},
		AngularTask{},
		PolicyTask{RulesFile: rulesFile},
	}
}
