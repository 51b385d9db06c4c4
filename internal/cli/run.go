package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/precheck/internal/analysis"
	"github.com/dshills/precheck/internal/config"
	"github.com/dshills/precheck/internal/gitctx"
	"github.com/dshills/precheck/internal/output"
	"github.com/dshills/precheck/internal/review"
	"github.com/dshills/precheck/internal/store"
)

var (
	flagRoot        string
	flagWithTests   bool
	flagThreshold   int
	flagFormat      string
	flagOut         string
	flagDepth       int
	flagTaskTimeout int
	flagRules       string
	flagNoHistory   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Review pending changes in the current repository",
	Long: "Run extracts the working-tree change-set, analyzes it with the configured\n" +
		"tasks, optionally builds and tests detected projects, and prints a report.\n" +
		"The exit code reflects the verdict: 0 passed, 1 needs attention, 3 failed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		runReview(cfg)
		return nil
	},
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagThreshold > 0 {
		m["threshold"] = strconv.Itoa(flagThreshold)
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagWithTests {
		m["withTests"] = "true"
	}
	if flagTaskTimeout > 0 {
		m["taskTimeout"] = strconv.Itoa(flagTaskTimeout)
	}
	if flagDepth > 0 {
		m["detectDepth"] = strconv.Itoa(flagDepth)
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagNoHistory {
		m["historyDisabled"] = "true"
	}
	return m
}

// enabledTasks returns the default task set minus anything disabled in the
// config.
func enabledTasks(cfg config.Config) []analysis.Task {
	all := analysis.DefaultTasks(cfg.RulesFile)
	if len(cfg.DisabledTasks) == 0 {
		return all
	}
	disabled := make(map[string]bool, len(cfg.DisabledTasks))
	for _, name := range cfg.DisabledTasks {
		disabled[name] = true
	}
	var tasks []analysis.Task
	for _, t := range all {
		if !disabled[t.Name()] {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func runReview(cfg config.Config) {
	ctx := context.Background()

	report, err := review.Run(ctx, review.Options{
		Root:        flagRoot,
		Threshold:   cfg.Threshold,
		WithTests:   cfg.WithTests,
		TaskTimeout: time.Duration(cfg.TaskTimeoutSeconds) * time.Second,
		DetectDepth: cfg.DetectDepth,
		RulesFile:   cfg.RulesFile,
		Tasks:       enabledTasks(cfg),
		Log:         logger,
	})
	if err != nil {
		switch {
		case errors.Is(err, gitctx.ErrNoChanges):
			fmt.Fprintln(os.Stdout, "No pending changes to review.")
			exitCode = ExitPassed
		case errors.Is(err, gitctx.ErrNotRepository):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if !cfg.History.Disabled {
		if err := recordHistory(cfg, report); err != nil {
			// History is best effort; a full disk never blocks the verdict.
			fmt.Fprintf(os.Stderr, "Warning: could not record run history: %v\n", err)
		}
	}

	exitCode = verdictExitCode(report.Summary.Verdict)
}

func recordHistory(cfg config.Config, report *review.Report) error {
	path := cfg.History.Path
	if path == "" {
		p, err := store.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Record(report)
}

func verdictExitCode(v review.Verdict) int {
	switch v {
	case review.VerdictPassed:
		return ExitPassed
	case review.VerdictNeedsAttention:
		return ExitNeedsAttention
	case review.VerdictFailed:
		return ExitFailed
	default:
		return ExitRuntimeError
	}
}

func init() {
	runCmd.Flags().StringVar(&flagRoot, "root", "", "Repository root (default: current directory)")
	runCmd.Flags().BoolVar(&flagWithTests, "with-tests", false, "Run detected test suites")
	runCmd.Flags().IntVar(&flagThreshold, "threshold", 0, "Minimum confidence (0-100) for findings to surface")
	runCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	runCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	runCmd.Flags().IntVar(&flagDepth, "depth", 0, "Ancestor directory levels to scan for project descriptors")
	runCmd.Flags().IntVar(&flagTaskTimeout, "task-timeout", 0, "Per-task timeout in seconds")
	runCmd.Flags().StringVar(&flagRules, "rules", "", "Policy rules file path")
	runCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Skip recording this run in history")
}
