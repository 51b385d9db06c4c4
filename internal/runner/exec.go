package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Exec runs an external command and returns its combined output. A non-nil
// error means a non-zero exit or a failure to launch; the output is still
// returned for parsing.
type Exec interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// ShellExec runs real processes.
type ShellExec struct{}

func (ShellExec) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}
