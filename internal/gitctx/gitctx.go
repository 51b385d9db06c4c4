package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Terminal extraction errors. Both abort the run before any other stage starts.
var (
	ErrNoChanges     = errors.New("working tree is clean: nothing to review")
	ErrNotRepository = errors.New("not a git repository")
)

// ChangeKind classifies a file-level change.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindDeleted  ChangeKind = "deleted"
	KindRenamed  ChangeKind = "renamed"
)

// LineKind classifies a single hunk line.
type LineKind byte

const (
	LineContext LineKind = ' '
	LineAdded   LineKind = '+'
	LineRemoved LineKind = '-'
)

// HunkLine is one line of a diff hunk. Number is the line's position in the
// new file; it is zero for removed lines.
type HunkLine struct {
	Kind   LineKind
	Number int
	Text   string
}

// Hunk is a contiguous region of change within one file.
type Hunk struct {
	Header   string
	NewStart int
	NewLines int
	Lines    []HunkLine
}

// FileChange is one changed file with its parsed hunks.
type FileChange struct {
	Path  string
	Kind  ChangeKind
	Hunks []Hunk
}

// AddedLines returns the hunk lines this change introduces, in order.
func (fc FileChange) AddedLines() []HunkLine {
	var out []HunkLine
	for _, h := range fc.Hunks {
		for _, l := range h.Lines {
			if l.Kind == LineAdded {
				out = append(out, l)
			}
		}
	}
	return out
}

// ChangeSet is the full set of staged and unstaged differences against HEAD.
// It is immutable once extracted and scoped to a single review run.
type ChangeSet struct {
	Root   string
	Head   string
	Branch string
	Files  []FileChange
}

// Paths returns the changed file paths in change-set order.
func (cs ChangeSet) Paths() []string {
	paths := make([]string, 0, len(cs.Files))
	for _, f := range cs.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Runner executes a git subcommand and returns its stdout.
type Runner interface {
	Output(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner shells out to the git binary.
type GitRunner struct{}

func (GitRunner) Output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("git %s: %s: %s", strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Extract collects the ChangeSet for the working tree at root, covering
// staged and unstaged changes plus untracked files. Returns ErrNotRepository
// if root is not under git, ErrNoChanges if the tree is clean.
func Extract(ctx context.Context, run Runner, root string) (ChangeSet, error) {
	top, err := run.Output(ctx, root, "rev-parse", "--show-toplevel")
	if err != nil {
		return ChangeSet{}, fmt.Errorf("%w: %s", ErrNotRepository, root)
	}
	cs := ChangeSet{Root: strings.TrimSpace(top)}

	if head, err := run.Output(ctx, root, "rev-parse", "HEAD"); err == nil {
		cs.Head = strings.TrimSpace(head)
	}
	if branch, err := run.Output(ctx, root, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		cs.Branch = strings.TrimSpace(branch)
	}

	status, err := run.Output(ctx, root, "status", "--porcelain")
	if err != nil {
		return ChangeSet{}, err
	}
	kinds, untracked := parseStatus(status)
	if len(kinds) == 0 {
		return ChangeSet{}, ErrNoChanges
	}

	diff, err := run.Output(ctx, root, "diff", "HEAD", "--")
	if err != nil {
		// A repo with no commits has no HEAD to diff against; every change
		// is handled as a new file below.
		diff = ""
	}
	byPath := make(map[string]*FileChange)
	for _, fd := range parseUnified(diff) {
		fd := fd
		byPath[fd.Path] = &fd
	}

	paths := make([]string, 0, len(kinds))
	for p := range kinds {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fc := FileChange{Path: p, Kind: kinds[p]}
		if parsed, ok := byPath[p]; ok {
			fc.Hunks = parsed.Hunks
		} else if untracked[p] {
			fc.Hunks = synthesizeNewFile(filepath.Join(cs.Root, p))
		}
		cs.Files = append(cs.Files, fc)
	}
	return cs, nil
}

// parseStatus maps `git status --porcelain` output to per-path change kinds.
// The second return marks untracked paths, which need synthetic hunks since
// they do not appear in `git diff HEAD`.
func parseStatus(out string) (map[string]ChangeKind, map[string]bool) {
	kinds := make(map[string]ChangeKind)
	untracked := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := strings.TrimSpace(line[3:])
		switch {
		case code == "??":
			kinds[path] = KindAdded
			untracked[path] = true
		case strings.ContainsAny(code, "R"):
			// Renames report "old -> new"; review the new path.
			if idx := strings.Index(path, " -> "); idx >= 0 {
				path = path[idx+4:]
			}
			kinds[path] = KindRenamed
		case strings.ContainsAny(code, "A"):
			kinds[path] = KindAdded
		case strings.ContainsAny(code, "D"):
			kinds[path] = KindDeleted
		default:
			kinds[path] = KindModified
		}
	}
	return kinds, untracked
}

// parseUnified splits a unified diff into per-file changes with hunks.
func parseUnified(diff string) []FileChange {
	var files []FileChange
	var current *FileChange
	var hunk *Hunk
	var newLine int

	flushHunk := func() {
		if current != nil && hunk != nil {
			current.Hunks = append(current.Hunks, *hunk)
		}
		hunk = nil
	}
	flushFile := func() {
		flushHunk()
		if current != nil {
			files = append(files, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flushFile()
			current = &FileChange{Path: pathFromHeader(line)}
		case strings.HasPrefix(line, "+++ b/"):
			if current != nil {
				current.Path = strings.TrimPrefix(line, "+++ b/")
			}
		case strings.HasPrefix(line, "@@"):
			flushHunk()
			start, count := parseHunkHeader(line)
			hunk = &Hunk{Header: line, NewStart: start, NewLines: count}
			newLine = start
		case hunk != nil && len(line) > 0:
			switch line[0] {
			case '+':
				hunk.Lines = append(hunk.Lines, HunkLine{Kind: LineAdded, Number: newLine, Text: line[1:]})
				newLine++
			case '-':
				hunk.Lines = append(hunk.Lines, HunkLine{Kind: LineRemoved, Text: line[1:]})
			case ' ':
				hunk.Lines = append(hunk.Lines, HunkLine{Kind: LineContext, Number: newLine, Text: line[1:]})
				newLine++
			}
		}
	}
	flushFile()
	return files
}

func pathFromHeader(line string) string {
	parts := strings.Split(line, " ")
	if len(parts) < 4 {
		return ""
	}
	return strings.TrimPrefix(parts[3], "b/")
}

// parseHunkHeader extracts the new-file start and line count from a header
// like "@@ -12,4 +15,6 @@".
func parseHunkHeader(line string) (start, count int) {
	count = 1
	for _, f := range strings.Fields(line) {
		if !strings.HasPrefix(f, "+") {
			continue
		}
		spec := strings.TrimPrefix(f, "+")
		if idx := strings.Index(spec, ","); idx >= 0 {
			count, _ = strconv.Atoi(spec[idx+1:])
			spec = spec[:idx]
		}
		start, _ = strconv.Atoi(spec)
		return start, count
	}
	return 0, 0
}

// maxSynthBytes caps how much of an untracked file is turned into a
// synthetic hunk.
const maxSynthBytes = 1 << 20 // 1MB

// synthesizeNewFile builds a single all-added hunk from an untracked file's
// content so analysis tasks see new files the same way as tracked ones.
func synthesizeNewFile(absPath string) []Hunk {
	data, err := os.ReadFile(absPath)
	if err != nil || len(data) > maxSynthBytes {
		return nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	h := Hunk{
		Header:   fmt.Sprintf("@@ -0,0 +1,%d @@", len(lines)),
		NewStart: 1,
		NewLines: len(lines),
	}
	for i, l := range lines {
		h.Lines = append(h.Lines, HunkLine{Kind: LineAdded, Number: i + 1, Text: l})
	}
	return []Hunk{h}
}
