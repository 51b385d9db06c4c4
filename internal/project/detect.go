package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/precheck/internal/gitctx"
)

// Context describes the project kinds discovered for one review run. It is
// built once and read-only afterward.
type Context struct {
	Solutions      []string `json:"solutions"`
	AngularConfigs []string `json:"angularConfigs"`
	TestProjects   []string `json:"testProjects"`
}

// HasDotnet reports whether any .NET solution was found.
func (c Context) HasDotnet() bool { return len(c.Solutions) > 0 }

// HasAngular reports whether any Angular workspace was found.
func (c Context) HasAngular() bool { return len(c.AngularConfigs) > 0 }

// HasTests reports whether any test target was found.
func (c Context) HasTests() bool { return len(c.TestProjects) > 0 }

// Empty reports whether no project kind was recognized at all. An empty
// context is a valid analysis-only run, not an error.
func (c Context) Empty() bool {
	return !c.HasDotnet() && !c.HasAngular() && !c.HasTests()
}

// TestMarkers configures how test projects are recognized: file name globs
// and dependency-declaration substrings searched inside build descriptors.
type TestMarkers struct {
	NamePatterns    []string
	DependencyHints []string
}

// DefaultTestMarkers covers the common xUnit/NUnit/MSTest and Karma setups.
func DefaultTestMarkers() TestMarkers {
	return TestMarkers{
		NamePatterns: []string{
			"*Tests.csproj",
			"*.Test.csproj",
			"*.Tests.csproj",
			"karma.conf.js",
		},
		DependencyHints: []string{"xunit", "nunit", "MSTest.TestFramework"},
	}
}

// Options controls detection scope.
type Options struct {
	// MaxDepth bounds how many ancestor directories above the root are
	// searched for solution and framework descriptors.
	MaxDepth int
	Markers  TestMarkers
}

// DefaultOptions matches the documented defaults (3 ancestor levels).
func DefaultOptions() Options {
	return Options{MaxDepth: 3, Markers: DefaultTestMarkers()}
}

// Detect classifies the project kinds present at root. Solution files and
// angular.json are searched in the root directory and up to opts.MaxDepth
// ancestors; test-project descriptors are searched in the directories the
// change-set touches.
func Detect(root string, cs gitctx.ChangeSet, opts Options) Context {
	var ctx Context

	dir := root
	for depth := 0; depth <= opts.MaxDepth; depth++ {
		ctx.Solutions = append(ctx.Solutions, globDir(dir, "*.sln")...)
		if fileExists(filepath.Join(dir, "angular.json")) {
			ctx.AngularConfigs = append(ctx.AngularConfigs, filepath.Join(dir, "angular.json"))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	ctx.TestProjects = findTestProjects(root, cs, opts.Markers)

	sort.Strings(ctx.Solutions)
	sort.Strings(ctx.AngularConfigs)
	sort.Strings(ctx.TestProjects)
	return ctx
}

// findTestProjects scans the directories containing changed files, and every
// ancestor up to the root, for descriptors matching the configured markers.
func findTestProjects(root string, cs gitctx.ChangeSet, markers TestMarkers) []string {
	dirs := make(map[string]bool)
	for _, fc := range cs.Files {
		d := filepath.Join(root, filepath.Dir(fc.Path))
		for {
			rel, err := filepath.Rel(root, d)
			if err != nil || strings.HasPrefix(rel, "..") {
				break
			}
			dirs[d] = true
			if d == root {
				break
			}
			d = filepath.Dir(d)
		}
	}
	if len(dirs) == 0 {
		dirs[root] = true
	}

	seen := make(map[string]bool)
	var found []string
	for d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			full := filepath.Join(d, e.Name())
			if seen[full] {
				continue
			}
			if isTestDescriptor(full, e.Name(), markers) {
				seen[full] = true
				found = append(found, full)
			}
		}
	}
	return found
}

// maxDescriptorBytes caps how much of a build descriptor is read when
// checking for test-framework dependency declarations.
const maxDescriptorBytes = 256 << 10

func isTestDescriptor(path, name string, markers TestMarkers) bool {
	for _, pat := range markers.NamePatterns {
		if ok, err := filepath.Match(pat, name); err == nil && ok {
			return true
		}
	}
	if !strings.HasSuffix(name, ".csproj") {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) > maxDescriptorBytes {
		return false
	}
	content := string(data)
	for _, hint := range markers.DependencyHints {
		if strings.Contains(content, hint) {
			return true
		}
	}
	return false
}

func globDir(dir, pattern string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil
	}
	return matches
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
