package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/precheck/internal/gitctx"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetect_SolutionAndAngular(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "App.sln"), "")
	write(t, filepath.Join(root, "angular.json"), "{}")

	ctx := Detect(root, gitctx.ChangeSet{}, DefaultOptions())
	assert.True(t, ctx.HasDotnet())
	assert.True(t, ctx.HasAngular())
	assert.False(t, ctx.Empty())
}

func TestDetect_AncestorSearchBounded(t *testing.T) {
	base := t.TempDir()
	write(t, filepath.Join(base, "Top.sln"), "")
	deep := filepath.Join(base, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	// Four levels up exceeds the default depth of 3.
	ctx := Detect(deep, gitctx.ChangeSet{}, DefaultOptions())
	assert.False(t, ctx.HasDotnet())

	// From three levels down the solution is within reach.
	ctx = Detect(filepath.Join(base, "a", "b", "c"), gitctx.ChangeSet{}, DefaultOptions())
	assert.True(t, ctx.HasDotnet())
}

func TestDetect_TestProjectsByName(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "src", "Svc.Tests", "Svc.Tests.csproj"), "<Project/>")
	write(t, filepath.Join(root, "src", "Svc.Tests", "Fixture.cs"), "")

	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{
		{Path: "src/Svc.Tests/Fixture.cs", Kind: gitctx.KindModified},
	}}
	ctx := Detect(root, cs, DefaultOptions())
	require.Len(t, ctx.TestProjects, 1)
	assert.Contains(t, ctx.TestProjects[0], "Svc.Tests.csproj")
}

func TestDetect_TestProjectsByDependencyHint(t *testing.T) {
	root := t.TempDir()
	csproj := `<Project><ItemGroup>
		<PackageReference Include="xunit" Version="2.6.1" />
	</ItemGroup></Project>`
	write(t, filepath.Join(root, "Checks", "Checks.csproj"), csproj)

	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{
		{Path: "Checks/CheckTests.cs", Kind: gitctx.KindAdded},
	}}
	ctx := Detect(root, cs, DefaultOptions())
	require.Len(t, ctx.TestProjects, 1)
	assert.True(t, ctx.HasTests())
}

func TestDetect_NoProjects(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "notes.md"), "hello")

	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{
		{Path: "notes.md", Kind: gitctx.KindModified},
	}}
	ctx := Detect(root, cs, DefaultOptions())
	assert.True(t, ctx.Empty())
}

func TestIsTestDescriptor_PlainLibraryProject(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Lib.csproj")
	write(t, path, "<Project><ItemGroup/></Project>")
	assert.False(t, isTestDescriptor(path, "Lib.csproj", DefaultTestMarkers()))
}
