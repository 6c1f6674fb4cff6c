package rules

import (
	"testing"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/stretchr/testify/require"
)

func TestLayoutFor(t *testing.T) {
	for _, tool := range models.AllTools {
		l, err := LayoutFor(tool)
		require.NoError(t, err, tool)
		require.Equal(t, tool, l.Tool)
	}

	_, err := LayoutFor(models.Tool("vim"))
	require.Error(t, err)

	doc := Document{Language: "python", Tag: "pytest"}
	cursor, _ := LayoutFor(models.ToolCursor)
	require.Equal(t, ".cursor/rules/python-pytest.mdc", cursor.RelPath(doc))
	copilot, _ := LayoutFor(models.ToolCopilot)
	require.True(t, copilot.Shared())
	require.Equal(t, ".github/copilot-instructions.md", copilot.RelPath(doc))
}

func TestGlobsFor(t *testing.T) {
	require.Equal(t, []string{"**/*.go"}, GlobsFor(" Go "))
	require.Nil(t, GlobsFor("cobol"))

	for lang, globs := range languageGlobs {
		require.NoError(t, validateGlobs(globs), lang)
	}
	require.Error(t, validateGlobs([]string{"**/[a-"}))
}

func TestWriter_PlanPerTag(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/repo")
	fs.AddFile("/repo/.cursor/rules/python-security.mdc", []byte("---\ndescription: stale\n---\n\n# Stale\n"))

	w := NewWriter(fs, "/repo")
	docs := []Document{
		{Language: "python", Tag: "pytest", Content: "- Use fixtures"},
		{Language: "python", Tag: "security", Content: "- Validate input"},
	}

	changes, err := w.Plan(models.ToolCursor, docs)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	require.Equal(t, "/repo/.cursor/rules/python-pytest.mdc", changes[0].Path)
	require.Equal(t, ".cursor/rules/python-pytest.mdc", changes[0].RelPath)
	require.Equal(t, ActionCreate, changes[0].Action)
	require.False(t, changes[0].Exists())
	require.Equal(t, ActionUpdate, changes[1].Action)
	require.True(t, changes[1].Exists())

	require.False(t, fs.Exists("/repo/.cursor/rules/python-pytest.mdc"), "plan must not write")

	for _, c := range changes {
		require.NoError(t, w.Apply(c))
	}
	got, err := fs.ReadFile("/repo/.cursor/rules/python-pytest.mdc")
	require.NoError(t, err)
	require.Equal(t, changes[0].Content, got)

	again, err := w.Plan(models.ToolCursor, docs)
	require.NoError(t, err)
	for _, c := range again {
		require.Equal(t, ActionUnchanged, c.Action, c.RelPath)
	}
}

func TestWriter_PlanShared(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/CLAUDE.md", []byte("# Project\n\nUse make.\n"))

	w := NewWriter(fs, "/repo")
	docs := []Document{
		{Language: "go", Tag: "gin", Content: "- Group routes"},
		{Language: "go", Tag: "testing", Content: "- Table tests"},
	}

	changes, err := w.Plan(models.ToolClaude, docs)
	require.NoError(t, err)
	require.Len(t, changes, 1)

	c := changes[0]
	require.Equal(t, "/repo/CLAUDE.md", c.Path)
	require.Equal(t, []string{"gin", "testing"}, c.Tags)
	require.Equal(t, ActionUpdate, c.Action)
	require.Equal(t, []string{"go-gin", "go-testing"}, Sections(string(c.Content)))
	require.Contains(t, string(c.Content), "# Project\n\nUse make.\n")

	require.NoError(t, w.Apply(c))
	again, err := w.Plan(models.ToolClaude, docs)
	require.NoError(t, err)
	require.Equal(t, ActionUnchanged, again[0].Action)
}

func TestWriter_PlanSharedCreatesNestedFile(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/repo")

	w := NewWriter(fs, "/repo")
	changes, err := w.Plan(models.ToolCopilot, []Document{{Language: "typescript", Tag: "react", Content: "- Use hooks"}})
	require.NoError(t, err)
	require.Equal(t, ActionCreate, changes[0].Action)

	require.NoError(t, w.Apply(changes[0]))
	require.True(t, fs.Exists("/repo/.github/copilot-instructions.md"))
}

func TestWriter_PlanEmpty(t *testing.T) {
	w := NewWriter(filesystem.NewMockFileSystem(), "/repo")

	changes, err := w.Plan(models.ToolRoo, nil)
	require.NoError(t, err)
	require.Empty(t, changes)

	_, err = w.Plan(models.Tool("vim"), nil)
	require.Error(t, err)
}
