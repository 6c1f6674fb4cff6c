package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
)

// ErrPathEscapesRoot is returned when a rule file would land outside the
// project root.
var ErrPathEscapesRoot = filesystem.ErrPathEscapesRoot

// Layout describes where a tool expects its rules. Tools either get one file
// per tag inside Dir, or one SharedFile holding a marked section per tag.
type Layout struct {
	Tool       models.Tool
	Dir        string
	Ext        string
	SharedFile string
}

var layouts = map[models.Tool]Layout{
	models.ToolCursor:   {Tool: models.ToolCursor, Dir: ".cursor/rules", Ext: ".mdc"},
	models.ToolRoo:      {Tool: models.ToolRoo, Dir: ".roo/rules", Ext: ".md"},
	models.ToolWindsurf: {Tool: models.ToolWindsurf, Dir: ".windsurf/rules", Ext: ".md"},
	models.ToolClaude:   {Tool: models.ToolClaude, SharedFile: "CLAUDE.md"},
	models.ToolCopilot:  {Tool: models.ToolCopilot, SharedFile: ".github/copilot-instructions.md"},
}

// LayoutFor returns the layout of tool.
func LayoutFor(tool models.Tool) (Layout, error) {
	l, ok := layouts[tool]
	if !ok {
		return Layout{}, fmt.Errorf("no rules layout for tool %q", tool)
	}
	return l, nil
}

// Shared reports whether all tags go into one file.
func (l Layout) Shared() bool {
	return l.SharedFile != ""
}

// RelPath returns the slash-separated path of the file holding doc,
// relative to the project root.
func (l Layout) RelPath(doc Document) string {
	if l.Shared() {
		return l.SharedFile
	}
	return path.Join(l.Dir, doc.ID()+l.Ext)
}

// Slug turns free text into a lowercase, hyphen-separated file name part.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == '+':
			b.WriteString("p")
			dash = false
		case r == '#':
			b.WriteString("sharp")
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var languageGlobs = map[string][]string{
	"python":     {"**/*.py", "**/*.pyi"},
	"javascript": {"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs"},
	"typescript": {"**/*.ts", "**/*.tsx"},
	"go":         {"**/*.go"},
	"rust":       {"**/*.rs"},
	"java":       {"**/*.java"},
	"kotlin":     {"**/*.kt", "**/*.kts"},
	"csharp":     {"**/*.cs"},
	"cpp":        {"**/*.cpp", "**/*.cc", "**/*.hpp", "**/*.h"},
	"c":          {"**/*.c", "**/*.h"},
	"ruby":       {"**/*.rb"},
	"php":        {"**/*.php"},
	"swift":      {"**/*.swift"},
	"dart":       {"**/*.dart"},
	"scala":      {"**/*.scala"},
	"elixir":     {"**/*.ex", "**/*.exs"},
	"shell":      {"**/*.sh"},
	"sql":        {"**/*.sql"},
	"hcl":        {"**/*.tf", "**/*.hcl"},
	"yaml":       {"**/*.yaml", "**/*.yml"},
}

// GlobsFor returns the file patterns a language's rules apply to, or nil
// when the language is unknown.
func GlobsFor(language string) []string {
	globs := languageGlobs[strings.ToLower(strings.TrimSpace(language))]
	return append([]string(nil), globs...)
}

func validateGlobs(globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid glob pattern %q", g)
		}
	}
	return nil
}
