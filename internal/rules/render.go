package rules

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/jakoblorz/go-airules/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Document is the generated rules content for one (language, tag) pair.
type Document struct {
	Language string
	Tag      string
	Content  string
}

// ID identifies the document in file names and section markers.
func (d Document) ID() string {
	return Slug(d.Language) + "-" + Slug(d.Tag)
}

// Title is the heading written above the rules, e.g. "Python: Coding Style".
func (d Document) Title() string {
	return languageName(d.Language) + ": " + titleCase(d.Tag)
}

// Description is the one-line summary used in frontmatter.
func (d Document) Description() string {
	return fmt.Sprintf("%s rules for %s", languageName(d.Language), strings.TrimSpace(d.Tag))
}

const sharedHeader = "# AI Coding Rules\n\nGenerated by airules. Each section is replaced when its topic is regenerated.\n"

func beginMarker(id string) string { return "<!-- airules:begin " + id + " -->" }
func endMarker(id string) string   { return "<!-- airules:end " + id + " -->" }

// RenderFile renders a per-tag rules file for tool. Frontmatter keys found in
// existing that the tool does not manage are kept, as is alwaysApply, so
// manual edits survive regeneration.
func RenderFile(tool models.Tool, doc Document, existing []byte) ([]byte, error) {
	meta, err := toolFrontmatter(tool, doc)
	if err != nil {
		return nil, err
	}

	if meta != nil && len(existing) > 0 {
		var previous map[string]any
		if _, err := frontmatter.Parse(bytes.NewReader(existing), &previous); err == nil {
			for k, v := range previous {
				if _, managed := meta[k]; !managed || k == "alwaysApply" {
					meta[k] = v
				}
			}
		}
	}

	var buf bytes.Buffer
	if meta != nil {
		out, err := yaml.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(out)
		buf.WriteString("---\n\n")
	}

	buf.WriteString("# ")
	buf.WriteString(doc.Title())
	buf.WriteString("\n\n")
	buf.WriteString(CleanContent(doc.Content))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

func toolFrontmatter(tool models.Tool, doc Document) (map[string]any, error) {
	globs := GlobsFor(doc.Language)
	if err := validateGlobs(globs); err != nil {
		return nil, err
	}

	switch tool {
	case models.ToolCursor:
		return map[string]any{
			"description": doc.Description(),
			"globs":       strings.Join(globs, ","),
			"alwaysApply": false,
		}, nil
	case models.ToolWindsurf:
		meta := map[string]any{
			"description": doc.Description(),
			"trigger":     "glob",
			"globs":       strings.Join(globs, ","),
		}
		if len(globs) == 0 {
			meta["trigger"] = "model_decision"
			delete(meta, "globs")
		}
		return meta, nil
	case models.ToolRoo:
		return nil, nil
	default:
		return nil, fmt.Errorf("tool %q does not use per-tag files", tool)
	}
}

// RenderSection renders doc as a marked section of a shared rules file.
// Headings inside the content are demoted one level below the section title.
func RenderSection(doc Document) string {
	var b strings.Builder
	b.WriteString(beginMarker(doc.ID()))
	b.WriteString("\n## ")
	b.WriteString(doc.Title())
	b.WriteString("\n\n")
	b.WriteString(demoteHeadings(CleanContent(doc.Content)))
	b.WriteString("\n")
	b.WriteString(endMarker(doc.ID()))
	return b.String()
}

// MergeSection replaces the section with id in existing, or appends it when
// absent. Text outside airules markers is never touched.
func MergeSection(existing, id, section string) string {
	if strings.TrimSpace(existing) == "" {
		return sharedHeader + "\n" + section + "\n"
	}

	begin, end := beginMarker(id), endMarker(id)
	start := strings.Index(existing, begin)
	if start >= 0 {
		if stop := strings.Index(existing[start:], end); stop >= 0 {
			stop += start + len(end)
			return existing[:start] + section + existing[stop:]
		}
	}

	return strings.TrimRight(existing, "\n") + "\n\n" + section + "\n"
}

// Sections lists the ids of the airules sections in content, in order.
func Sections(content string) []string {
	const prefix = "<!-- airules:begin "
	var ids []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) && strings.HasSuffix(line, " -->") {
			ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(line, prefix), " -->"))
		}
	}
	return ids
}

// CleanContent trims model output: a fence wrapping the whole document and a
// leading top-level title are removed.
func CleanContent(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) > 6 {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			info := strings.TrimSpace(s[3:nl])
			inner := s[nl+1 : len(s)-3]
			if markdownFence(info) && strings.Count(inner, "```")%2 == 0 {
				s = strings.TrimSpace(inner)
			}
		}
	}

	if strings.HasPrefix(s, "# ") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = strings.TrimSpace(s[nl+1:])
		} else {
			s = ""
		}
	}

	return s
}

func markdownFence(info string) bool {
	switch strings.ToLower(info) {
	case "", "markdown", "md", "mdc":
		return true
	default:
		return false
	}
}

func demoteHeadings(s string) string {
	lines := strings.Split(s, "\n")
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(line, "#") {
			continue
		}
		level := len(line) - len(strings.TrimLeft(line, "#"))
		if level < 6 && strings.HasPrefix(line[level:], " ") {
			lines[i] = "#" + line
		}
	}
	return strings.Join(lines, "\n")
}

var languageNames = map[string]string{
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"csharp":     "C#",
	"cpp":        "C++",
	"php":        "PHP",
	"sql":        "SQL",
	"html":       "HTML",
	"css":        "CSS",
	"hcl":        "HCL",
	"yaml":       "YAML",
}

var acronyms = map[string]string{
	"api": "API", "ci": "CI", "cd": "CD", "cli": "CLI", "css": "CSS",
	"e2e": "E2E", "html": "HTML", "jwt": "JWT", "orm": "ORM", "rest": "REST",
	"sql": "SQL", "ui": "UI", "aws": "AWS", "gcp": "GCP", "jsx": "JSX",
}

func languageName(lang string) string {
	key := strings.ToLower(strings.TrimSpace(lang))
	if name, ok := languageNames[key]; ok {
		return name
	}
	return cases.Title(language.English).String(key)
}

func titleCase(s string) string {
	caser := cases.Title(language.English)
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	for i, w := range words {
		if a, ok := acronyms[w]; ok {
			words[i] = a
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
