package prompt

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/llm"
)

// Kind selects one of the three prompts sent per tag.
type Kind string

const (
	KindResearch Kind = "research"
	KindGenerate Kind = "generate"
	KindReview   Kind = "review"
)

// AllKinds lists the prompt kinds in pipeline order.
var AllKinds = []Kind{KindResearch, KindGenerate, KindReview}

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindResearch, KindGenerate, KindReview:
		return true
	default:
		return false
	}
}

// OverrideDir holds project-specific prompt templates named <kind>.tmpl.
const OverrideDir = ".airules/prompts"

// Data is the template input. Research and Draft are only set for the
// stages that consume them.
type Data struct {
	Language    string
	Tag         string
	ProjectType string
	Frameworks  []string
	Reason      string
	Research    string
	Draft       string
}

const researchSystem = "You are an AI assistant that provides concise, expert-level summaries for software development best practices."

const generateSystem = "You are an expert software engineer who writes clear, actionable rules files for AI coding assistants."

const reviewSystem = "You are a meticulous reviewer of rules files for AI coding assistants. You fix inaccuracies without changing the document's structure."

const researchTemplate = `Provide a detailed, up-to-date summary of best practices for '{{ .Tag }}' in a '{{ .Language }}' project. Focus on actionable rules and configurations.
{{- with .ProjectType }}
The project is a {{ . }} project.
{{- end }}
{{- if .Frameworks }}
It uses {{ join ", " .Frameworks }}.
{{- end }}`

const generateTemplate = `Write a rules file for AI coding assistants covering '{{ .Tag }}' in a {{ .Language | title }} project.
{{- with .ProjectType }}
The project is a {{ . }} project.
{{- end }}
{{- if .Frameworks }}
Detected frameworks: {{ join ", " .Frameworks }}.
{{- end }}
{{- with .Reason }}
Why this topic applies: {{ . }}.
{{- end }}
{{- with .Research | trim }}

Base the rules on the following research:

{{ . }}
{{- end }}

Requirements:
- Output Markdown only, without a top-level title and without wrapping the document in a code fence.
- Group short, imperative rules under "##" headings.
- Prefer concrete, checkable rules over general advice.
- Include small code examples only where they clarify a rule.`

const reviewTemplate = `Review the following rules for '{{ .Tag }}' in a {{ .Language | title }} project.
Correct inaccurate or outdated advice, remove duplicates and keep the Markdown structure.
Return only the improved rules.

{{ .Draft | trim }}`

// Prompt is a rendered system and user message pair.
type Prompt struct {
	System string
	User   string
}

// Request converts the prompt into an LLM request.
func (p Prompt) Request() llm.Request {
	return llm.Request{System: p.System, Prompt: p.User}
}

// Renderer renders prompts, preferring templates found in OverrideDir at or
// above the project root over the built-in ones.
type Renderer struct {
	fs   filesystem.FileSystem
	root string

	mu    sync.Mutex
	cache map[Kind]*template.Template
}

// NewRenderer creates a Renderer for the project at root.
func NewRenderer(fs filesystem.FileSystem, root string) *Renderer {
	return &Renderer{
		fs:    fs,
		root:  root,
		cache: make(map[Kind]*template.Template),
	}
}

// Render executes the template for kind with data.
func (r *Renderer) Render(kind Kind, data Data) (Prompt, error) {
	tmpl, err := r.template(kind)
	if err != nil {
		return Prompt{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to execute %s prompt: %w", kind, err)
	}

	return Prompt{
		System: systemPrompt(kind),
		User:   strings.TrimSpace(buf.String()),
	}, nil
}

// Source returns the override path used for kind, or "" for the built-in.
func (r *Renderer) Source(kind Kind) string {
	path, ok := filesystem.FindUp(r.fs, r.root, filepath.Join(OverrideDir, string(kind)+".tmpl"))
	if !ok {
		return ""
	}
	return path
}

func (r *Renderer) template(kind Kind) (*template.Template, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown prompt kind: %s", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.cache[kind]; ok {
		return tmpl, nil
	}

	text := builtinTemplate(kind)
	if path := r.Source(kind); path != "" {
		data, err := r.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template: %w", err)
		}
		text = string(data)
	}

	tmpl, err := template.New(string(kind)).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s prompt template: %w", kind, err)
	}

	r.cache[kind] = tmpl
	return tmpl, nil
}

func builtinTemplate(kind Kind) string {
	switch kind {
	case KindResearch:
		return researchTemplate
	case KindGenerate:
		return generateTemplate
	default:
		return reviewTemplate
	}
}

func systemPrompt(kind Kind) string {
	switch kind {
	case KindResearch:
		return researchSystem
	case KindGenerate:
		return generateSystem
	default:
		return reviewSystem
	}
}
