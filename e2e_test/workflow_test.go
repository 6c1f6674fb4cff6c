package e2e_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jakoblorz/go-airules/internal/analyzer"
	"github.com/jakoblorz/go-airules/internal/llm"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/pipeline"
	"github.com/jakoblorz/go-airules/internal/prompt"
	"github.com/jakoblorz/go-airules/internal/rules"
	"github.com/jakoblorz/go-airules/internal/tags"
	"github.com/stretchr/testify/require"
)

func TestFullWorkflow(t *testing.T) {
	// Setup mock project
	fs := analyzer.NewProjectBuilder("/projects/shop").
		AddRequirements("django==5.0.1", "pytest==8.0.0", "pytest-cov").
		AddFile("CLAUDE.md", "# Team notes\n\nRun make check before pushing.\n").
		AddFiles(
			"manage.py",
			"shop/models.py",
			"shop/views.py",
			"tests/test_views.py",
			"Dockerfile",
			".github/workflows/ci.yml",
		).
		Build()
	root := "/projects/shop"

	// Setup mock models
	factory := llm.NewMockFactory()
	factory.Get("sonar-pro").Respond = func(req llm.Request) (string, error) {
		return "current practice notes", nil
	}
	factory.Get("gpt-4-turbo").Respond = func(req llm.Request) (string, error) {
		return "```markdown\n# Rules\n\n## Structure\n\n- draft\n```", nil
	}
	factory.Get("claude-3-opus-20240229").Respond = func(req llm.Request) (string, error) {
		return "## Structure\n\n- keep views thin\n- test every view", nil
	}

	// Test: Project analysis
	a, err := analyzer.New(fs).Analyze(root)
	require.NoError(t, err)
	require.Equal(t, "python", a.Languages.Primary())

	_, ok := a.Framework("django")
	require.True(t, ok)
	require.Contains(t, a.TestingInfo.TestFrameworks, "pytest")

	// Test: Tag derivation
	gen := tags.NewGenerator(tags.DefaultMapping(), tags.WithMaxTags(4))
	derived, err := gen.GenerateTags(a)
	require.NoError(t, err)
	require.Len(t, derived, 4)
	require.Contains(t, derived, "django")

	reasons, err := gen.Explanations(derived, a)
	require.NoError(t, err)
	require.NotEmpty(t, reasons["django"])

	// Test: Derived tags are known and well formed
	report := tags.NewValidator(tags.DefaultMapping()).Validate(derived)
	require.True(t, report.AllWellFormed())
	require.Empty(t, report.Unknown())

	// Test: Generation
	p, err := pipeline.New(factory, prompt.NewRenderer(fs, root), rules.NewWriter(fs, root))
	require.NoError(t, err)

	opts := pipeline.Options{
		Language:      tags.LanguageTag(a.Languages.Primary()),
		Tags:          derived,
		ProjectType:   a.ProjectType.Label(),
		Reasons:       reasons,
		PrimaryModel:  "gpt-4-turbo",
		ReviewModel:   "claude-3-opus-20240229",
		ResearchModel: "sonar-pro",
		Research:      true,
		Review:        true,
		Concurrency:   2,
	}

	docs, err := p.Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, docs, len(derived))
	for i, doc := range docs {
		require.Equal(t, "python", doc.Language)
		require.Equal(t, derived[i], doc.Tag)
		require.Equal(t, "## Structure\n\n- keep views thin\n- test every view", doc.Content)
	}
	require.Len(t, factory.Get("sonar-pro").Requests(), len(derived))

	// Test: Plan and write for a per-tag and a shared tool
	changes, err := p.Plan([]models.Tool{models.ToolCursor, models.ToolClaude}, docs)
	require.NoError(t, err)
	require.Len(t, changes, len(derived)+1)

	outcomes, err := p.Write(changes, pipeline.WriteOptions{})
	require.NoError(t, err)
	require.Equal(t, len(derived)+1, pipeline.Summary(outcomes)[pipeline.StatusWritten])

	djangoRules, err := fs.ReadFile(root + "/.cursor/rules/python-django.mdc")
	require.NoError(t, err)
	require.Contains(t, string(djangoRules), "globs: '**/*.py,**/*.pyi'")
	require.Contains(t, string(djangoRules), "# Python: Django")

	claude, err := fs.ReadFile(root + "/CLAUDE.md")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(claude), "# Team notes"))
	require.Len(t, rules.Sections(string(claude)), len(derived))
	require.Contains(t, string(claude), "### Structure")

	// Test: A second run with the same answers changes nothing
	docs, err = p.Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, factory.Get("gpt-4-turbo").Requests(), 2*len(derived))

	changes, err = p.Plan([]models.Tool{models.ToolCursor, models.ToolClaude}, docs)
	require.NoError(t, err)
	for _, c := range changes {
		require.Equal(t, rules.ActionUnchanged, c.Action, c.RelPath)
	}

	outcomes, err = p.Write(changes, pipeline.WriteOptions{
		Confirm: func(rules.Change) (bool, error) {
			t.Fatal("unchanged files must not ask for confirmation")
			return false, nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, len(derived)+1, pipeline.Summary(outcomes)[pipeline.StatusUnchanged])
}

func TestRegenerateSingleTopicKeepsOtherSections(t *testing.T) {
	fs := analyzer.NewProjectBuilder("/repo").Build()
	factory := llm.NewMockFactory()

	content := "- first version"
	factory.Get("gpt-4-turbo").Respond = func(req llm.Request) (string, error) {
		return content, nil
	}

	p, err := pipeline.New(factory, prompt.NewRenderer(fs, "/repo"), rules.NewWriter(fs, "/repo"))
	require.NoError(t, err)

	opts := pipeline.Options{
		Language:     "go",
		Tags:         []string{"error handling", "testing"},
		PrimaryModel: "gpt-4-turbo",
		Concurrency:  1,
	}

	// Test: Initial generation
	docs, err := p.Generate(context.Background(), opts)
	require.NoError(t, err)
	changes, err := p.Plan([]models.Tool{models.ToolCopilot}, docs)
	require.NoError(t, err)
	_, err = p.Write(changes, pipeline.WriteOptions{})
	require.NoError(t, err)

	// Test: Regenerate one topic with a different primary model
	content = "- second version"
	opts.Tags = []string{"testing"}
	opts.PrimaryModel = "gpt-4o"
	factory.Get("gpt-4o").Respond = factory.Get("gpt-4-turbo").Respond

	docs, err = p.Generate(context.Background(), opts)
	require.NoError(t, err)
	changes, err = p.Plan([]models.Tool{models.ToolCopilot}, docs)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, rules.ActionUpdate, changes[0].Action)

	// Test: Declining the overwrite keeps the file
	outcomes, err := p.Write(changes, pipeline.WriteOptions{
		Confirm: func(rules.Change) (bool, error) { return false, nil },
	})
	require.NoError(t, err)
	require.Equal(t, pipeline.StatusSkipped, outcomes[0].Status)

	data, err := fs.ReadFile("/repo/.github/copilot-instructions.md")
	require.NoError(t, err)
	require.NotContains(t, string(data), "second version")

	// Test: Accepting replaces only the regenerated section
	_, err = p.Write(changes, pipeline.WriteOptions{
		Confirm: func(rules.Change) (bool, error) { return true, nil },
	})
	require.NoError(t, err)

	data, err = fs.ReadFile("/repo/.github/copilot-instructions.md")
	require.NoError(t, err)
	require.Equal(t, []string{"go-error-handling", "go-testing"}, rules.Sections(string(data)))
	require.Contains(t, string(data), "- first version")
	require.Contains(t, string(data), "- second version")
	require.Equal(t, 1, strings.Count(string(data), "- second version"))
}
