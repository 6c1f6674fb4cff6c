package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/llm"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/prompt"
	"github.com/jakoblorz/go-airules/internal/rules"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, *filesystem.MockFileSystem, *llm.MockFactory) {
	t.Helper()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/repo")
	factory := llm.NewMockFactory()

	p, err := New(factory, prompt.NewRenderer(fs, "/repo"), rules.NewWriter(fs, "/repo"))
	require.NoError(t, err)
	return p, fs, factory
}

func baseOptions() Options {
	return Options{
		Language:      "python",
		Tags:          []string{"pytest", "security"},
		PrimaryModel:  "gpt-4-turbo",
		ReviewModel:   "claude-3-opus-20240229",
		ResearchModel: "sonar-pro",
		Research:      true,
		Review:        true,
		Concurrency:   2,
	}
}

func TestNewRunID(t *testing.T) {
	seen := make(map[string]struct{})
	for range 10 {
		id, err := NewRunID()
		require.NoError(t, err)

		parts := strings.Split(id, "_")
		require.Len(t, parts, 3, id)
		require.Contains(t, runAdjectives, parts[0])
		require.Contains(t, runNouns, parts[1])
		require.Len(t, parts[2], 8)

		_, dup := seen[id]
		require.False(t, dup, "duplicate run id %s", id)
		seen[id] = struct{}{}
	}
}

func TestUniqueTags(t *testing.T) {
	require.Equal(t, []string{"Pytest", "coding style"}, UniqueTags([]string{" Pytest", "", "pytest ", "coding style", "  "}))
	require.Empty(t, UniqueTags(nil))
}

func TestGenerate_AllStages(t *testing.T) {
	p, _, factory := newTestPipeline(t)
	factory.Get("sonar-pro").Respond = func(req llm.Request) (string, error) {
		return "research notes", nil
	}
	factory.Get("gpt-4-turbo").Respond = func(req llm.Request) (string, error) {
		return "```markdown\n# Draft\n\n## Rules\n- draft rule\n```", nil
	}
	factory.Get("claude-3-opus-20240229").Respond = func(req llm.Request) (string, error) {
		return "## Rules\n- reviewed rule", nil
	}

	opts := baseOptions()
	opts.Reasons = map[string]string{"pytest": "derived from detected framework 'pytest'"}

	docs, err := p.Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, rules.Document{Language: "python", Tag: "pytest", Content: "## Rules\n- reviewed rule"}, docs[0])
	require.Equal(t, "security", docs[1].Tag)

	gen := factory.Get("gpt-4-turbo").Requests()
	require.Len(t, gen, 2)
	for _, req := range gen {
		require.Contains(t, req.Prompt, "research notes")
	}

	var pytestPrompt string
	for _, req := range gen {
		if strings.Contains(req.Prompt, "'pytest'") {
			pytestPrompt = req.Prompt
		}
	}
	require.Contains(t, pytestPrompt, "Why this topic applies: derived from detected framework 'pytest'.")

	review := factory.Get("claude-3-opus-20240229").Requests()
	require.Len(t, review, 2)
	require.Contains(t, review[0].Prompt, "## Rules\n- draft rule")
	require.NotContains(t, review[0].Prompt, "```")
}

func TestGenerate_SkipsDisabledStages(t *testing.T) {
	p, _, factory := newTestPipeline(t)

	opts := baseOptions()
	opts.Research = false
	opts.Review = false
	opts.Tags = []string{"pytest"}

	docs, err := p.Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.True(t, strings.HasPrefix(docs[0].Content, "[gpt-4-turbo] Write a rules file"))

	require.Empty(t, factory.Get("sonar-pro").Requests())
	require.Empty(t, factory.Get("claude-3-opus-20240229").Requests())
}

func TestGenerate_DuplicateTagsGenerateOnce(t *testing.T) {
	p, _, factory := newTestPipeline(t)

	opts := baseOptions()
	opts.Tags = []string{"PYTEST", "logging", " pytest "}
	docs, err := p.Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "PYTEST", docs[0].Tag)
	require.Equal(t, "logging", docs[1].Tag)

	require.Len(t, factory.Get("gpt-4-turbo").Requests(), 2)
}

func TestGenerate_Errors(t *testing.T) {
	p, _, factory := newTestPipeline(t)

	opts := baseOptions()
	opts.Tags = []string{" ", ""}
	_, err := p.Generate(context.Background(), opts)
	require.ErrorIs(t, err, ErrNoTags)

	opts = baseOptions()
	opts.Language = ""
	_, err = p.Generate(context.Background(), opts)
	require.ErrorIs(t, err, ErrNoLanguage)

	boom := errors.New("rate limited")
	factory.Get("claude-3-opus-20240229").Error = boom
	_, err = p.Generate(context.Background(), baseOptions())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "review with claude-3-opus-20240229")

	factory.ClientError = llm.ErrMissingAPIKey
	_, err = p.Generate(context.Background(), baseOptions())
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	require.Contains(t, err.Error(), "primary model")
}

func TestGenerate_EmptyResponse(t *testing.T) {
	p, _, factory := newTestPipeline(t)
	factory.Get("gpt-4-turbo").Respond = func(req llm.Request) (string, error) {
		return "   ", nil
	}

	opts := baseOptions()
	opts.Research = false
	_, err := p.Generate(context.Background(), opts)
	require.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerate_RespectsConcurrencyLimit(t *testing.T) {
	p, _, factory := newTestPipeline(t)

	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	factory.Get("gpt-4-turbo").Respond = func(req llm.Request) (string, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		return "- rule", nil
	}

	opts := baseOptions()
	opts.Research = false
	opts.Review = false
	opts.Concurrency = 2
	opts.Tags = []string{"a", "b", "c", "d", "e"}

	done := make(chan error, 1)
	go func() {
		_, err := p.Generate(context.Background(), opts)
		done <- err
	}()
	for range opts.Tags {
		release <- struct{}{}
	}

	require.NoError(t, <-done)
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestGenerate_Canceled(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, baseOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlanAndWrite(t *testing.T) {
	p, fs, _ := newTestPipeline(t)
	fs.AddFile("/repo/CLAUDE.md", []byte("# Notes\n"))

	docs := []rules.Document{{Language: "go", Tag: "testing", Content: "- Use table tests"}}
	tools := []models.Tool{models.ToolCursor, models.ToolClaude}

	changes, err := p.Plan(tools, docs)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	outcomes, err := p.Write(changes, WriteOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, map[Status]int{StatusPlanned: 2}, Summary(outcomes))
	require.False(t, fs.Exists("/repo/.cursor/rules/go-testing.mdc"))

	var asked []string
	outcomes, err = p.Write(changes, WriteOptions{Confirm: func(c rules.Change) (bool, error) {
		asked = append(asked, c.RelPath)
		return false, nil
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"CLAUDE.md"}, asked)
	require.Equal(t, StatusWritten, outcomes[0].Status)
	require.Equal(t, StatusSkipped, outcomes[1].Status)
	require.True(t, fs.Exists("/repo/.cursor/rules/go-testing.mdc"))

	claude, err := fs.ReadFile("/repo/CLAUDE.md")
	require.NoError(t, err)
	require.Equal(t, "# Notes\n", string(claude))

	changes, err = p.Plan(tools, docs)
	require.NoError(t, err)
	outcomes, err = p.Write(changes, WriteOptions{})
	require.NoError(t, err)
	require.Equal(t, StatusUnchanged, outcomes[0].Status)
	require.Equal(t, StatusWritten, outcomes[1].Status)
}

func TestWrite_ConfirmError(t *testing.T) {
	p, fs, _ := newTestPipeline(t)
	fs.AddFile("/repo/CLAUDE.md", []byte("# Notes\n"))

	changes, err := p.Plan([]models.Tool{models.ToolClaude}, []rules.Document{{Language: "go", Tag: "gin", Content: "- x"}})
	require.NoError(t, err)

	_, err = p.Write(changes, WriteOptions{Confirm: func(rules.Change) (bool, error) {
		return false, errors.New("user aborted")
	}})
	require.ErrorContains(t, err, "user aborted")
}

func TestGenerate_ReportsProgress(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	var (
		mu     sync.Mutex
		events []Event
	)
	opts := baseOptions()
	opts.Tags = []string{"pytest"}
	opts.Concurrency = 1
	opts.Observe = func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	_, err := p.Generate(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, []Event{
		{Tag: "pytest", Stage: prompt.KindResearch},
		{Tag: "pytest", Stage: prompt.KindGenerate},
		{Tag: "pytest", Stage: prompt.KindReview},
		{Tag: "pytest", Done: true},
	}, events)
}
