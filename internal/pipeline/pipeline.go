package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jakoblorz/go-airules/internal/llm"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/prompt"
	"github.com/jakoblorz/go-airules/internal/rules"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoTags is returned when a run has nothing to generate.
	ErrNoTags = errors.New("no tags to generate")

	// ErrNoLanguage is returned when the target language is empty.
	ErrNoLanguage = errors.New("no language set")
)

// Options selects what one run generates and with which models.
type Options struct {
	Language    string
	Tags        []string
	ProjectType string
	Frameworks  []string

	// Reasons maps a tag to the sentence explaining why it was chosen.
	Reasons map[string]string

	PrimaryModel  string
	ReviewModel   string
	ResearchModel string
	Research      bool
	Review        bool

	// Concurrency is the number of tags generated at once. Values below 1
	// mean one at a time.
	Concurrency int

	// Observe, when set, receives progress events from concurrent workers.
	Observe Observer
}

// Event reports progress of one tag. Stage is empty once the tag is done.
type Event struct {
	Tag   string
	Stage prompt.Kind
	Done  bool
}

// Observer receives progress events. It must be safe for concurrent use.
type Observer func(Event)

func (o Options) notify(e Event) {
	if o.Observe != nil {
		o.Observe(e)
	}
}

// Pipeline researches, generates and reviews rules per tag and writes them
// for each tool.
type Pipeline struct {
	factory  llm.Factory
	renderer *prompt.Renderer
	writer   *rules.Writer
	logger   *slog.Logger
	runID    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Every record carries the run id.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline.
func New(factory llm.Factory, renderer *prompt.Renderer, writer *rules.Writer, opts ...Option) (*Pipeline, error) {
	runID, err := NewRunID()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		factory:  factory,
		renderer: renderer,
		writer:   writer,
		logger:   slog.New(slog.DiscardHandler),
		runID:    runID,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("run", runID)

	return p, nil
}

// RunID returns the id attached to this pipeline's log records.
func (p *Pipeline) RunID() string {
	return p.runID
}

type clients struct {
	primary  llm.Client
	review   llm.Client
	research llm.Client
}

// Generate produces one document per distinct tag, in tag order. Tags are
// processed concurrently up to opts.Concurrency; the first failure cancels
// the rest.
func (p *Pipeline) Generate(ctx context.Context, opts Options) ([]rules.Document, error) {
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		return nil, ErrNoLanguage
	}
	tags := UniqueTags(opts.Tags)
	if len(tags) == 0 {
		return nil, ErrNoTags
	}

	cl, err := p.clients(ctx, opts)
	if err != nil {
		return nil, err
	}

	p.logger.Info("generating rules", "language", language, "tags", len(tags), "concurrency", max(opts.Concurrency, 1))

	docs := make([]rules.Document, len(tags))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for i, tag := range tags {
		g.Go(func() error {
			content, err := p.generateTag(gctx, cl, opts, language, tag)
			if err != nil {
				return fmt.Errorf("tag %q: %w", tag, err)
			}

			docs[i] = rules.Document{Language: language, Tag: tag, Content: content}
			opts.notify(Event{Tag: tag, Done: true})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *Pipeline) clients(ctx context.Context, opts Options) (clients, error) {
	var (
		cl  clients
		err error
	)

	if cl.primary, err = p.factory.Client(ctx, opts.PrimaryModel); err != nil {
		return clients{}, fmt.Errorf("primary model: %w", err)
	}
	if opts.Review {
		if cl.review, err = p.factory.Client(ctx, opts.ReviewModel); err != nil {
			return clients{}, fmt.Errorf("review model: %w", err)
		}
	}
	if opts.Research {
		if cl.research, err = p.factory.Client(ctx, opts.ResearchModel); err != nil {
			return clients{}, fmt.Errorf("research model: %w", err)
		}
	}
	return cl, nil
}

func (p *Pipeline) generateTag(ctx context.Context, cl clients, opts Options, language, tag string) (string, error) {
	data := prompt.Data{
		Language:    language,
		Tag:         tag,
		ProjectType: opts.ProjectType,
		Frameworks:  opts.Frameworks,
		Reason:      opts.Reasons[tag],
	}

	if cl.research != nil {
		research, err := p.complete(ctx, cl.research, prompt.KindResearch, opts, data)
		if err != nil {
			return "", err
		}
		data.Research = research
	}

	draft, err := p.complete(ctx, cl.primary, prompt.KindGenerate, opts, data)
	if err != nil {
		return "", err
	}

	if cl.review == nil {
		return rules.CleanContent(draft), nil
	}

	data.Draft = rules.CleanContent(draft)
	reviewed, err := p.complete(ctx, cl.review, prompt.KindReview, opts, data)
	if err != nil {
		return "", err
	}
	return rules.CleanContent(reviewed), nil
}

func (p *Pipeline) complete(ctx context.Context, client llm.Client, kind prompt.Kind, opts Options, data prompt.Data) (string, error) {
	tag := data.Tag
	opts.notify(Event{Tag: tag, Stage: kind})

	pr, err := p.renderer.Render(kind, data)
	if err != nil {
		return "", err
	}

	p.logger.Debug("requesting completion", "stage", kind, "tag", tag, "model", client.Name())

	resp, err := client.Complete(ctx, pr.Request())
	if err != nil {
		return "", fmt.Errorf("%s with %s: %w", kind, client.Name(), err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("%s with %s: %w", kind, client.Name(), llm.ErrEmptyResponse)
	}

	p.logger.Debug("completion finished",
		"stage", kind,
		"tag", tag,
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return content, nil
}

// Plan renders docs for every tool without writing anything.
func (p *Pipeline) Plan(tools []models.Tool, docs []rules.Document) ([]rules.Change, error) {
	var changes []rules.Change
	for _, tool := range tools {
		planned, err := p.writer.Plan(tool, docs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tool, err)
		}
		changes = append(changes, planned...)
	}
	return changes, nil
}

// UniqueTags trims tags and drops empty and case-insensitive duplicates,
// keeping the first spelling.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		k := strings.ToLower(tag)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tag)
	}
	return out
}
