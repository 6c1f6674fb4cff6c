package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jakoblorz/go-airules/internal/analyzer"
	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/pipeline"
	"github.com/jakoblorz/go-airules/internal/prompt"
	"github.com/jakoblorz/go-airules/internal/rules"
	"github.com/jakoblorz/go-airules/internal/tags"
	"github.com/jakoblorz/go-airules/internal/tui"
	"github.com/spf13/cobra"
)

// GenerateCommand handles the generate command
type GenerateCommand struct {
	fs         filesystem.FileSystem
	newFactory FactoryFunc
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(fs filesystem.FileSystem, newFactory FactoryFunc) *cobra.Command {
	cmd := &GenerateCommand{
		fs:         fs,
		newFactory: newFactory,
	}

	cobraCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate rule files for the configured tools",
		Long: `Generates one set of rules per tag and writes it for every selected tool.

Tags come from --tags, from project analysis with --auto, or from the [topics]
section of .airulesrc. For each tag the research model summarizes current best
practices, the primary model writes the rules and the review model corrects
them. Research and review can be turned off.

Existing files are only overwritten after confirmation unless --yes is set.`,
		Example: `  # Generate Cursor rules for the configured topics
  airules generate

  # Detect tags from the project and write rules for two tools
  airules generate --auto --tool cursor,claude

  # Preview what would be written
  airules generate --tags "pytest, security" --dry-run`,
		RunE: cmd.Run,
	}

	addGenerateFlags(cobraCmd)

	return cobraCmd
}

func addGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("lang", "", "Language of the rules (default: settings.language, or the detected language with --auto)")
	flags.String("tool", "", "Comma-separated tools: cursor, roo, windsurf, claude, copilot")
	flags.String("tags", "", "Comma-separated tags to generate rules for")
	flags.Bool("auto", false, "Derive tags from project analysis")
	flags.Int("max-tags", 0, "Maximum number of derived tags (default: settings.max_tags)")
	flags.Bool("dry-run", false, "Show what would be written without writing")
	flags.BoolP("yes", "y", false, "Overwrite existing files without asking")
	flags.Bool("no-research", false, "Skip the research step")
	flags.Bool("no-review", false, "Skip the review step")
	flags.String("primary-model", "", "Model that writes the rules")
	flags.String("review-model", "", "Model that reviews the rules")
	flags.String("research-model", "", "Model that researches best practices")
	flags.Int("concurrency", 0, "Tags generated at the same time (default: settings.concurrency)")
}

// generateRequest is everything a run needs after flags and configuration
// have been merged.
type generateRequest struct {
	root     string
	cfg      *config.Config
	tools    []models.Tool
	options  pipeline.Options
	dryRun   bool
	yes      bool
	auto     bool
	maxTags  int
	tagsFlag bool
	langFlag bool
}

// Run executes the generate command
func (c *GenerateCommand) Run(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	root, err := projectRoot(c.fs, cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.fs, root)
	if err != nil {
		return err
	}

	req, err := c.buildRequest(cmd, root, cfg)
	if err != nil {
		return err
	}

	mapping, err := loadMapping(c.fs, cfg, root)
	if err != nil {
		return err
	}

	if req.auto {
		if err := c.applyAnalysis(req, mapping, logger); err != nil {
			return err
		}
	}

	warnTags(logger, tags.NewValidator(mapping), req.options.Tags)

	env, err := config.LoadEnvironment(c.fs, root, nil)
	if err != nil {
		return err
	}

	p, err := pipeline.New(
		c.newFactory(env),
		prompt.NewRenderer(c.fs, root),
		rules.NewWriter(c.fs, root),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	docs, err := c.generate(cmd, p, req)
	if err != nil {
		return err
	}

	changes, err := p.Plan(req.tools, docs)
	if err != nil {
		return err
	}

	writeOpts := pipeline.WriteOptions{DryRun: req.dryRun}
	if !req.yes && !req.dryRun {
		writeOpts.Confirm = tui.OverwritePrompter{
			Accessible: !tui.IsInteractive(cmd.OutOrStdout()),
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
		}.Confirm
	}

	outcomes, err := p.Write(changes, writeOpts)
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderOutcomes(outcomes, req.dryRun))
	if err != nil {
		return err
	}

	if req.dryRun {
		for _, o := range outcomes {
			if o.Status == pipeline.StatusPlanned {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n%s", tui.TitleStyle.Render(o.Change.RelPath), o.Change.Content)
			}
		}
	}

	return nil
}

// buildRequest merges flags over the configuration.
func (c *GenerateCommand) buildRequest(cmd *cobra.Command, root string, cfg *config.Config) (*generateRequest, error) {
	flags := cmd.Flags()
	s := cfg.Settings

	stringFlag := func(name, fallback string) string {
		if v, _ := flags.GetString(name); flags.Changed(name) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}
	intFlag := func(name string, fallback int) (int, error) {
		if !flags.Changed(name) {
			return fallback, nil
		}
		v, _ := flags.GetInt(name)
		if v < 1 {
			return 0, fmt.Errorf("--%s must be at least 1, got %d", name, v)
		}
		return v, nil
	}

	tools, err := models.ParseTools(stringFlag("tool", s.Tool))
	if err != nil {
		return nil, err
	}

	maxTags, err := intFlag("max-tags", s.MaxTags)
	if err != nil {
		return nil, err
	}
	concurrency, err := intFlag("concurrency", s.Concurrency)
	if err != nil {
		return nil, err
	}

	noResearch, _ := flags.GetBool("no-research")
	noReview, _ := flags.GetBool("no-review")
	dryRun, _ := flags.GetBool("dry-run")
	yes, _ := flags.GetBool("yes")
	auto, _ := flags.GetBool("auto")

	req := &generateRequest{
		root:  root,
		cfg:   cfg,
		tools: tools,
		options: pipeline.Options{
			Language:      stringFlag("lang", s.Language),
			Tags:          cfg.Tags,
			PrimaryModel:  stringFlag("primary-model", s.PrimaryModel),
			ReviewModel:   stringFlag("review-model", s.ReviewModel),
			ResearchModel: stringFlag("research-model", s.ResearchModel),
			Research:      s.Research && !noResearch,
			Review:        s.Review && !noReview,
			Concurrency:   concurrency,
		},
		dryRun:  dryRun,
		yes:     yes,
		auto:    auto,
		maxTags: maxTags,
	}
	lang, _ := flags.GetString("lang")
	req.langFlag = flags.Changed("lang") && strings.TrimSpace(lang) != ""

	if flags.Changed("tags") {
		v, _ := flags.GetString("tags")
		req.options.Tags = config.ParseTags(v)
		req.tagsFlag = true
		if len(req.options.Tags) == 0 {
			return nil, fmt.Errorf("--tags is empty")
		}
	}

	return req, nil
}

// applyAnalysis analyzes the project and uses the result for tags, language
// and prompt context. Explicit --tags and --lang win.
func (c *GenerateCommand) applyAnalysis(req *generateRequest, mapping *tags.Mapping, logger *slog.Logger) error {
	a, err := analyzer.New(c.fs, analyzer.WithLogger(logger)).Analyze(req.root)
	if err != nil {
		return fmt.Errorf("failed to analyze project: %w", err)
	}

	gen := tags.NewGenerator(mapping,
		tags.WithMaxTags(req.maxTags),
		tags.WithMinConfidence(req.cfg.Settings.MinConfidence),
	)

	req.options.ProjectType = a.ProjectType.Label()
	for _, fw := range a.Frameworks {
		req.options.Frameworks = append(req.options.Frameworks, fw.Name)
	}

	if !req.tagsFlag {
		derived, err := gen.GenerateTags(a)
		if err != nil {
			return err
		}
		if len(derived) == 0 {
			return fmt.Errorf("no tags could be derived from %s; pass --tags", req.root)
		}
		req.options.Tags = derived
	}

	reasons, err := gen.Explanations(req.options.Tags, a)
	if err != nil {
		return err
	}
	req.options.Reasons = reasons

	if primary := a.Languages.Primary(); primary != "" && !req.langFlag {
		req.options.Language = tags.LanguageTag(primary)
	}

	logger.Info("analyzed project",
		"type", a.ProjectType,
		"language", req.options.Language,
		"frameworks", len(a.Frameworks),
		"tags", strings.Join(req.options.Tags, ","),
	)
	return nil
}

func (c *GenerateCommand) generate(cmd *cobra.Command, p *pipeline.Pipeline, req *generateRequest) ([]rules.Document, error) {
	out := cmd.OutOrStdout()
	tagList := pipeline.UniqueTags(req.options.Tags)

	title := fmt.Sprintf("Generating %s rules", req.options.Language)
	if !tui.IsInteractive(out) {
		fmt.Fprintf(out, "%s for %s\n", title, strings.Join(tagList, ", "))
		return p.Generate(cmd.Context(), req.options)
	}

	var docs []rules.Document
	err := tui.RunProgress(cmd.Context(), out, title, tagList, func(ctx context.Context, observe pipeline.Observer) error {
		opts := req.options
		opts.Observe = observe

		var err error
		docs, err = p.Generate(ctx, opts)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("generation canceled")
	}
	return docs, err
}

func warnTags(logger *slog.Logger, v *tags.Validator, list []string) {
	report := v.Validate(list)
	for _, t := range report.Tags {
		if t.Known && t.WellFormed {
			continue
		}
		logger.Warn("tag is not in the known vocabulary", "tag", t.Tag, "suggestion", t.Suggestion)
	}
}
