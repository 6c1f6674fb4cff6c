package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/models"
)

// ConfigForm holds the editable values of a .airulesrc as the form edits
// them. Numbers are kept as text until Apply.
type ConfigForm struct {
	base *config.Config

	Language      string
	Tools         []string
	PrimaryModel  string
	ReviewModel   string
	ResearchModel string
	Research      bool
	Review        bool
	MaxTags       string
	MinConfidence string
	Concurrency   string
	MappingFile   string
	Tags          string
	Save          bool
}

// NewConfigForm prefills a form from cfg.
func NewConfigForm(cfg *config.Config) *ConfigForm {
	s := cfg.Settings

	var tools []string
	if parsed, err := cfg.Tools(); err == nil {
		for _, t := range parsed {
			tools = append(tools, string(t))
		}
	}

	return &ConfigForm{
		base:          cfg,
		Language:      s.Language,
		Tools:         tools,
		PrimaryModel:  s.PrimaryModel,
		ReviewModel:   s.ReviewModel,
		ResearchModel: s.ResearchModel,
		Research:      s.Research,
		Review:        s.Review,
		MaxTags:       strconv.Itoa(s.MaxTags),
		MinConfidence: strconv.FormatFloat(s.MinConfidence, 'g', -1, 64),
		Concurrency:   strconv.Itoa(s.Concurrency),
		MappingFile:   s.MappingFile,
		Tags:          strings.Join(cfg.Tags, ", "),
		Save:          true,
	}
}

// Apply converts the edited values into a validated configuration. The
// original configuration is left untouched.
func (f *ConfigForm) Apply() (*config.Config, error) {
	maxTags, err := parsePositive(config.KeyMaxTags, f.MaxTags)
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositive(config.KeyConcurrency, f.Concurrency)
	if err != nil {
		return nil, err
	}
	minConfidence, err := strconv.ParseFloat(strings.TrimSpace(f.MinConfidence), 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", config.KeyMinConfidence, f.MinConfidence)
	}

	cfg := &config.Config{
		Settings: config.Settings{
			Language:      strings.TrimSpace(f.Language),
			Tool:          strings.Join(f.Tools, ","),
			PrimaryModel:  strings.TrimSpace(f.PrimaryModel),
			ReviewModel:   strings.TrimSpace(f.ReviewModel),
			ResearchModel: strings.TrimSpace(f.ResearchModel),
			Research:      f.Research,
			Review:        f.Review,
			MaxTags:       maxTags,
			MinConfidence: minConfidence,
			Concurrency:   concurrency,
			MappingFile:   strings.TrimSpace(f.MappingFile),
		},
		Tags: config.ParseTags(f.Tags),
	}
	if f.base != nil {
		cfg.Path = f.base.Path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePositive(key, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a whole number of at least 1, got %q", key, s)
	}
	return n, nil
}

func validatePositive(s string) error {
	_, err := parsePositive("value", s)
	return err
}

func validateConfidence(s string) error {
	c, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || c < 0 || c > 1 {
		return fmt.Errorf("enter a number between 0 and 1")
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

// Form builds the editor: settings, models, generation limits, topics and a
// final save confirmation.
func (f *ConfigForm) Form() *huh.Form {
	toolOptions := make([]huh.Option[string], 0, len(models.AllTools))
	for _, t := range models.AllTools {
		toolOptions = append(toolOptions, huh.NewOption(t.DisplayName(), string(t)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Language").
				Description("Primary language the rules are written for.").
				Value(&f.Language).
				Validate(validateRequired),
			huh.NewMultiSelect[string]().
				Title("Tools").
				Description("Assistants to write rule files for.").
				Options(toolOptions...).
				Value(&f.Tools).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("select at least one tool")
					}
					return nil
				}),
		).
			Title("Settings"),
		huh.NewGroup(
			huh.NewInput().
				Title("Primary model").
				Description("Writes the rules, e.g. gpt-4-turbo or anthropic:claude-3-5-sonnet-latest.").
				Value(&f.PrimaryModel).
				Validate(validateRequired),
			huh.NewConfirm().
				Title("Research").
				Description("Summarize current best practices before writing.").
				Value(&f.Research),
			huh.NewInput().
				Title("Research model").
				Value(&f.ResearchModel),
			huh.NewConfirm().
				Title("Review").
				Description("Let a second model correct the draft.").
				Value(&f.Review),
			huh.NewInput().
				Title("Review model").
				Value(&f.ReviewModel),
		).
			Title("Models"),
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum tags").
				Value(&f.MaxTags).
				Validate(validatePositive),
			huh.NewInput().
				Title("Minimum framework confidence").
				Value(&f.MinConfidence).
				Validate(validateConfidence),
			huh.NewInput().
				Title("Concurrency").
				Description("Tags generated at the same time.").
				Value(&f.Concurrency).
				Validate(validatePositive),
			huh.NewInput().
				Title("Mapping file").
				Description("Optional YAML file extending the framework to tag mapping.").
				Value(&f.MappingFile),
		).
			Title("Generation"),
		huh.NewGroup(
			huh.NewText().
				Title("Tags").
				Description("Comma-separated topics used when tags are not detected automatically.").
				Lines(4).
				Value(&f.Tags),
			huh.NewConfirm().
				Title("Save changes?").
				Affirmative("Save").
				Negative("Discard").
				Value(&f.Save),
		).
			Title("Topics"),
	)
}

// EditConfig runs the editor for cfg. It returns the edited configuration
// and false when the user discarded or aborted the edit.
func EditConfig(cfg *config.Config, accessible bool) (*config.Config, bool, error) {
	f := NewConfigForm(cfg)

	form := f.Form().
		WithTheme(NewHuhTheme()).
		WithShowHelp(true).
		WithAccessible(accessible)
	if !accessible {
		form = form.WithProgramOptions(tea.WithAltScreen())
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !f.Save {
		return nil, false, nil
	}

	edited, err := f.Apply()
	if err != nil {
		return nil, false, err
	}
	return edited, true, nil
}
