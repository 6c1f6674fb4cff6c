package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jakoblorz/go-airules/internal/analyzer"
	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/tags"
	"github.com/jakoblorz/go-airules/internal/tui"
	"github.com/spf13/cobra"
)

// AnalyzeCommand handles the analyze command
type AnalyzeCommand struct {
	fs filesystem.FileSystem
}

// AnalyzeOutput is the JSON form of an analysis.
type AnalyzeOutput struct {
	Analysis    *models.AnalysisResult `json:"analysis"`
	Tags        []string               `json:"tags"`
	Reasons     map[string]string      `json:"reasons"`
	Derivations []DerivationInfo       `json:"derivations"`
}

// DerivationInfo is one tag together with the rule stage that produced it.
type DerivationInfo struct {
	Tag    string `json:"tag"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// NewAnalyzeCommand creates a new analyze command
func NewAnalyzeCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &AnalyzeCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the project and show the tags it would get",
		Long: `Scans the project for languages, frameworks and testing, security and
deployment signals, then derives the tags rules would be generated for.

Nothing is sent to a model and nothing is written.`,
		Example: `  # Show the analysis
  airules analyze

  # Output JSON for scripting
  airules analyze --json > analysis.json`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("json", false, "Output JSON")
	cobraCmd.Flags().Int("max-tags", 0, "Maximum number of tags (default: settings.max_tags)")
	cobraCmd.Flags().Float64("min-confidence", -1, "Minimum framework confidence (default: settings.min_confidence)")

	return cobraCmd
}

// Run executes the analyze command
func (c *AnalyzeCommand) Run(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	root, err := projectRoot(c.fs, cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.fs, root)
	if err != nil {
		return err
	}

	mapping, err := loadMapping(c.fs, cfg, root)
	if err != nil {
		return err
	}

	maxTags := cfg.Settings.MaxTags
	if cmd.Flags().Changed("max-tags") {
		maxTags, _ = cmd.Flags().GetInt("max-tags")
		if maxTags < 1 {
			return fmt.Errorf("--max-tags must be at least 1, got %d", maxTags)
		}
	}
	minConfidence := cfg.Settings.MinConfidence
	if cmd.Flags().Changed("min-confidence") {
		minConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
		if minConfidence < 0 || minConfidence > 1 {
			return fmt.Errorf("--min-confidence must be between 0 and 1, got %g", minConfidence)
		}
	}

	a, err := analyzer.New(c.fs, analyzer.WithLogger(logger)).Analyze(root)
	if err != nil {
		return fmt.Errorf("failed to analyze project: %w", err)
	}

	gen := tags.NewGenerator(mapping, tags.WithMaxTags(maxTags), tags.WithMinConfidence(minConfidence))

	selected, err := gen.GenerateTags(a)
	if err != nil {
		return err
	}
	reasons, err := gen.Explanations(selected, a)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if !asJSON {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderAnalysis(a, selected, reasons))
		return nil
	}

	derivations, err := gen.Derivations(a)
	if err != nil {
		return err
	}

	out := AnalyzeOutput{
		Analysis:    a,
		Tags:        selected,
		Reasons:     reasons,
		Derivations: make([]DerivationInfo, 0, len(derivations)),
	}
	for _, d := range derivations {
		out.Derivations = append(out.Derivations, DerivationInfo{
			Tag:    d.Tag,
			Stage:  d.Stage.String(),
			Reason: d.Reason,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
