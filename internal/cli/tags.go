package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/tags"
	"github.com/jakoblorz/go-airules/internal/tui"
	"github.com/spf13/cobra"
)

// TagsCommand handles the tags command group
type TagsCommand struct {
	fs filesystem.FileSystem
}

// NewTagsCommand creates the tags command with its validate and mapping
// subcommands.
func NewTagsCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &TagsCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect tags and the framework to tag mapping",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [tags...]",
		Short: "Check tags against the known vocabulary",
		Long: `Reports for every tag whether it is known, whether it follows the naming
convention (lowercase letters, digits, spaces and hyphens) and a suggestion
when one is close.

Without arguments the tags from .airulesrc are checked. Unknown tags are only
reported; they are still valid topics.`,
		Example: `  # Check the configured topics
  airules tags validate

  # Check explicit tags
  airules tags validate "Fast API" pytest`,
		RunE: cmd.RunValidate,
	}
	validateCmd.Flags().Bool("json", false, "Output JSON")
	validateCmd.Flags().Bool("strict", false, "Fail when a tag is malformed")

	mappingCmd := &cobra.Command{
		Use:   "mapping [framework...]",
		Short: "Show which tags frameworks map to",
		Example: `  # Show the whole mapping
  airules tags mapping

  # Show selected frameworks
  airules tags mapping django react`,
		RunE: cmd.RunMapping,
	}

	cobraCmd.AddCommand(validateCmd, mappingCmd)

	return cobraCmd
}

func (c *TagsCommand) load(cmd *cobra.Command) (*config.Config, *tags.Mapping, error) {
	root, err := projectRoot(c.fs, cmd)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadOrDefault(c.fs, root)
	if err != nil {
		return nil, nil, err
	}

	mapping, err := loadMapping(c.fs, cfg, root)
	if err != nil {
		return nil, nil, err
	}
	return cfg, mapping, nil
}

// RunValidate executes tags validate
func (c *TagsCommand) RunValidate(cmd *cobra.Command, args []string) error {
	cfg, mapping, err := c.load(cmd)
	if err != nil {
		return err
	}

	list := args
	if len(list) == 0 {
		list = cfg.Tags
	}
	if len(list) == 0 {
		return fmt.Errorf("no tags given and none configured")
	}

	report := tags.NewValidator(mapping).Validate(list)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderTagReport(report))
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if malformed := report.Malformed(); strict && len(malformed) > 0 {
		return fmt.Errorf("malformed tags: %s", strings.Join(malformed, ", "))
	}
	return nil
}

// RunMapping executes tags mapping
func (c *TagsCommand) RunMapping(cmd *cobra.Command, args []string) error {
	_, mapping, err := c.load(cmd)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderMapping(mapping, args))
	return nil
}
