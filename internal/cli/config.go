package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/tui"
	"github.com/spf13/cobra"
)

// ConfigCommand handles the config command
type ConfigCommand struct {
	fs filesystem.FileSystem

	// edit runs the editor; replaced in tests.
	edit func(cfg *config.Config, accessible bool) (*config.Config, bool, error)

	// interactive reports whether the editor can take over the terminal.
	interactive func(cmd *cobra.Command) bool
}

// NewConfigCommand creates a new config command
func NewConfigCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &ConfigCommand{
		fs:   fs,
		edit: tui.EditConfig,
		interactive: func(cmd *cobra.Command) bool {
			return tui.IsInteractive(cmd.OutOrStdout())
		},
	}
	return cmd.command()
}

func (c *ConfigCommand) command() *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "config",
		Short: "Edit the project configuration",
		Long: `Opens an editor for .airulesrc. When the project has no configuration yet,
the editor starts from the defaults and saves a new file in the project root.

With --print the effective configuration, including environment overrides,
is printed instead.`,
		Example: `  # Edit interactively
  airules config

  # Show the effective configuration
  airules config --print`,
		RunE: c.Run,
	}

	cobraCmd.Flags().Bool("print", false, "Print the effective configuration")
	cobraCmd.Flags().Bool("accessible", false, "Use the line-based editor")

	return cobraCmd
}

// Run executes the config command
func (c *ConfigCommand) Run(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(c.fs, cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.fs, root)
	if err != nil {
		return err
	}

	if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	accessible, _ := cmd.Flags().GetBool("accessible")
	if !accessible && !c.interactive(cmd) {
		return fmt.Errorf("config editor needs a terminal; use --print or --accessible")
	}

	edited, ok, err := c.edit(cfg, accessible)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), tui.SubtleStyle.Render("No changes saved."))
		return nil
	}

	path := cfg.Path
	if path == "" {
		path = filepath.Join(root, config.FileName)
	}
	if err := config.Save(c.fs, path, edited); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tui.SuccessStyle.Render("✓ Saved"), path)
	return nil
}
