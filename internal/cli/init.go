package cli

import (
	"fmt"

	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/tui"
	"github.com/spf13/cobra"
)

// InitCommand handles the init command
type InitCommand struct {
	fs filesystem.FileSystem
}

// NewInitCommand creates a new init command
func NewInitCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &InitCommand{fs: fs}

	return &cobra.Command{
		Use:   "init",
		Short: "Create a default .airulesrc in the project",
		Long: `Writes a .airulesrc with the default settings and topics into the project
root. An existing file is never overwritten; use 'airules config' to edit it.`,
		RunE: cmd.Run,
	}
}

// Run executes the init command
func (c *InitCommand) Run(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(c.fs, cmd)
	if err != nil {
		return err
	}

	path, err := config.CreateDefault(c.fs, root)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tui.SuccessStyle.Render("✓ Created"), path)
	return nil
}
