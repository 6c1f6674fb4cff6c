package cli

import (
	"fmt"

	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/rules"
	"github.com/jakoblorz/go-airules/internal/tui"
	"github.com/spf13/cobra"
)

// NewToolsCommand creates the tools command
func NewToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List supported tools and where their rules are written",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := toolLayouts()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderTools(out))
			return nil
		},
	}
}

func toolLayouts() (map[models.Tool]string, error) {
	out := make(map[models.Tool]string, len(models.AllTools))
	for _, tool := range models.AllTools {
		l, err := rules.LayoutFor(tool)
		if err != nil {
			return nil, err
		}
		if l.Shared() {
			out[tool] = l.SharedFile + " (one section per tag)"
		} else {
			out[tool] = l.Dir + "/<lang>-<tag>" + l.Ext
		}
	}
	return out, nil
}
