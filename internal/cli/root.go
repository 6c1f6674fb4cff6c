package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/llm"
	"github.com/spf13/cobra"
)

// FactoryFunc builds the LLM client factory once credentials are known.
type FactoryFunc func(creds llm.Credentials) llm.Factory

// DefaultFactory creates clients for the real providers.
func DefaultFactory(creds llm.Credentials) llm.Factory {
	return llm.NewProviderFactory(creds)
}

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, newFactory FactoryFunc) *cobra.Command {
	generate := &GenerateCommand{fs: fs, newFactory: newFactory}

	rootCmd := &cobra.Command{
		Use:   "airules",
		Short: "Generate AI coding assistant rules for a project",
		Long: `airules analyzes a project, picks the topics worth writing rules for and
asks language models to research, write and review those rules.

The results are written where each assistant expects them: Cursor, Roo Code,
Windsurf, Claude and GitHub Copilot are supported.

Running airules without a subcommand is the same as 'airules generate'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          generate.Run,
	}

	rootCmd.PersistentFlags().String("project-path", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug logs")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(NewGenerateCommand(fs, newFactory))
	rootCmd.AddCommand(NewAnalyzeCommand(fs))
	rootCmd.AddCommand(NewTagsCommand(fs))
	rootCmd.AddCommand(NewInitCommand(fs))
	rootCmd.AddCommand(NewConfigCommand(fs))
	rootCmd.AddCommand(NewToolsCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCommand(filesystem.NewOSFileSystem(), DefaultFactory)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
