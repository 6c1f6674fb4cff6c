package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/jakoblorz/go-airules/internal/config"
	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/logging"
	"github.com/jakoblorz/go-airules/internal/tags"
	"github.com/spf13/cobra"
)

const (
	projectPathFlag = "project-path"
	verboseFlag     = "verbose"
	logJSONFlag     = "log-json"
)

// flagEnabled reads a boolean flag declared on cmd or any parent.
func flagEnabled(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}

	flag := cmd.Flag(name)
	if flag == nil {
		return false
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false
	}

	return enabled
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), flagEnabled(cmd, verboseFlag), flagEnabled(cmd, logJSONFlag))
}

// projectRoot resolves --project-path against the working directory.
func projectRoot(fs filesystem.FileSystem, cmd *cobra.Command) (string, error) {
	wd, err := fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	path := wd
	if flag := cmd.Flag(projectPathFlag); flag != nil && flag.Value.String() != "" {
		path = flag.Value.String()
		if !filepath.IsAbs(path) {
			path = filepath.Join(wd, path)
		}
	}
	path = filepath.Clean(path)

	info, err := fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("project path %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path %s is not a directory", path)
	}
	return path, nil
}

// loadMapping returns the built-in mapping extended by settings.mapping_file.
// Relative mapping paths are resolved against the configuration file.
func loadMapping(fs filesystem.FileSystem, cfg *config.Config, root string) (*tags.Mapping, error) {
	mapping := tags.DefaultMapping()
	if cfg.Settings.MappingFile == "" {
		return mapping, nil
	}

	path := cfg.Settings.MappingFile
	if !filepath.IsAbs(path) {
		base := root
		if cfg.Path != "" {
			base = filepath.Dir(cfg.Path)
		}
		path = filepath.Join(base, path)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	overrides, err := tags.LoadMapping(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mapping.Merge(overrides), nil
}
