package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
)

// DefaultMaxFiles bounds the number of files inventoried per project.
const DefaultMaxFiles = 20000

// ErrNotADirectory is returned when the project path is not a directory.
var ErrNotADirectory = errors.New("project path is not a directory")

// Analyzer inspects a project tree and produces an AnalysisResult.
type Analyzer struct {
	fs       filesystem.FileSystem
	logger   *slog.Logger
	maxFiles int
	skipDirs map[string]struct{}
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for diagnostics such as skipped manifests.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxFiles bounds the file inventory. Values below 1 are ignored.
func WithMaxFiles(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxFiles = n
		}
	}
}

// WithSkipDirs adds directory names that are never scanned.
func WithSkipDirs(names ...string) Option {
	return func(a *Analyzer) {
		for _, name := range names {
			a.skipDirs[name] = struct{}{}
		}
	}
}

// New creates a new Analyzer.
func New(fs filesystem.FileSystem, options ...Option) *Analyzer {
	a := &Analyzer{
		fs:       fs,
		logger:   slog.New(slog.DiscardHandler),
		maxFiles: DefaultMaxFiles,
		skipDirs: make(map[string]struct{}, len(defaultSkipDirs)),
	}
	for _, name := range defaultSkipDirs {
		a.skipDirs[name] = struct{}{}
	}

	for _, option := range options {
		option(a)
	}

	return a
}

// Analyze scans the project at root. Relative roots are resolved against the
// working directory of the filesystem.
func (a *Analyzer) Analyze(root string) (*models.AnalysisResult, error) {
	root, err := a.resolveRoot(root)
	if err != nil {
		return nil, err
	}

	info, err := a.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotADirectory)
	}

	s, err := a.scanProject(root)
	if err != nil {
		return nil, err
	}
	if s.truncated {
		a.logger.Warn("file limit reached, analysis is based on a partial scan", "limit", a.maxFiles)
	}
	a.logger.Debug("scanned project", "root", root, "files", len(s.files), "dirs", len(s.dirs))

	deps := a.readDependencies(s)

	result := &models.AnalysisResult{
		ProjectPath:   root,
		Languages:     detectLanguages(s),
		DirectoryInfo: detectDirectories(s),
	}

	frameworks := detectFrameworks(s, deps)
	deployment, services := a.detectDeployment(s, deps)
	for _, svc := range services {
		frameworks = mergeFramework(frameworks, svc)
	}
	sortFrameworks(frameworks)
	result.Frameworks = frameworks
	result.DeploymentInfo = deployment

	result.TestingInfo = detectTesting(s, deps, frameworks)
	result.SecurityInfo = detectSecurity(s, deps, a.hasEnvFiles(root))
	result.ProjectType = inferProjectType(s, result)

	a.logger.Debug("analysis complete",
		"primary", result.Languages.PrimaryLanguage,
		"frameworks", len(result.Frameworks),
		"type", result.ProjectType.String(),
	)

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("analysis produced an invalid result: %w", err)
	}
	return result, nil
}

func (a *Analyzer) resolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}

	cwd, err := a.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, root), nil
}

// hasEnvFiles looks at the root directly because .env files are usually
// gitignored and therefore missing from the scan.
func (a *Analyzer) hasEnvFiles(root string) bool {
	entries, err := a.fs.ReadDir(root)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if name == ".env" || strings.HasPrefix(name, ".env.") {
			return true
		}
	}
	return false
}
