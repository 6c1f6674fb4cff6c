package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/spf13/viper"
)

// FileName is the name of the per-project configuration file.
const FileName = ".airulesrc"

// EnvPrefix prefixes environment overrides, e.g. AIRULES_SETTINGS_TOOL.
const EnvPrefix = "AIRULES"

// Configuration keys as viper sees them.
const (
	KeyLanguage      = "settings.language"
	KeyTool          = "settings.tool"
	KeyPrimaryModel  = "settings.primary_model"
	KeyReviewModel   = "settings.review_model"
	KeyResearchModel = "settings.research_model"
	KeyResearch      = "settings.research"
	KeyReview        = "settings.review"
	KeyMaxTags       = "settings.max_tags"
	KeyMinConfidence = "settings.min_confidence"
	KeyConcurrency   = "settings.concurrency"
	KeyMappingFile   = "settings.mapping_file"
	KeyTags          = "topics.tags"
)

// Keys lists every configuration key in file order.
var Keys = []string{
	KeyLanguage, KeyTool,
	KeyPrimaryModel, KeyReviewModel, KeyResearchModel,
	KeyResearch, KeyReview,
	KeyMaxTags, KeyMinConfidence, KeyConcurrency,
	KeyMappingFile,
	KeyTags,
}

var (
	// ErrConfigNotFound is returned when no .airulesrc exists in the project
	// directory or any of its parents.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigExists is returned when init would overwrite a configuration.
	ErrConfigExists = errors.New("configuration file already exists")
)

// Settings holds the [settings] section.
type Settings struct {
	Language      string
	Tool          string
	PrimaryModel  string
	ReviewModel   string
	ResearchModel string
	Research      bool
	Review        bool
	MaxTags       int
	MinConfidence float64
	Concurrency   int
	MappingFile   string
}

// Config is a loaded .airulesrc. Path is empty when the defaults were used
// because no file exists.
type Config struct {
	Path     string
	Settings Settings
	Tags     []string
}

// Default returns the configuration written by `airules init`.
func Default() *Config {
	return &Config{
		Settings: Settings{
			Language:      "python",
			Tool:          string(models.ToolCursor),
			PrimaryModel:  "gpt-4-turbo",
			ReviewModel:   "claude-3-opus-20240229",
			ResearchModel: "sonar-pro",
			Research:      true,
			Review:        true,
			MaxTags:       15,
			MinConfidence: 0.5,
			Concurrency:   1,
		},
		Tags: []string{"fastapi", "pytest", "coding style", "security"},
	}
}

// Tools parses the configured tool list.
func (c *Config) Tools() ([]models.Tool, error) {
	return models.ParseTools(c.Settings.Tool)
}

// Validate checks value ranges and the tool list.
func (c *Config) Validate() error {
	s := c.Settings
	if strings.TrimSpace(s.Language) == "" {
		return fmt.Errorf("%s must not be empty", KeyLanguage)
	}
	if _, err := c.Tools(); err != nil {
		return fmt.Errorf("%s: %w", KeyTool, err)
	}
	if strings.TrimSpace(s.PrimaryModel) == "" {
		return fmt.Errorf("%s must not be empty", KeyPrimaryModel)
	}
	if s.Research && strings.TrimSpace(s.ResearchModel) == "" {
		return fmt.Errorf("%s must be set when research is enabled", KeyResearchModel)
	}
	if s.Review && strings.TrimSpace(s.ReviewModel) == "" {
		return fmt.Errorf("%s must be set when review is enabled", KeyReviewModel)
	}
	if s.MaxTags < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyMaxTags, s.MaxTags)
	}
	if s.MinConfidence < 0 || s.MinConfidence > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", KeyMinConfidence, s.MinConfidence)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyConcurrency, s.Concurrency)
	}
	return nil
}

// Find returns the path of the nearest .airulesrc at or above dir.
func Find(fs filesystem.FileSystem, dir string) (string, error) {
	path, ok := filesystem.FindUp(fs, dir, FileName)
	if !ok {
		return "", fmt.Errorf("%w: no %s in %s or its parents", ErrConfigNotFound, FileName, dir)
	}
	return path, nil
}

// Load reads the nearest .airulesrc at or above dir and applies environment
// overrides. It returns ErrConfigNotFound when there is none.
func Load(fs filesystem.FileSystem, dir string) (*Config, error) {
	path, err := Find(fs, dir)
	if err != nil {
		return nil, err
	}
	return LoadFile(fs, path)
}

// LoadOrDefault is Load that falls back to the defaults (still subject to
// environment overrides) when no configuration file exists.
func LoadOrDefault(fs filesystem.FileSystem, dir string) (*Config, error) {
	cfg, err := Load(fs, dir)
	if errors.Is(err, ErrConfigNotFound) {
		return fromViper(newViper(true), "")
	}
	return cfg, err
}

// LoadFile reads a specific configuration file.
func LoadFile(fs filesystem.FileSystem, path string) (*Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	v := newViper(true)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return fromViper(v, path)
}

// Save writes cfg to path as INI. Environment overrides are not persisted.
func Save(fs filesystem.FileSystem, path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := filesystem.WriteFileAll(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// Marshal renders cfg in .airulesrc format.
func Marshal(cfg *Config) ([]byte, error) {
	v := newViper(false)
	s := cfg.Settings
	v.Set(KeyLanguage, s.Language)
	v.Set(KeyTool, s.Tool)
	v.Set(KeyPrimaryModel, s.PrimaryModel)
	v.Set(KeyReviewModel, s.ReviewModel)
	v.Set(KeyResearchModel, s.ResearchModel)
	v.Set(KeyResearch, s.Research)
	v.Set(KeyReview, s.Review)
	v.Set(KeyMaxTags, s.MaxTags)
	v.Set(KeyMinConfidence, s.MinConfidence)
	v.Set(KeyConcurrency, s.Concurrency)
	v.Set(KeyMappingFile, s.MappingFile)
	v.Set(KeyTags, strings.Join(cfg.Tags, ","))

	var buf bytes.Buffer
	if err := v.WriteConfigTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateDefault writes the default configuration into dir and returns its
// path. It refuses to overwrite an existing file.
func CreateDefault(fs filesystem.FileSystem, dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if fs.Exists(path) {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := Save(fs, path, Default()); err != nil {
		return "", err
	}
	return path, nil
}

// ParseTags splits a comma-separated topic list, trimming blanks.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func newViper(withEnv bool) *viper.Viper {
	registry := viper.NewCodecRegistry()
	_ = registry.RegisterCodec("ini", iniCodec{order: Keys})

	v := viper.NewWithOptions(viper.WithCodecRegistry(registry))
	v.SetConfigType("ini")

	if withEnv {
		d := Default()
		v.SetDefault(KeyLanguage, d.Settings.Language)
		v.SetDefault(KeyTool, d.Settings.Tool)
		v.SetDefault(KeyPrimaryModel, d.Settings.PrimaryModel)
		v.SetDefault(KeyReviewModel, d.Settings.ReviewModel)
		v.SetDefault(KeyResearchModel, d.Settings.ResearchModel)
		v.SetDefault(KeyResearch, d.Settings.Research)
		v.SetDefault(KeyReview, d.Settings.Review)
		v.SetDefault(KeyMaxTags, d.Settings.MaxTags)
		v.SetDefault(KeyMinConfidence, d.Settings.MinConfidence)
		v.SetDefault(KeyConcurrency, d.Settings.Concurrency)
		v.SetDefault(KeyMappingFile, d.Settings.MappingFile)
		v.SetDefault(KeyTags, strings.Join(d.Tags, ","))

		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	return v
}

func fromViper(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{
		Path: path,
		Settings: Settings{
			Language:      strings.TrimSpace(v.GetString(KeyLanguage)),
			Tool:          strings.TrimSpace(v.GetString(KeyTool)),
			PrimaryModel:  strings.TrimSpace(v.GetString(KeyPrimaryModel)),
			ReviewModel:   strings.TrimSpace(v.GetString(KeyReviewModel)),
			ResearchModel: strings.TrimSpace(v.GetString(KeyResearchModel)),
			Research:      v.GetBool(KeyResearch),
			Review:        v.GetBool(KeyReview),
			MaxTags:       v.GetInt(KeyMaxTags),
			MinConfidence: v.GetFloat64(KeyMinConfidence),
			Concurrency:   v.GetInt(KeyConcurrency),
			MappingFile:   strings.TrimSpace(v.GetString(KeyMappingFile)),
		},
		Tags: ParseTags(v.GetString(KeyTags)),
	}

	if err := cfg.Validate(); err != nil {
		if path == "" {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}
