package tags

import (
	"fmt"

	"github.com/jakoblorz/go-airules/internal/models"
)

const (
	// DefaultMaxTags caps the number of generated tags
	DefaultMaxTags = 15

	// DefaultMinConfidence is the lowest framework confidence that yields tags
	DefaultMinConfidence = 0.5

	// DefaultLanguageThreshold is the share above which a secondary language counts
	DefaultLanguageThreshold = 0.1

	// FallbackExplanation is used when no rule justifies a tag
	FallbackExplanation = "inferred from project analysis"
)

// ErrMalformedInput is returned (wrapped) for analyses that fail validation.
var ErrMalformedInput = models.ErrMalformedInput

// Generator turns an AnalysisResult into an ordered, deduplicated and capped
// list of tags. It is stateless after construction and safe for concurrent use.
type Generator struct {
	mapping           *Mapping
	maxTags           int
	minConfidence     float64
	languageThreshold float64
	rules             []rule
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithMaxTags sets the tag cap. Values below 1 are ignored.
func WithMaxTags(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxTags = n
		}
	}
}

// WithMinConfidence sets the framework confidence threshold.
func WithMinConfidence(c float64) GeneratorOption {
	return func(g *Generator) {
		if c >= 0 && c <= 1 {
			g.minConfidence = c
		}
	}
}

// WithLanguageThreshold sets the share a secondary language must exceed.
func WithLanguageThreshold(t float64) GeneratorOption {
	return func(g *Generator) {
		if t >= 0 && t < 1 {
			g.languageThreshold = t
		}
	}
}

// NewGenerator creates a Generator backed by mapping. A nil mapping uses
// DefaultMapping.
func NewGenerator(mapping *Mapping, opts ...GeneratorOption) *Generator {
	if mapping == nil {
		mapping = DefaultMapping()
	}

	g := &Generator{
		mapping:           mapping,
		maxTags:           DefaultMaxTags,
		minConfidence:     DefaultMinConfidence,
		languageThreshold: DefaultLanguageThreshold,
		rules:             defaultRules,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// MaxTags returns the configured cap.
func (g *Generator) MaxTags() int {
	return g.maxTags
}

// GenerateTags returns the tags for an analysis in priority order. Stages are
// evaluated in order and stop as soon as the cap is reached, so lower-priority
// stages are the ones dropped. Only malformed analyses produce an error.
func (g *Generator) GenerateTags(a *models.AnalysisResult) ([]string, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("cannot generate tags: %w", err)
	}

	result := make([]string, 0, g.maxTags)
	seen := make(map[string]struct{}, g.maxTags)

	env := g.env()
	for _, r := range g.rules {
		if !r.applies(a) {
			continue
		}
		for _, d := range r.derive(env, a) {
			if len(result) >= g.maxTags {
				return result, nil
			}

			k := key(d.Tag)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			result = append(result, d.Tag)
		}
	}

	return result, nil
}

// Derivations returns every derivation the rule table produces for an
// analysis, in evaluation order, without deduplication or cap.
func (g *Generator) Derivations(a *models.AnalysisResult) ([]Derivation, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("cannot derive tags: %w", err)
	}

	var out []Derivation
	env := g.env()
	for _, r := range g.rules {
		if !r.applies(a) {
			continue
		}
		for _, d := range r.derive(env, a) {
			d.Stage = r.stage
			d.Rule = r.name
			out = append(out, d)
		}
	}
	return out, nil
}

// Explanations returns a one-sentence justification for each requested tag.
// The first derivation producing a tag wins, mirroring GenerateTags. Tags no
// rule produces get FallbackExplanation.
func (g *Generator) Explanations(tags []string, a *models.AnalysisResult) (map[string]string, error) {
	derivations, err := g.Derivations(a)
	if err != nil {
		return nil, err
	}

	first := make(map[string]Derivation, len(derivations))
	for _, d := range derivations {
		k := key(d.Tag)
		if _, ok := first[k]; !ok {
			first[k] = d
		}
	}

	explanations := make(map[string]string, len(tags))
	for _, tag := range tags {
		if d, ok := first[key(tag)]; ok {
			explanations[tag] = d.Reason
			continue
		}
		explanations[tag] = FallbackExplanation
	}

	return explanations, nil
}

func (g *Generator) env() ruleEnv {
	return ruleEnv{
		mapping:           g.mapping,
		minConfidence:     g.minConfidence,
		languageThreshold: g.languageThreshold,
	}
}
