package tags

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// TagReport is the validation outcome for a single tag.
type TagReport struct {
	Tag        string `json:"tag"`
	Known      bool   `json:"known"`
	WellFormed bool   `json:"wellFormed"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Report is the advisory result of validating a tag list. Entries follow the
// order of the input.
type Report struct {
	Tags []TagReport `json:"tags"`
}

// Unknown returns the tags that are neither mapped nor in the allowlist.
func (r Report) Unknown() []string {
	var out []string
	for _, t := range r.Tags {
		if !t.Known {
			out = append(out, t.Tag)
		}
	}
	return out
}

// Malformed returns the tags that break the naming convention.
func (r Report) Malformed() []string {
	var out []string
	for _, t := range r.Tags {
		if !t.WellFormed {
			out = append(out, t.Tag)
		}
	}
	return out
}

// AllWellFormed reports whether every tag follows the naming convention.
func (r Report) AllWellFormed() bool {
	return len(r.Malformed()) == 0
}

// Suggestions maps each tag that has a suggestion to it.
func (r Report) Suggestions() map[string]string {
	out := make(map[string]string)
	for _, t := range r.Tags {
		if t.Suggestion != "" {
			out[t.Tag] = t.Suggestion
		}
	}
	return out
}

// Validator checks candidate tags against the mapping table, the common-tags
// allowlist and the naming convention.
type Validator struct {
	known map[string]struct{}
	vocab []string
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*validatorConfig)

type validatorConfig struct {
	extra []string
}

// WithCommonTags extends the allowlist of known tags.
func WithCommonTags(tags ...string) ValidatorOption {
	return func(c *validatorConfig) {
		c.extra = append(c.extra, tags...)
	}
}

// NewValidator creates a Validator backed by mapping. A nil mapping uses
// DefaultMapping.
func NewValidator(mapping *Mapping, opts ...ValidatorOption) *Validator {
	if mapping == nil {
		mapping = DefaultMapping()
	}

	cfg := &validatorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	known := make(map[string]struct{})
	for _, t := range mapping.Vocabulary() {
		known[t] = struct{}{}
	}
	for _, t := range commonTags {
		known[t] = struct{}{}
	}
	for _, t := range cfg.extra {
		if n := Normalize(t); n != "" {
			known[n] = struct{}{}
		}
	}

	vocab := make([]string, 0, len(known))
	for t := range known {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)

	return &Validator{known: known, vocab: vocab}
}

// IsKnown reports whether tag is in the mapping table or the allowlist.
func (v *Validator) IsKnown(tag string) bool {
	_, ok := v.known[tag]
	return ok
}

// Validate inspects every tag and never modifies the input. Unknown tags are
// reported but remain legitimate topics.
func (v *Validator) Validate(tags []string) Report {
	report := Report{Tags: make([]TagReport, 0, len(tags))}
	for _, tag := range tags {
		tr := TagReport{
			Tag:        tag,
			Known:      v.IsKnown(tag),
			WellFormed: IsWellFormed(tag),
		}
		if !tr.Known || !tr.WellFormed {
			tr.Suggestion = v.suggest(tag)
		}
		report.Tags = append(report.Tags, tr)
	}
	return report
}

// suggest returns a corrected tag or "" if nothing close exists.
func (v *Validator) suggest(tag string) string {
	normalized := Normalize(tag)
	if normalized == "" {
		return ""
	}

	if normalized != tag && v.IsKnown(normalized) {
		return normalized
	}

	if best := v.nearest(normalized); best != "" && best != tag {
		return best
	}

	if normalized != tag && IsWellFormed(normalized) {
		return normalized
	}

	return ""
}

// nearest finds the closest known tag within a length-dependent edit distance.
// Ties resolve to the lexicographically smallest tag.
func (v *Validator) nearest(tag string) string {
	limit := 2
	if len(tag) <= 4 {
		limit = 1
	}

	best := ""
	bestDist := limit + 1
	for _, candidate := range v.vocab {
		if abs(len(candidate)-len(tag)) > limit {
			continue
		}
		d := levenshtein.ComputeDistance(tag, candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}

	if bestDist > limit {
		return ""
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
