package models

import (
	"sort"
	"strings"
)

// LanguageInfo describes the languages found in a project.
type LanguageInfo struct {
	// PrimaryLanguage is the language with the largest share of files
	PrimaryLanguage string `json:"primaryLanguage"`

	// Languages maps a language name to its fractional share of files (sums to ~1.0)
	Languages map[string]float64 `json:"languages"`

	// FileExtensions is the sorted set of extensions seen while scanning
	FileExtensions []string `json:"fileExtensions"`

	// TotalFiles is the number of source files that were counted
	TotalFiles int `json:"totalFiles"`
}

// LanguageShare pairs a language with its share of files.
type LanguageShare struct {
	Name  string
	Share float64
}

// Primary returns the primary language. When PrimaryLanguage is unset the
// language with the largest share is used; ties are broken by name.
func (l LanguageInfo) Primary() string {
	if p := strings.TrimSpace(l.PrimaryLanguage); p != "" {
		return p
	}

	ranked := l.Ranked()
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0].Name
}

// Ranked returns every language ordered by share (descending), then name.
func (l LanguageInfo) Ranked() []LanguageShare {
	ranked := make([]LanguageShare, 0, len(l.Languages))
	for name, share := range l.Languages {
		ranked = append(ranked, LanguageShare{Name: name, Share: share})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Share != ranked[j].Share {
			return ranked[i].Share > ranked[j].Share
		}
		return ranked[i].Name < ranked[j].Name
	})

	return ranked
}

// Significant returns the secondary languages whose share exceeds threshold.
// The primary language is never part of the result.
func (l LanguageInfo) Significant(threshold float64) []LanguageShare {
	primary := strings.ToLower(l.Primary())

	var result []LanguageShare
	for _, ls := range l.Ranked() {
		if strings.ToLower(ls.Name) == primary {
			continue
		}
		if ls.Share > threshold {
			result = append(result, ls)
		}
	}
	return result
}

// Share returns the share of a language, or 0 if it was not seen.
func (l LanguageInfo) Share(name string) float64 {
	if share, ok := l.Languages[name]; ok {
		return share
	}
	for lang, share := range l.Languages {
		if strings.EqualFold(lang, name) {
			return share
		}
	}
	return 0
}
