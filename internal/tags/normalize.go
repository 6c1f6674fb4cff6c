package tags

import (
	"regexp"
	"strings"
)

var (
	wellFormedPattern = regexp.MustCompile(`^[a-z0-9]+(?:[- ][a-z0-9]+)*$`)
	invalidChars      = regexp.MustCompile(`[^a-z0-9 -]+`)
	repeatedSpaces    = regexp.MustCompile(`\s+`)
	repeatedHyphens   = regexp.MustCompile(`-{2,}`)
)

// languageAliases rewrites language names that contain symbols.
var languageAliases = map[string]string{
	"c++":           "cpp",
	"c#":            "csharp",
	"f#":            "fsharp",
	"objective-c":   "objective-c",
	"objective-c++": "objective-cpp",
	"node.js":       "javascript",
	"golang":        "go",
}

// IsWellFormed reports whether tag follows the naming convention: lowercase
// alphanumerics separated by single hyphens or spaces, no surrounding whitespace.
func IsWellFormed(tag string) bool {
	return wellFormedPattern.MatchString(tag)
}

// Normalize case-folds and strips a tag into its canonical form. Underscores
// become hyphens, whitespace runs collapse to one space and characters outside
// [a-z0-9 -] are dropped. The result may be empty.
func Normalize(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.ReplaceAll(t, "_", "-")
	t = repeatedSpaces.ReplaceAllString(t, " ")
	t = invalidChars.ReplaceAllString(t, "")
	t = repeatedHyphens.ReplaceAllString(t, "-")
	t = strings.ReplaceAll(t, " -", "-")
	t = strings.ReplaceAll(t, "- ", "-")
	return strings.Trim(t, " -")
}

// LanguageTag converts a language name into a tag, e.g. "C++" -> "cpp".
func LanguageTag(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := languageAliases[key]; ok {
		return alias
	}
	return Normalize(key)
}

// key is the case-insensitive identity used for deduplication.
func key(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
