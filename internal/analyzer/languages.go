package analyzer

import (
	"path"
	"sort"
	"strings"

	"github.com/jakoblorz/go-airules/internal/models"
)

// extensionLanguages maps a lowercase file extension to its language.
var extensionLanguages = map[string]string{
	".py":     "python",
	".pyi":    "python",
	".ipynb":  "python",
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".vue":    "javascript",
	".svelte": "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".mts":    "typescript",
	".go":     "go",
	".rs":     "rust",
	".java":   "java",
	".kt":     "kotlin",
	".kts":    "kotlin",
	".scala":  "scala",
	".rb":     "ruby",
	".php":    "php",
	".cs":     "csharp",
	".fs":     "fsharp",
	".c":      "c",
	".h":      "c",
	".cc":     "cpp",
	".cpp":    "cpp",
	".cxx":    "cpp",
	".hpp":    "cpp",
	".swift":  "swift",
	".m":      "objective-c",
	".dart":   "dart",
	".ex":     "elixir",
	".exs":    "elixir",
	".erl":    "erlang",
	".hs":     "haskell",
	".lua":    "lua",
	".r":      "r",
	".jl":     "julia",
	".sh":     "shell",
	".bash":   "shell",
	".zsh":    "shell",
	".ps1":    "powershell",
	".sql":    "sql",
	".html":   "html",
	".htm":    "html",
	".css":    "css",
	".scss":   "css",
	".sass":   "css",
	".less":   "css",
	".tf":     "hcl",
	".hcl":    "hcl",
	".yaml":   "yaml",
	".yml":    "yaml",
}

// supportLanguages only become primary when no other language is present.
var supportLanguages = map[string]struct{}{
	"html":  {},
	"css":   {},
	"sql":   {},
	"shell": {},
	"hcl":   {},
	"yaml":  {},
}

func detectLanguages(s *scan) models.LanguageInfo {
	counts := make(map[string]int)
	extensions := make(map[string]struct{})
	total := 0

	for _, f := range s.files {
		ext := strings.ToLower(path.Ext(f))
		lang, ok := extensionLanguages[ext]
		if !ok {
			continue
		}
		counts[lang]++
		extensions[ext] = struct{}{}
		total++
	}

	info := models.LanguageInfo{
		Languages:  make(map[string]float64, len(counts)),
		TotalFiles: total,
	}
	if total == 0 {
		return info
	}

	for lang, n := range counts {
		info.Languages[lang] = float64(n) / float64(total)
	}
	for ext := range extensions {
		info.FileExtensions = append(info.FileExtensions, ext)
	}
	sort.Strings(info.FileExtensions)

	info.PrimaryLanguage = primaryLanguage(counts)
	return info
}

// primaryLanguage picks the language with most files, preferring programming
// languages over markup and configuration. Ties resolve by name.
func primaryLanguage(counts map[string]int) string {
	best, bestCount, bestSupport := "", -1, true
	names := make([]string, 0, len(counts))
	for lang := range counts {
		names = append(names, lang)
	}
	sort.Strings(names)

	for _, lang := range names {
		_, support := supportLanguages[lang]
		n := counts[lang]
		switch {
		case bestSupport && !support:
			best, bestCount, bestSupport = lang, n, support
		case support && !bestSupport:
			continue
		case n > bestCount:
			best, bestCount, bestSupport = lang, n, support
		}
	}
	return best
}
