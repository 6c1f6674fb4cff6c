package tags

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mapping is a read-only table from framework name to its ordered tags.
// The first tag of an entry is the most specific one; order is preserved by
// the generator and relied upon for explanations.
type Mapping struct {
	entries    map[string][]string
	vocabulary map[string]struct{}
}

// NewMapping builds a Mapping from raw entries. Keys are lowercased, tags are
// normalized and deduplicated per entry; empty keys and empty tags are dropped.
// The input map is copied.
func NewMapping(entries map[string][]string) *Mapping {
	m := &Mapping{
		entries:    make(map[string][]string, len(entries)),
		vocabulary: make(map[string]struct{}),
	}

	for name, tags := range entries {
		k := key(name)
		if k == "" {
			continue
		}

		seen := make(map[string]struct{}, len(tags))
		normalized := make([]string, 0, len(tags))
		for _, tag := range tags {
			t := Normalize(tag)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			normalized = append(normalized, t)
			m.vocabulary[t] = struct{}{}
		}

		m.entries[k] = normalized
		m.vocabulary[k] = struct{}{}
	}

	return m
}

var defaultMapping = NewMapping(frameworkTags)

// DefaultMapping returns the built-in framework-tag table.
func DefaultMapping() *Mapping {
	return defaultMapping
}

// Lookup returns a copy of the tags mapped to a framework name.
func (m *Mapping) Lookup(name string) ([]string, bool) {
	tags, ok := m.entries[key(name)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), tags...), true
}

// Len returns the number of frameworks in the table.
func (m *Mapping) Len() int {
	return len(m.entries)
}

// Frameworks returns the sorted framework names.
func (m *Mapping) Frameworks() []string {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether tag is a framework name or one of the mapped tags.
func (m *Mapping) Contains(tag string) bool {
	_, ok := m.vocabulary[tag]
	return ok
}

// Vocabulary returns every framework name and mapped tag, sorted.
func (m *Mapping) Vocabulary() []string {
	vocab := make([]string, 0, len(m.vocabulary))
	for t := range m.vocabulary {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)
	return vocab
}

// Merge returns a new Mapping with overrides applied on top of m. An override
// replaces the whole entry of a framework.
func (m *Mapping) Merge(overrides map[string][]string) *Mapping {
	merged := make(map[string][]string, len(m.entries)+len(overrides))
	for name, tags := range m.entries {
		merged[name] = tags
	}
	for name, tags := range overrides {
		merged[key(name)] = tags
	}
	return NewMapping(merged)
}

// LoadMapping decodes YAML mapping entries of the form:
//
//	react: [react, components, jsx]
//	htmx: [htmx, hypermedia]
func LoadMapping(r io.Reader) (map[string][]string, error) {
	var entries map[string][]string
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}

	for name := range entries {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("mapping contains an empty framework name")
		}
	}

	return entries, nil
}

// frameworkTags is the built-in knowledge base. Extending coverage means
// adding entries here.
var frameworkTags = map[string][]string{
	// Frontend
	"react":   {"react", "components", "jsx", "hooks"},
	"vue":     {"vue", "components", "composition-api", "single-file-components"},
	"angular": {"angular", "components", "dependency-injection", "rxjs"},
	"svelte":  {"svelte", "components", "reactivity"},
	"nextjs":  {"nextjs", "server-components", "routing", "ssr"},
	"nuxt":    {"nuxt", "ssr", "routing"},
	"astro":   {"astro", "static-site-generation", "islands-architecture"},

	// Web frameworks
	"express":     {"express", "middleware", "rest-api", "routing"},
	"fastify":     {"fastify", "plugins", "rest-api", "schema-validation"},
	"nestjs":      {"nestjs", "dependency-injection", "decorators", "rest-api"},
	"django":      {"django", "django-orm", "views", "migrations"},
	"flask":       {"flask", "blueprints", "rest-api"},
	"fastapi":     {"fastapi", "async", "pydantic", "rest-api"},
	"rails":       {"rails", "active-record", "mvc", "migrations"},
	"laravel":     {"laravel", "eloquent", "mvc", "migrations"},
	"spring-boot": {"spring-boot", "dependency-injection", "rest-api", "jpa"},
	"gin":         {"gin", "middleware", "rest-api", "routing"},
	"echo":        {"echo", "middleware", "rest-api"},
	"fiber":       {"fiber", "middleware", "rest-api"},
	"chi":         {"chi", "middleware", "routing"},
	"actix-web":   {"actix-web", "async", "rest-api"},
	"axum":        {"axum", "async", "rest-api", "tower"},
	"rocket":      {"rocket", "rest-api", "routing"},
	"aspnet-core": {"aspnet-core", "dependency-injection", "rest-api", "middleware"},

	// Bundlers
	"webpack": {"webpack", "bundling", "build-optimization"},
	"vite":    {"vite", "bundling", "hot-module-replacement"},
	"rollup":  {"rollup", "bundling", "tree-shaking"},
	"esbuild": {"esbuild", "bundling"},
	"parcel":  {"parcel", "bundling"},

	// Testing
	"jest":       {"jest", "testing", "mocking", "snapshot-testing"},
	"vitest":     {"vitest", "testing", "mocking"},
	"mocha":      {"mocha", "testing"},
	"cypress":    {"cypress", "e2e-testing"},
	"playwright": {"playwright", "e2e-testing", "browser-automation"},
	"pytest":     {"pytest", "testing", "fixtures"},
	"testify":    {"testify", "testing", "assertions"},
	"rspec":      {"rspec", "testing", "bdd"},
	"junit":      {"junit", "testing"},

	// Databases
	"postgresql": {"postgresql", "sql", "database-design"},
	"mysql":      {"mysql", "sql", "database-design"},
	"mongodb":    {"mongodb", "nosql", "document-modeling"},
	"redis":      {"redis", "caching"},
	"sqlite":     {"sqlite", "sql"},

	// ORMs
	"prisma":     {"prisma", "orm", "database-migrations", "type-safety"},
	"typeorm":    {"typeorm", "orm", "database-migrations"},
	"sequelize":  {"sequelize", "orm", "database-migrations"},
	"mongoose":   {"mongoose", "mongodb", "schema-validation"},
	"sqlalchemy": {"sqlalchemy", "orm", "database-migrations"},
	"gorm":       {"gorm", "orm", "database-migrations"},
	"diesel":     {"diesel", "orm", "database-migrations"},

	// Analytics and machine learning
	"pandas":       {"pandas", "data-analysis", "dataframes"},
	"numpy":        {"numpy", "numerical-computing", "vectorization"},
	"jupyter":      {"jupyter", "notebooks", "reproducibility"},
	"matplotlib":   {"matplotlib", "data-visualization"},
	"scikit-learn": {"scikit-learn", "machine-learning", "model-evaluation"},
	"tensorflow":   {"tensorflow", "deep-learning", "machine-learning"},
	"pytorch":      {"pytorch", "deep-learning", "machine-learning"},

	// Styling and state
	"tailwindcss":       {"tailwindcss", "utility-first-css", "styling"},
	"sass":              {"sass", "styling"},
	"styled-components": {"styled-components", "css-in-js", "styling"},
	"redux":             {"redux", "state-management", "immutability"},
	"zustand":           {"zustand", "state-management"},
	"pinia":             {"pinia", "state-management"},

	// Mobile
	"react-native": {"react-native", "mobile-development", "components"},
	"flutter":      {"flutter", "mobile-development", "widgets"},

	// CLI
	"cobra": {"cobra", "cli-design", "command-line"},
	"click": {"click", "cli-design", "command-line"},
	"typer": {"typer", "cli-design", "type-hints"},
	"clap":  {"clap", "cli-design", "command-line"},

	// Linting and formatting
	"eslint":        {"eslint", "linting", "code-quality"},
	"prettier":      {"prettier", "code-formatting"},
	"ruff":          {"ruff", "linting", "code-quality"},
	"black":         {"black", "code-formatting"},
	"golangci-lint": {"golangci-lint", "linting", "code-quality"},

	// Protocols and runtimes
	"graphql": {"graphql", "api-design", "schema-design"},
	"grpc":    {"grpc", "protocol-buffers", "api-design"},
	"celery":  {"celery", "task-queues", "async"},
	"tokio":   {"tokio", "async", "concurrency"},
	"serde":   {"serde", "serialization"},

	// Infrastructure
	"docker":         {"docker", "containerization", "dockerfile-best-practices"},
	"kubernetes":     {"kubernetes", "container-orchestration", "manifests"},
	"helm":           {"helm", "kubernetes", "charts"},
	"terraform":      {"terraform", "infrastructure-as-code", "terraform-modules"},
	"github-actions": {"github-actions", "ci-cd", "workflow-automation"},
}
