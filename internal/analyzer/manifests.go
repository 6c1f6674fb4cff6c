package analyzer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// ecosystem identifies the package registry a dependency comes from.
type ecosystem string

const (
	ecosystemNPM      ecosystem = "npm"
	ecosystemPyPI     ecosystem = "pypi"
	ecosystemGo       ecosystem = "go"
	ecosystemCargo    ecosystem = "cargo"
	ecosystemMaven    ecosystem = "maven"
	ecosystemRubyGems ecosystem = "rubygems"
	ecosystemComposer ecosystem = "composer"
	ecosystemPub      ecosystem = "pub"
)

// dependency is one declared package of a manifest.
type dependency struct {
	Name      string
	Version   string
	Ecosystem ecosystem
	Source    string
	Dev       bool
}

// manifestReader parses one manifest format.
type manifestReader struct {
	patterns []string
	parse    func(rel string, data []byte) ([]dependency, error)
}

var manifestReaders = []manifestReader{
	{patterns: []string{"package.json", "**/package.json"}, parse: parsePackageJSON},
	{patterns: []string{"requirements*.txt", "**/requirements*.txt", "requirements/*.txt"}, parse: parseRequirements},
	{patterns: []string{"pyproject.toml", "**/pyproject.toml"}, parse: parsePyProject},
	{patterns: []string{"Pipfile", "**/Pipfile"}, parse: parsePipfile},
	{patterns: []string{"go.mod", "**/go.mod"}, parse: parseGoMod},
	{patterns: []string{"Cargo.toml", "**/Cargo.toml"}, parse: parseCargo},
	{patterns: []string{"pom.xml", "**/pom.xml"}, parse: parsePom},
	{patterns: []string{"build.gradle", "build.gradle.kts", "**/build.gradle", "**/build.gradle.kts"}, parse: parseGradle},
	{patterns: []string{"Gemfile", "**/Gemfile"}, parse: parseGemfile},
	{patterns: []string{"composer.json", "**/composer.json"}, parse: parseComposer},
	{patterns: []string{"pubspec.yaml", "**/pubspec.yaml"}, parse: parsePubspec},
}

// readDependencies parses every manifest of the scan. Manifests that cannot
// be parsed are logged and skipped.
func (a *Analyzer) readDependencies(s *scan) []dependency {
	var deps []dependency
	for _, reader := range manifestReaders {
		for _, rel := range s.match(reader.patterns...) {
			data, err := s.read(rel)
			if err != nil {
				a.logger.Warn("failed to read manifest", "path", rel, "error", err)
				continue
			}
			parsed, err := reader.parse(rel, data)
			if err != nil {
				a.logger.Warn("skipping malformed manifest", "path", rel, "error", err)
				continue
			}
			a.logger.Debug("parsed manifest", "path", rel, "dependencies", len(parsed))
			deps = append(deps, parsed...)
		}
	}

	sort.SliceStable(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Name < deps[j].Name
	})
	return deps
}

// packageJSON represents the subset of package.json the analyzer reads.
type packageJSON struct {
	Name                 string            `json:"name"`
	Private              bool              `json:"private"`
	Main                 string            `json:"main"`
	Exports              json.RawMessage   `json:"exports"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Scripts              map[string]string `json:"scripts"`
}

func readPackageJSON(data []byte) (packageJSON, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return packageJSON{}, err
	}
	return pkg, nil
}

func parsePackageJSON(rel string, data []byte) ([]dependency, error) {
	pkg, err := readPackageJSON(data)
	if err != nil {
		return nil, err
	}

	var deps []dependency
	add := func(m map[string]string, dev bool) {
		for name, version := range m {
			deps = append(deps, dependency{Name: name, Version: version, Ecosystem: ecosystemNPM, Source: rel, Dev: dev})
		}
	}
	add(pkg.Dependencies, false)
	add(pkg.PeerDependencies, false)
	add(pkg.OptionalDependencies, false)
	add(pkg.DevDependencies, true)
	return deps, nil
}

var requirementSeparators = regexp.MustCompile(`[<>=!~;\[\s@]`)

func parseRequirements(rel string, data []byte) ([]dependency, error) {
	var deps []dependency
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if dep, ok := parsePEP508(line); ok {
			dep.Source = rel
			dep.Dev = strings.Contains(path.Base(rel), "dev") || strings.Contains(path.Base(rel), "test")
			deps = append(deps, dep)
		}
	}
	return deps, scanner.Err()
}

// parsePEP508 extracts name and pinned version from a requirement specifier
// such as "django>=4.2,<5" or "uvicorn[standard]==0.29.0".
func parsePEP508(spec string) (dependency, bool) {
	spec = strings.TrimSpace(spec)
	loc := requirementSeparators.FindStringIndex(spec)
	name := spec
	rest := ""
	if loc != nil {
		name = spec[:loc[0]]
		rest = spec[loc[0]:]
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return dependency{}, false
	}

	version := ""
	if i := strings.Index(rest, "=="); i >= 0 {
		version = strings.TrimSpace(strings.SplitN(rest[i+2:], ",", 2)[0])
		version = strings.TrimSpace(strings.SplitN(version, ";", 2)[0])
	}
	return dependency{Name: name, Version: version, Ecosystem: ecosystemPyPI}, true
}

type pyProject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
	BuildSystem struct {
		Requires []string `toml:"requires"`
	} `toml:"build-system"`
}

func parsePyProject(rel string, data []byte) ([]dependency, error) {
	var doc pyProject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var deps []dependency
	addSpec := func(spec string, dev bool) {
		if dep, ok := parsePEP508(spec); ok {
			dep.Source = rel
			dep.Dev = dev
			deps = append(deps, dep)
		}
	}
	addTable := func(m map[string]any, dev bool) {
		for name, v := range m {
			if strings.EqualFold(name, "python") {
				continue
			}
			deps = append(deps, dependency{
				Name:      strings.ToLower(name),
				Version:   tomlVersion(v),
				Ecosystem: ecosystemPyPI,
				Source:    rel,
				Dev:       dev,
			})
		}
	}

	for _, spec := range doc.Project.Dependencies {
		addSpec(spec, false)
	}
	for _, specs := range doc.Project.OptionalDependencies {
		for _, spec := range specs {
			addSpec(spec, true)
		}
	}
	for _, group := range doc.DependencyGroups {
		for _, item := range group {
			if spec, ok := item.(string); ok {
				addSpec(spec, true)
			}
		}
	}
	addTable(doc.Tool.Poetry.Dependencies, false)
	addTable(doc.Tool.Poetry.DevDependencies, true)
	for _, group := range doc.Tool.Poetry.Group {
		addTable(group.Dependencies, true)
	}
	return deps, nil
}

func parsePipfile(rel string, data []byte) ([]dependency, error) {
	var doc struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var deps []dependency
	for name, v := range doc.Packages {
		deps = append(deps, dependency{Name: strings.ToLower(name), Version: tomlVersion(v), Ecosystem: ecosystemPyPI, Source: rel})
	}
	for name, v := range doc.DevPackages {
		deps = append(deps, dependency{Name: strings.ToLower(name), Version: tomlVersion(v), Ecosystem: ecosystemPyPI, Source: rel, Dev: true})
	}
	return deps, nil
}

// tomlVersion reads a version from either `dep = "1.0"` or
// `dep = { version = "1.0" }`.
func tomlVersion(v any) string {
	switch val := v.(type) {
	case string:
		if val == "*" {
			return ""
		}
		return val
	case map[string]any:
		if s, ok := val["version"].(string); ok {
			return s
		}
	}
	return ""
}

func parseGoMod(rel string, data []byte) ([]dependency, error) {
	modFile, err := modfile.Parse(rel, data, nil)
	if err != nil {
		return nil, err
	}

	deps := make([]dependency, 0, len(modFile.Require))
	for _, req := range modFile.Require {
		if req.Indirect {
			continue
		}
		deps = append(deps, dependency{
			Name:      req.Mod.Path,
			Version:   req.Mod.Version,
			Ecosystem: ecosystemGo,
			Source:    rel,
		})
	}
	return deps, nil
}

func parseCargo(rel string, data []byte) ([]dependency, error) {
	var doc struct {
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
		Workspace         struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"workspace"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var deps []dependency
	add := func(m map[string]any, dev bool) {
		for name, v := range m {
			deps = append(deps, dependency{Name: name, Version: tomlVersion(v), Ecosystem: ecosystemCargo, Source: rel, Dev: dev})
		}
	}
	add(doc.Dependencies, false)
	add(doc.Workspace.Dependencies, false)
	add(doc.BuildDependencies, false)
	add(doc.DevDependencies, true)
	return deps, nil
}

type pomProject struct {
	Parent struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	} `xml:"parent"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Managed      []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

func parsePom(rel string, data []byte) ([]dependency, error) {
	var doc pomProject
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var deps []dependency
	if doc.Parent.ArtifactID != "" {
		deps = append(deps, dependency{Name: doc.Parent.ArtifactID, Version: doc.Parent.Version, Ecosystem: ecosystemMaven, Source: rel})
	}
	for _, d := range append(doc.Dependencies, doc.Managed...) {
		if d.ArtifactID == "" {
			continue
		}
		deps = append(deps, dependency{
			Name:      d.ArtifactID,
			Version:   d.Version,
			Ecosystem: ecosystemMaven,
			Source:    rel,
			Dev:       d.Scope == "test",
		})
	}
	return deps, nil
}

var (
	gradleCoordinate = regexp.MustCompile(`(\w*(?:[Ii]mplementation|[Aa]pi|[Cc]ompileOnly|[Rr]untimeOnly))\s*\(?\s*["']([\w.\-]+):([\w.\-]+)(?::([\w.\-]+))?["']`)
	gradlePlugin     = regexp.MustCompile(`id\s*\(?\s*["']([\w.\-]+)["']\s*\)?(?:\s*version\s*\(?\s*["']([\w.\-]+)["'])?`)
)

func parseGradle(rel string, data []byte) ([]dependency, error) {
	var deps []dependency
	for _, m := range gradleCoordinate.FindAllStringSubmatch(string(data), -1) {
		deps = append(deps, dependency{
			Name:      m[3],
			Version:   m[4],
			Ecosystem: ecosystemMaven,
			Source:    rel,
			Dev:       strings.HasPrefix(strings.ToLower(m[1]), "test"),
		})
	}
	for _, m := range gradlePlugin.FindAllStringSubmatch(string(data), -1) {
		deps = append(deps, dependency{Name: m[1], Version: m[2], Ecosystem: ecosystemMaven, Source: rel})
	}
	return deps, nil
}

var gemLine = regexp.MustCompile(`^\s*gem\s+["']([\w.\-]+)["'](?:\s*,\s*["']([^"']+)["'])?`)

func parseGemfile(rel string, data []byte) ([]dependency, error) {
	var deps []dependency
	inTestGroup := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "group"):
			inTestGroup = strings.Contains(trimmed, ":test") || strings.Contains(trimmed, ":development")
			continue
		case trimmed == "end":
			inTestGroup = false
			continue
		}
		if m := gemLine.FindStringSubmatch(line); m != nil {
			deps = append(deps, dependency{
				Name:      m[1],
				Version:   strings.TrimLeft(m[2], "~>= "),
				Ecosystem: ecosystemRubyGems,
				Source:    rel,
				Dev:       inTestGroup,
			})
		}
	}
	return deps, scanner.Err()
}

func parseComposer(rel string, data []byte) ([]dependency, error) {
	var doc struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var deps []dependency
	for name, version := range doc.Require {
		deps = append(deps, dependency{Name: name, Version: version, Ecosystem: ecosystemComposer, Source: rel})
	}
	for name, version := range doc.RequireDev {
		deps = append(deps, dependency{Name: name, Version: version, Ecosystem: ecosystemComposer, Source: rel, Dev: true})
	}
	return deps, nil
}

func parsePubspec(rel string, data []byte) ([]dependency, error) {
	var doc struct {
		Dependencies    map[string]any `yaml:"dependencies"`
		DevDependencies map[string]any `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var deps []dependency
	for name, v := range doc.Dependencies {
		deps = append(deps, dependency{Name: name, Version: yamlScalar(v), Ecosystem: ecosystemPub, Source: rel})
	}
	for name, v := range doc.DevDependencies {
		deps = append(deps, dependency{Name: name, Version: yamlScalar(v), Ecosystem: ecosystemPub, Source: rel, Dev: true})
	}
	return deps, nil
}
