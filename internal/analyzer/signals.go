package analyzer

import (
	"path"
	"sort"
	"strings"

	"github.com/jakoblorz/go-airules/internal/models"
)

func detectDirectories(s *scan) models.DirectoryInfo {
	info := models.DirectoryInfo{
		HasSrcDir:        s.hasTopDir("src", "lib", "app"),
		HasTestsDir:      s.hasDirNamed("tests", "test", "__tests__", "spec", "specs"),
		HasDocsDir:       s.hasTopDir("docs", "doc", "documentation"),
		HasConfigDir:     s.hasTopDir("config", "configs", "conf", "settings"),
		HasAssetsDir:     s.hasDirNamed("assets"),
		HasStaticDir:     s.hasDirNamed("static", "public"),
		HasMigrationsDir: s.hasDirNamed("migrations", "migrate", "alembic"),
		HasScriptsDir:    s.hasTopDir("scripts", "script", "tools"),
	}

	sourceDirs := make(map[string]struct{})
	for _, f := range s.files {
		top, _, nested := strings.Cut(f, "/")
		if !nested {
			continue
		}
		if _, ok := extensionLanguages[strings.ToLower(path.Ext(f))]; !ok {
			continue
		}
		if _, support := supportLanguages[extensionLanguages[strings.ToLower(path.Ext(f))]]; support {
			continue
		}
		sourceDirs[top] = struct{}{}
	}
	info.SourceDirectories = sortedKeys(sourceDirs)
	return info
}

var testFilePatterns = []string{
	"**/*_test.go",
	"**/test_*.py",
	"**/*_test.py",
	"**/*.{test,spec}.{js,jsx,ts,tsx,mjs,cjs}",
	"**/*.cy.{js,ts}",
	"**/*Test.{java,kt}",
	"**/*Tests.{java,kt,cs}",
	"**/*_spec.rb",
	"**/*_test.rb",
	"**/tests/**/*.rs",
	"**/*_test.dart",
}

// coverageSignals maps a dependency name or file to the coverage tool it implies.
var coverageSignals = map[string]string{
	"coverage":            "coverage.py",
	"pytest-cov":          "coverage.py",
	"nyc":                 "nyc",
	"c8":                  "c8",
	"@vitest/coverage-v8": "vitest-coverage",
	"jacoco":              "jacoco",
	"simplecov":           "simplecov",
	"cargo-tarpaulin":     "tarpaulin",
}

var coverageFiles = map[string]string{
	".coveragerc":  "coverage.py",
	"codecov.yml":  "codecov",
	".codecov.yml": "codecov",
	".nycrc":       "nyc",
	".nycrc.json":  "nyc",
}

func detectTesting(s *scan, deps []dependency, frameworks []models.FrameworkInfo) models.TestingInfo {
	var info models.TestingInfo
	testDirs := make(map[string]struct{})

	for _, f := range s.match(testFilePatterns...) {
		lower := strings.ToLower(f)
		switch {
		case strings.Contains(lower, "e2e") || strings.Contains(lower, "cypress/") || strings.Contains(lower, ".cy.") || strings.Contains(lower, "playwright"):
			info.HasE2ETests = true
		case strings.Contains(lower, "integration"):
			info.HasIntegrationTests = true
		default:
			info.HasUnitTests = true
		}
		testDirs[path.Dir(f)] = struct{}{}
	}
	info.TestDirectories = sortedKeys(testDirs)

	var testFrameworks []string
	for _, fw := range frameworks {
		if fw.Category == models.CategoryTesting {
			testFrameworks = append(testFrameworks, fw.Name)
			if fw.Name == "cypress" || fw.Name == "playwright" {
				info.HasE2ETests = true
			}
		}
	}
	if s.any("**/*_test.go") {
		testFrameworks = append(testFrameworks, "go-test")
	}
	if s.any("manage.py") && s.any("**/tests.py", "**/tests/**/*.py") {
		testFrameworks = append(testFrameworks, "django-test")
		info.HasUnitTests = true
	}
	sort.Strings(testFrameworks)
	info.TestFrameworks = testFrameworks

	coverage := make(map[string]struct{})
	for _, dep := range deps {
		if tool, ok := coverageSignals[dep.Name]; ok {
			coverage[tool] = struct{}{}
		}
	}
	for file, tool := range coverageFiles {
		if s.has(file) {
			coverage[tool] = struct{}{}
		}
	}
	info.TestCoverageTools = sortedKeys(coverage)

	return info
}

// securityFiles maps a file pattern to the security tool it configures.
var securityFiles = map[string]string{
	".snyk":                         "snyk",
	".github/dependabot.{yml,yaml}": "dependabot",
	".bandit":                       "bandit",
	".gitleaks.toml":                "gitleaks",
	".trivyignore":                  "trivy",
	".semgrep.{yml,yaml}":           "semgrep",
	".github/workflows/codeql*.yml": "codeql",
	".secrets.baseline":             "detect-secrets",
	"SECURITY.md":                   "security-policy",
}

var securityPackages = map[string]string{
	"bandit":                       "bandit",
	"safety":                       "safety",
	"pip-audit":                    "pip-audit",
	"eslint-plugin-security":       "eslint-plugin-security",
	"helmet":                       "helmet",
	"github.com/securego/gosec/v2": "gosec",
	"cargo-audit":                  "cargo-audit",
	"brakeman":                     "brakeman",
}

// authPackages maps a dependency to the authentication method it implements.
var authPackages = map[string]string{
	"jsonwebtoken":                      "jwt",
	"jose":                              "jwt",
	"passport-jwt":                      "jwt",
	"@nestjs/jwt":                       "jwt",
	"pyjwt":                             "jwt",
	"python-jose":                       "jwt",
	"djangorestframework-simplejwt":     "jwt",
	"flask-jwt-extended":                "jwt",
	"github.com/golang-jwt/jwt/v5":      "jwt",
	"github.com/golang-jwt/jwt/v4":      "jwt",
	"passport-oauth2":                   "oauth",
	"next-auth":                         "oauth",
	"@auth/core":                        "oauth",
	"authlib":                           "oauth",
	"oauthlib":                          "oauth",
	"django-allauth":                    "oauth",
	"golang.org/x/oauth2":               "oauth",
	"oauth2":                            "oauth",
	"omniauth":                          "oauth",
	"express-session":                   "session",
	"flask-login":                       "session",
	"github.com/gorilla/sessions":       "session",
	"devise":                            "session",
	"passport-headerapikey":             "api-key",
	"python3-saml":                      "saml",
	"passport-saml":                     "saml",
	"spring-boot-starter-security":      "session",
	"spring-boot-starter-oauth2-client": "oauth",
}

func detectSecurity(s *scan, deps []dependency, envFiles bool) models.SecurityInfo {
	tools := make(map[string]struct{})
	for pattern, tool := range securityFiles {
		if s.any(pattern) {
			tools[tool] = struct{}{}
		}
	}
	if s.any(".pre-commit-config.{yml,yaml}") {
		if data, err := s.read(firstMatch(s, ".pre-commit-config.{yml,yaml}")); err == nil {
			for _, hook := range []string{"detect-secrets", "gitleaks", "bandit"} {
				if strings.Contains(string(data), hook) {
					tools[hook] = struct{}{}
				}
			}
		}
	}

	methods := make(map[string]struct{})
	for _, dep := range deps {
		if tool, ok := securityPackages[dep.Name]; ok {
			tools[tool] = struct{}{}
		}
		if method, ok := authPackages[strings.ToLower(dep.Name)]; ok {
			methods[method] = struct{}{}
		}
	}

	return models.SecurityInfo{
		HasSecurityTools:      len(tools) > 0,
		HasEnvFiles:           envFiles,
		SecurityTools:         sortedKeys(tools),
		AuthenticationMethods: sortedKeys(methods),
	}
}

func firstMatch(s *scan, pattern string) string {
	if matches := s.match(pattern); len(matches) > 0 {
		return matches[0]
	}
	return ""
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
