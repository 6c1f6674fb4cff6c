package analyzer

import (
	"github.com/jakoblorz/go-airules/internal/models"
)

// apiFrameworks are server frameworks typically used without server-rendered pages.
var apiFrameworks = map[string]struct{}{
	"fastapi":   {},
	"fastify":   {},
	"nestjs":    {},
	"gin":       {},
	"echo":      {},
	"fiber":     {},
	"chi":       {},
	"actix-web": {},
	"axum":      {},
	"rocket":    {},
	"graphql":   {},
	"grpc":      {},
}

// inferProjectType classifies the project. The first matching rule wins.
func inferProjectType(s *scan, result *models.AnalysisResult) models.ProjectType {
	has := func(names ...string) bool {
		for _, name := range names {
			if _, ok := result.Framework(name); ok {
				return true
			}
		}
		return false
	}
	frontend := len(result.FrameworksByCategory(models.CategoryFrontend)) > 0
	var backend, apiOnly bool
	for _, fw := range result.FrameworksByCategory(models.CategoryWebFramework) {
		backend = true
		if _, ok := apiFrameworks[fw.Name]; ok {
			apiOnly = true
		}
	}
	if has("django", "rails", "laravel", "spring-boot", "flask", "express") {
		apiOnly = false
	}

	primary := result.Languages.PrimaryLanguage
	_, supportOnly := supportLanguages[primary]

	switch {
	case has("react-native", "flutter"):
		return models.ProjectTypeMobileApp
	case has("tensorflow", "pytorch", "scikit-learn"):
		return models.ProjectTypeMachineLearning
	case has("pandas", "jupyter", "numpy", "matplotlib") && !backend && !frontend:
		return models.ProjectTypeDataScience
	case (primary == "" || supportOnly) && len(result.DeploymentInfo.InfrastructureAsCode) > 0:
		return models.ProjectTypeInfrastructure
	case has("nextjs", "nuxt") || (frontend && backend):
		return models.ProjectTypeFullstack
	case backend && hasContainerTool(result, "kubernetes"):
		return models.ProjectTypeMicroservice
	case backend && apiOnly && !result.DirectoryInfo.HasStaticDir:
		return models.ProjectTypeAPI
	case backend:
		return models.ProjectTypeWebBackend
	case frontend:
		return models.ProjectTypeWebFrontend
	case len(result.FrameworksByCategory(models.CategoryCLI)) > 0 || s.any("cmd/*/main.go"):
		return models.ProjectTypeCLITool
	case isLibrary(s, primary):
		return models.ProjectTypeLibrary
	default:
		return models.ProjectTypeUnknown
	}
}

func hasContainerTool(result *models.AnalysisResult, tool string) bool {
	for _, t := range result.DeploymentInfo.ContainerTools {
		if t == tool {
			return true
		}
	}
	return false
}

// isLibrary recognises packages that are published rather than run.
func isLibrary(s *scan, primary string) bool {
	switch primary {
	case "go":
		return s.has("go.mod") && !s.any("main.go", "**/main.go")
	case "rust":
		return s.has("src/lib.rs") && !s.has("src/main.rs")
	case "python":
		return s.any("setup.py", "setup.cfg") || (s.has("pyproject.toml") && !s.any("main.py", "app.py", "manage.py"))
	case "javascript", "typescript":
		if !s.has("package.json") {
			return false
		}
		data, err := s.read("package.json")
		if err != nil {
			return false
		}
		pkg, err := readPackageJSON(data)
		if err != nil {
			return false
		}
		return !pkg.Private && (pkg.Main != "" || len(pkg.Exports) > 0)
	default:
		return false
	}
}
