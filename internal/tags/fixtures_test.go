package tags

import (
	"fmt"

	"github.com/jakoblorz/go-airules/internal/models"
)

func reactFrontendProject() *models.AnalysisResult {
	return &models.AnalysisResult{
		ProjectPath: "/projects/react-app",
		ProjectType: models.ProjectTypeWebFrontend,
		Languages: models.LanguageInfo{
			PrimaryLanguage: "javascript",
			Languages:       map[string]float64{"javascript": 0.7, "typescript": 0.2, "css": 0.1},
			FileExtensions:  []string{".css", ".js", ".jsx", ".scss", ".ts", ".tsx"},
			TotalFiles:      120,
		},
		Frameworks: []models.FrameworkInfo{
			{
				Name:        "react",
				Category:    models.CategoryFrontend,
				Version:     "18.2.0",
				Confidence:  0.95,
				PackageName: "react",
				ConfigFiles: []string{"package.json"},
				Indicators:  []string{"src/App.jsx", "src/components/"},
				Tags:        []string{"components", "jsx"},
			},
			{Name: "webpack", Category: models.CategoryBundler, Confidence: 0.85, ConfigFiles: []string{"webpack.config.js"}},
			{Name: "jest", Category: models.CategoryTesting, Confidence: 0.8, ConfigFiles: []string{"jest.config.js"}},
		},
		DirectoryInfo: models.DirectoryInfo{
			HasSrcDir:    true,
			HasTestsDir:  true,
			HasConfigDir: true,
			HasAssetsDir: true,
			HasStaticDir: true,
		},
		TestingInfo: models.TestingInfo{
			HasUnitTests:    true,
			TestFrameworks:  []string{"jest", "react-testing-library"},
			TestDirectories: []string{"src/__tests__", "src/components/__tests__"},
		},
		DeploymentInfo: models.DeploymentInfo{
			CICDTools: []string{"github-actions"},
		},
	}
}

func djangoBackendProject() *models.AnalysisResult {
	return &models.AnalysisResult{
		ProjectPath: "/projects/django-api",
		ProjectType: models.ProjectTypeWebBackend,
		Languages: models.LanguageInfo{
			PrimaryLanguage: "python",
			Languages:       map[string]float64{"python": 0.9, "sql": 0.1},
			FileExtensions:  []string{".py", ".sql"},
			TotalFiles:      80,
		},
		Frameworks: []models.FrameworkInfo{
			{Name: "django", Category: models.CategoryWebFramework, Version: "4.2.0", Confidence: 0.95, ConfigFiles: []string{"manage.py", "settings.py"}},
			{Name: "postgresql", Category: models.CategoryDatabase, Confidence: 0.9, ConfigFiles: []string{"requirements.txt"}},
			{Name: "pytest", Category: models.CategoryTesting, Confidence: 0.8},
		},
		DirectoryInfo: models.DirectoryInfo{
			HasTestsDir:      true,
			HasDocsDir:       true,
			HasMigrationsDir: true,
			HasConfigDir:     true,
		},
		TestingInfo: models.TestingInfo{
			HasUnitTests:        true,
			HasIntegrationTests: true,
			TestFrameworks:      []string{"pytest", "django-test"},
			TestCoverageTools:   []string{"coverage.py"},
		},
		SecurityInfo: models.SecurityInfo{
			HasSecurityTools:      true,
			HasEnvFiles:           true,
			AuthenticationMethods: []string{"jwt", "oauth"},
		},
		DeploymentInfo: models.DeploymentInfo{
			Containerized:        true,
			ContainerTools:       []string{"docker"},
			CloudPlatforms:       []string{"aws"},
			CICDTools:            []string{"github-actions"},
			InfrastructureAsCode: []string{"terraform"},
		},
	}
}

func goMicroserviceProject() *models.AnalysisResult {
	return &models.AnalysisResult{
		ProjectPath: "/projects/user-service",
		ProjectType: models.ProjectTypeMicroservice,
		Languages: models.LanguageInfo{
			PrimaryLanguage: "go",
			Languages:       map[string]float64{"go": 0.95, "yaml": 0.05},
			FileExtensions:  []string{".go", ".yaml", ".yml"},
			TotalFiles:      45,
		},
		Frameworks: []models.FrameworkInfo{
			{Name: "gin", Category: models.CategoryWebFramework, Confidence: 0.9},
			{Name: "postgresql", Category: models.CategoryDatabase, Confidence: 0.8},
		},
		DirectoryInfo: models.DirectoryInfo{HasSrcDir: true, HasTestsDir: true, HasConfigDir: true},
		TestingInfo: models.TestingInfo{
			HasUnitTests:        true,
			HasIntegrationTests: true,
			TestFrameworks:      []string{"go-test"},
		},
		SecurityInfo: models.SecurityInfo{
			HasSecurityTools:      true,
			HasEnvFiles:           true,
			AuthenticationMethods: []string{"jwt"},
		},
		DeploymentInfo: models.DeploymentInfo{
			Containerized:        true,
			ContainerTools:       []string{"docker", "kubernetes"},
			CloudPlatforms:       []string{"gcp"},
			CICDTools:            []string{"github-actions"},
			InfrastructureAsCode: []string{"terraform"},
		},
	}
}

func emptyPythonProject() *models.AnalysisResult {
	return &models.AnalysisResult{
		ProjectPath: "/projects/empty",
		ProjectType: models.ProjectTypeUnknown,
		Languages: models.LanguageInfo{
			PrimaryLanguage: "python",
			Languages:       map[string]float64{"python": 1.0},
		},
	}
}

// manyFrameworksProject returns an analysis with n high-confidence frameworks
// and every other signal enabled.
func manyFrameworksProject(n int) *models.AnalysisResult {
	a := djangoBackendProject()
	a.Frameworks = nil
	for i := 0; i < n; i++ {
		a.Frameworks = append(a.Frameworks, models.FrameworkInfo{
			Name:       fmt.Sprintf("framework-%03d", i),
			Category:   models.CategoryWebFramework,
			Confidence: 0.9,
			Tags:       []string{fmt.Sprintf("topic-%03d-a", i), fmt.Sprintf("topic-%03d-b", i)},
		})
	}
	a.DirectoryInfo.HasDocsDir = true
	a.DirectoryInfo.HasScriptsDir = true
	return a
}
