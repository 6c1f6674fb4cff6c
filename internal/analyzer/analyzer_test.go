package analyzer

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/tags"
	"github.com/stretchr/testify/require"
)

func frameworkNames(frameworks []models.FrameworkInfo) []string {
	names := make([]string, 0, len(frameworks))
	for _, fw := range frameworks {
		names = append(names, fw.Name)
	}
	return names
}

func TestAnalyze_ReactFrontend(t *testing.T) {
	fs := NewProjectBuilder("/projects/web").
		AddPackageJSON("web",
			map[string]string{"react": "^18.2.0", "react-dom": "^18.2.0"},
			map[string]string{"jest": "^29.7.0", "webpack": "^5.89.0", "eslint": "^8.0.0"},
		).
		AddFile(".gitignore", "*.log\n").
		AddFiles(
			"webpack.config.js",
			"jest.config.js",
			"src/App.jsx",
			"src/index.js",
			"src/components/Button.jsx",
			"src/components/Button.test.jsx",
			"src/styles/app.css",
			"public/index.html",
			".github/workflows/ci.yml",
			"node_modules/react/index.js",
			"node_modules/react/cjs/react.development.js",
			"debug.log",
		).
		Build()

	result, err := New(fs).Analyze("/projects/web")
	require.NoError(t, err)

	require.Equal(t, "/projects/web", result.ProjectPath)
	require.Equal(t, models.ProjectTypeWebFrontend, result.ProjectType)

	require.Equal(t, "javascript", result.Languages.PrimaryLanguage)
	require.Equal(t, 9, result.Languages.TotalFiles)
	require.InDelta(t, 6.0/9.0, result.Languages.Languages["javascript"], 1e-9)
	require.Equal(t, []string{".css", ".html", ".js", ".jsx", ".yml"}, result.Languages.FileExtensions)

	require.Equal(t, []string{"jest", "react", "webpack", "eslint"}, frameworkNames(result.Frameworks))

	react, ok := result.Framework("react")
	require.True(t, ok)
	require.Equal(t, models.CategoryFrontend, react.Category)
	require.Equal(t, 0.9, react.Confidence)
	require.Equal(t, "18.2.0", react.Version)
	require.Equal(t, "react", react.PackageName)
	require.Contains(t, react.Indicators, "package.json")

	jest, _ := result.Framework("jest")
	require.Equal(t, []string{"jest.config.js"}, jest.ConfigFiles)

	require.True(t, result.DirectoryInfo.HasSrcDir)
	require.True(t, result.DirectoryInfo.HasStaticDir)
	require.Equal(t, []string{"src"}, result.DirectoryInfo.SourceDirectories)

	require.True(t, result.TestingInfo.HasUnitTests)
	require.False(t, result.TestingInfo.HasIntegrationTests)
	require.Equal(t, []string{"jest"}, result.TestingInfo.TestFrameworks)
	require.Equal(t, []string{"src/components"}, result.TestingInfo.TestDirectories)

	require.False(t, result.DeploymentInfo.Containerized)
	require.Equal(t, []string{"github-actions"}, result.DeploymentInfo.CICDTools)
}

func TestAnalyze_DjangoBackend(t *testing.T) {
	fs := NewProjectBuilder("/projects/api").
		AddRequirements(
			"Django==4.2.7",
			"psycopg2-binary==2.9.9  # database driver",
			"djangorestframework-simplejwt>=5.3",
			"boto3",
			"-r requirements-dev.txt",
		).
		AddFile("requirements-dev.txt", "pytest==7.4.0\npytest-django\ncoverage\n").
		AddFile(".gitignore", ".env\n").
		AddFile(".env", "SECRET_KEY=dev\n").
		AddFile("docker-compose.yml", `services:
  web:
    build: .
  db:
    image: postgres:16
  cache:
    image: docker.io/library/redis:7-alpine
`).
		AddFile("terraform/main.tf", "provider \"aws\" {\n  region = \"eu-central-1\"\n}\n").
		AddFiles(
			"manage.py",
			"myapp/settings.py",
			"myapp/urls.py",
			"myapp/models.py",
			"myapp/migrations/0001_initial.py",
			"myapp/tests/test_models.py",
			"tests/integration/test_api.py",
			"docs/index.md",
			"Dockerfile",
			".github/workflows/ci.yml",
		).
		Build()

	result, err := New(fs).Analyze("/projects/api")
	require.NoError(t, err)

	require.Equal(t, models.ProjectTypeWebBackend, result.ProjectType)
	require.Equal(t, "python", result.Languages.PrimaryLanguage)
	require.Equal(t, 10, result.Languages.TotalFiles)
	require.InDelta(t, 0.7, result.Languages.Languages["python"], 1e-9)

	require.Equal(t, []string{"django", "postgresql", "pytest", "redis"}, frameworkNames(result.Frameworks))

	django, _ := result.Framework("django")
	require.Equal(t, "4.2.7", django.Version)
	require.Equal(t, 0.9, django.Confidence)

	postgres, _ := result.Framework("postgresql")
	require.Equal(t, 0.9, postgres.Confidence)
	require.Equal(t, []string{"docker-compose.yml"}, postgres.ConfigFiles)

	redis, _ := result.Framework("redis")
	require.Equal(t, 0.5, redis.Confidence)

	require.True(t, result.DirectoryInfo.HasDocsDir)
	require.True(t, result.DirectoryInfo.HasMigrationsDir)
	require.True(t, result.DirectoryInfo.HasTestsDir)

	require.True(t, result.TestingInfo.HasUnitTests)
	require.True(t, result.TestingInfo.HasIntegrationTests)
	require.Equal(t, []string{"django-test", "pytest"}, result.TestingInfo.TestFrameworks)
	require.Equal(t, []string{"coverage.py"}, result.TestingInfo.TestCoverageTools)

	require.True(t, result.SecurityInfo.HasEnvFiles)
	require.False(t, result.SecurityInfo.HasSecurityTools)
	require.Equal(t, []string{"jwt"}, result.SecurityInfo.AuthenticationMethods)

	require.True(t, result.DeploymentInfo.Containerized)
	require.Equal(t, []string{"docker", "docker-compose"}, result.DeploymentInfo.ContainerTools)
	require.Equal(t, []string{"github-actions"}, result.DeploymentInfo.CICDTools)
	require.Equal(t, []string{"terraform"}, result.DeploymentInfo.InfrastructureAsCode)
	require.Equal(t, []string{"aws"}, result.DeploymentInfo.CloudPlatforms)
}

func TestAnalyze_GoMicroservice(t *testing.T) {
	fs := NewProjectBuilder("/projects/user-service").
		AddGoMod("example.com/user-service",
			"github.com/gin-gonic/gin v1.9.1",
			"github.com/jackc/pgx/v5 v5.5.0",
			"github.com/stretchr/testify v1.9.0",
			"github.com/golang-jwt/jwt/v5 v5.2.0",
			"golang.org/x/sys v0.15.0 // indirect",
		).
		AddFiles(
			"cmd/server/main.go",
			"internal/handler/user.go",
			"internal/handler/user_test.go",
			"internal/store/store_integration_test.go",
			"k8s/deployment.yaml",
			"Dockerfile",
			".golangci.yml",
		).
		Build()

	result, err := New(fs).Analyze("/projects/user-service")
	require.NoError(t, err)

	require.Equal(t, models.ProjectTypeMicroservice, result.ProjectType)
	require.Equal(t, "go", result.Languages.PrimaryLanguage)
	require.Equal(t, []string{"gin", "postgresql", "testify", "golangci-lint"}, frameworkNames(result.Frameworks))

	gin, _ := result.Framework("gin")
	require.Equal(t, "1.9.1", gin.Version)
	require.Equal(t, "github.com/gin-gonic/gin", gin.PackageName)

	require.True(t, result.TestingInfo.HasUnitTests)
	require.True(t, result.TestingInfo.HasIntegrationTests)
	require.Equal(t, []string{"go-test", "testify"}, result.TestingInfo.TestFrameworks)

	require.Equal(t, []string{"docker", "kubernetes"}, result.DeploymentInfo.ContainerTools)
	require.Equal(t, []string{"jwt"}, result.SecurityInfo.AuthenticationMethods)
	require.Equal(t, []string{"cmd", "internal"}, result.DirectoryInfo.SourceDirectories)
}

func TestAnalyze_ProjectTypes(t *testing.T) {
	tests := []struct {
		name  string
		build func(pb *ProjectBuilder)
		want  models.ProjectType
	}{
		{
			name: "cli tool",
			build: func(pb *ProjectBuilder) {
				pb.AddGoMod("example.com/tool", "github.com/spf13/cobra v1.8.0").AddFiles("main.go", "cmd/root.go")
			},
			want: models.ProjectTypeCLITool,
		},
		{
			name: "go library",
			build: func(pb *ProjectBuilder) {
				pb.AddGoMod("example.com/lib").AddFiles("lib.go", "lib_test.go")
			},
			want: models.ProjectTypeLibrary,
		},
		{
			name: "python library",
			build: func(pb *ProjectBuilder) {
				pb.AddFile("pyproject.toml", "[project]\nname = \"lib\"\ndependencies = [\"requests>=2\", \"pydantic==2.5.0\"]\n").
					AddFiles("src/lib/__init__.py", "src/lib/core.py")
			},
			want: models.ProjectTypeLibrary,
		},
		{
			name: "data science",
			build: func(pb *ProjectBuilder) {
				pb.AddRequirements("pandas==2.1.0", "numpy", "jupyter").AddFiles("analysis.ipynb", "etl.py")
			},
			want: models.ProjectTypeDataScience,
		},
		{
			name: "machine learning",
			build: func(pb *ProjectBuilder) {
				pb.AddRequirements("pandas", "scikit-learn==1.3.2").AddFiles("train.py")
			},
			want: models.ProjectTypeMachineLearning,
		},
		{
			name: "fastapi service",
			build: func(pb *ProjectBuilder) {
				pb.AddRequirements("fastapi", "uvicorn[standard]==0.29.0").AddFiles("app/main.py")
			},
			want: models.ProjectTypeAPI,
		},
		{
			name: "fullstack nextjs",
			build: func(pb *ProjectBuilder) {
				pb.AddPackageJSON("site", map[string]string{"next": "14.0.0", "react": "18.2.0"}, nil).AddFiles("app/page.tsx", "next.config.js")
			},
			want: models.ProjectTypeFullstack,
		},
		{
			name: "infrastructure",
			build: func(pb *ProjectBuilder) {
				pb.AddFiles("main.tf", "variables.tf", "modules/vpc/main.tf")
			},
			want: models.ProjectTypeInfrastructure,
		},
		{
			name: "mobile",
			build: func(pb *ProjectBuilder) {
				pb.AddPackageJSON("app", map[string]string{"react-native": "0.73.0", "react": "18.2.0"}, nil).AddFiles("App.tsx")
			},
			want: models.ProjectTypeMobileApp,
		},
		{
			name: "empty",
			build: func(pb *ProjectBuilder) {
				pb.AddFiles("README.md")
			},
			want: models.ProjectTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProjectBuilder("/p")
			tt.build(pb)

			result, err := New(pb.Build()).Analyze("/p")
			require.NoError(t, err)
			require.Equal(t, tt.want, result.ProjectType)
		})
	}
}

func TestAnalyze_EmptyProject(t *testing.T) {
	fs := NewProjectBuilder("/empty").Build()

	result, err := New(fs).Analyze("/empty")
	require.NoError(t, err)
	require.Equal(t, models.ProjectTypeUnknown, result.ProjectType)
	require.Equal(t, "", result.Languages.PrimaryLanguage)
	require.Zero(t, result.Languages.TotalFiles)
	require.Empty(t, result.Frameworks)
	require.True(t, result.IsEmpty())
}

func TestAnalyze_RelativeRootUsesWorkingDirectory(t *testing.T) {
	fs := NewProjectBuilder("/work/app").AddFiles("main.py").Build()

	result, err := New(fs).Analyze(".")
	require.NoError(t, err)
	require.Equal(t, "/work/app", result.ProjectPath)
	require.Equal(t, "python", result.Languages.PrimaryLanguage)
}

func TestAnalyze_InvalidRoot(t *testing.T) {
	fs := NewProjectBuilder("/p").AddFiles("main.go").Build()

	_, err := New(fs).Analyze("/p/main.go")
	require.ErrorIs(t, err, ErrNotADirectory)

	_, err = New(fs).Analyze("/missing")
	require.Error(t, err)
}

func TestAnalyze_MalformedManifestIsSkipped(t *testing.T) {
	fs := NewProjectBuilder("/p").
		AddFile("package.json", "{not json").
		AddFile("web/package.json", `{"dependencies": {"vue": "^3.4.0"}}`).
		AddFiles("web/src/App.vue", "web/src/main.js").
		Build()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := New(fs, WithLogger(logger)).Analyze("/p")
	require.NoError(t, err)
	require.Equal(t, []string{"vue"}, frameworkNames(result.Frameworks))
	require.Equal(t, "3.4.0", result.Frameworks[0].Version)
	require.Contains(t, logs.String(), "skipping malformed manifest")
	require.Contains(t, logs.String(), "path=package.json")
}

func TestAnalyze_MaxFiles(t *testing.T) {
	fs := NewProjectBuilder("/p").AddFiles("a.py", "b.py", "c.py", "d.go").Build()

	result, err := New(fs, WithMaxFiles(2)).Analyze("/p")
	require.NoError(t, err)
	require.Equal(t, 2, result.Languages.TotalFiles)
}

func TestAnalyze_SkipDirs(t *testing.T) {
	fs := NewProjectBuilder("/p").AddFiles("main.py", "generated/a.go", "generated/b.go").Build()

	result, err := New(fs, WithSkipDirs("generated")).Analyze("/p")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"python": 1}, result.Languages.Languages)
}

func TestAnalyze_Deterministic(t *testing.T) {
	build := func() *ProjectBuilder {
		return NewProjectBuilder("/p").
			AddPackageJSON("x",
				map[string]string{"react": "18", "redux": "5", "tailwindcss": "3", "express": "4", "pg": "8"},
				map[string]string{"vite": "5", "vitest": "1", "prettier": "3"},
			).
			AddFiles("src/a.tsx", "src/b.ts", "server/index.js")
	}

	first, err := New(build().Build()).Analyze("/p")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := New(build().Build()).Analyze("/p")
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestDetectLanguages_EveryLanguageIsAKnownTag(t *testing.T) {
	v := tags.NewValidator(nil)
	for ext, lang := range extensionLanguages {
		report := v.Validate([]string{tags.LanguageTag(lang)})
		require.Empty(t, report.Unknown(), "language %s from %s", lang, ext)
	}
}
