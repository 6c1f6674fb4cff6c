package tags

import (
	"errors"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/stretchr/testify/require"
)

func TestGenerateTags_ReactScenario(t *testing.T) {
	a := &models.AnalysisResult{
		ProjectType: models.ProjectTypeWebFrontend,
		Languages: models.LanguageInfo{
			PrimaryLanguage: "javascript",
			Languages:       map[string]float64{"javascript": 1.0},
		},
		Frameworks: []models.FrameworkInfo{
			{Name: "react", Category: models.CategoryFrontend, Confidence: 0.95},
		},
		TestingInfo: models.TestingInfo{
			HasUnitTests:   true,
			TestFrameworks: []string{"jest"},
		},
	}

	got, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{
		"javascript",
		"react", "components", "jsx", "hooks",
		"frontend", "web-performance",
		"testing", "unit-testing", "jest",
	}, got)

	require.Less(t, indexOf(got, "javascript"), indexOf(got, "testing"))
}

func TestGenerateTags_EmptyProject(t *testing.T) {
	got, err := NewGenerator(nil).GenerateTags(emptyPythonProject())
	require.NoError(t, err)
	require.Equal(t, []string{"python"}, got)
}

func TestGenerateTags_NoLanguage(t *testing.T) {
	got, err := NewGenerator(nil).GenerateTags(&models.AnalysisResult{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGenerateTags_LowConfidenceFrameworkIgnored(t *testing.T) {
	a := emptyPythonProject()
	a.Frameworks = []models.FrameworkInfo{
		{Name: "django", Category: models.CategoryWebFramework, Confidence: 0.3},
	}

	got, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{"python"}, got)

	got, err = NewGenerator(nil, WithMinConfidence(0.2)).GenerateTags(a)
	require.NoError(t, err)
	require.Contains(t, got, "django")
}

func TestGenerateTags_ThresholdIsInclusive(t *testing.T) {
	a := emptyPythonProject()
	a.Frameworks = []models.FrameworkInfo{
		{Name: "flask", Category: models.CategoryWebFramework, Confidence: DefaultMinConfidence},
	}

	got, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{"python", "flask", "blueprints", "rest-api"}, got)
}

func TestGenerateTags_DemoProjects(t *testing.T) {
	g := NewGenerator(nil)

	tests := []struct {
		name     string
		analysis *models.AnalysisResult
		want     []string
	}{
		{
			name:     "react frontend",
			analysis: reactFrontendProject(),
			want: []string{
				"javascript", "typescript",
				"react", "components", "jsx", "hooks",
				"webpack", "bundling", "build-optimization",
				"jest", "testing", "mocking", "snapshot-testing",
				"frontend", "web-performance",
			},
		},
		{
			name:     "django backend",
			analysis: djangoBackendProject(),
			want: []string{
				"python",
				"django", "django-orm", "views", "migrations",
				"postgresql", "sql", "database-design",
				"pytest", "testing", "fixtures",
				"backend", "api-design",
				"unit-testing", "integration-testing",
			},
		},
		{
			name:     "go microservice",
			analysis: goMicroserviceProject(),
			want: []string{
				"go",
				"gin", "middleware", "rest-api", "routing",
				"postgresql", "sql", "database-design",
				"microservice", "api-design",
				"testing", "unit-testing", "integration-testing", "go-test",
				"security",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.GenerateTags(tt.analysis)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateTags_Deterministic(t *testing.T) {
	g := NewGenerator(nil)
	for _, a := range []*models.AnalysisResult{reactFrontendProject(), djangoBackendProject(), goMicroserviceProject(), manyFrameworksProject(10)} {
		first, err := g.GenerateTags(a)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			again, err := g.GenerateTags(a)
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	}
}

func TestGenerateTags_DedupCaseInsensitive(t *testing.T) {
	a := emptyPythonProject()
	a.Frameworks = []models.FrameworkInfo{
		{Name: "custom", Category: models.CategoryWebFramework, Confidence: 0.9, Tags: []string{"Python", "REST-API", "rest-api"}},
	}

	got, err := NewGenerator(nil, WithMaxTags(50)).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{"python", "rest-api"}, got)

	seen := map[string]bool{}
	for _, tag := range got {
		k := strings.ToLower(tag)
		require.False(t, seen[k], "duplicate tag %q", tag)
		seen[k] = true
	}
}

func TestGenerateTags_CapWithManyFrameworks(t *testing.T) {
	a := manyFrameworksProject(120)

	got, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Len(t, got, DefaultMaxTags)
	require.Equal(t, "python", got[0])
	require.Equal(t, "topic-000-a", got[1])
	require.Equal(t, "topic-006-b", got[14])

	for _, dropped := range []string{"documentation", "scripting", "security", "testing"} {
		require.NotContains(t, got, dropped)
	}
}

func TestGenerateTags_PriorityUnderTruncation(t *testing.T) {
	got, err := NewGenerator(nil, WithMaxTags(5)).GenerateTags(djangoBackendProject())
	require.NoError(t, err)
	require.Equal(t, []string{"python", "django", "django-orm", "views", "migrations"}, got)

	full, err := NewGenerator(nil, WithMaxTags(100)).GenerateTags(djangoBackendProject())
	require.NoError(t, err)
	require.Equal(t, got, full[:5])
	require.Contains(t, full, "documentation")
	require.Less(t, indexOf(full, "django"), indexOf(full, "documentation"))
}

func TestGenerateTags_AllStagesUncapped(t *testing.T) {
	got, err := NewGenerator(nil, WithMaxTags(100)).GenerateTags(djangoBackendProject())
	require.NoError(t, err)
	snaps.MatchSnapshot(t, strings.Join(got, "\n"))

	for _, want := range []string{
		"jwt", "authentication", "oauth", "secrets-management",
		"docker", "containerization", "aws", "ci-cd", "github-actions",
		"terraform", "infrastructure-as-code",
		"documentation", "test-organization", "database-migrations", "configuration",
		"test-coverage", "django-test",
	} {
		require.Contains(t, got, want)
	}
}

func TestGenerateTags_GatedStages(t *testing.T) {
	a := emptyPythonProject()
	a.TestingInfo.HasE2ETests = true
	a.TestingInfo.TestFrameworks = []string{"playwright"}
	a.SecurityInfo.HasEnvFiles = true
	a.DeploymentInfo.CloudPlatforms = []string{"aws"}

	got, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{"python"}, got)
}

func TestGenerateTags_InjectedMapping(t *testing.T) {
	mapping := NewMapping(map[string][]string{
		"react": {"react", "custom-react-topic"},
	})

	a := emptyPythonProject()
	a.Frameworks = []models.FrameworkInfo{
		{Name: "React", Category: models.CategoryFrontend, Confidence: 0.9},
		{Name: "django", Category: models.CategoryWebFramework, Confidence: 0.9},
	}

	got, err := NewGenerator(mapping).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{"python", "react", "custom-react-topic", "django"}, got)
}

func TestGenerateTags_LanguageAliases(t *testing.T) {
	a := &models.AnalysisResult{
		Languages: models.LanguageInfo{
			PrimaryLanguage: "C++",
			Languages:       map[string]float64{"C++": 0.6, "C#": 0.4},
		},
	}

	got, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Equal(t, []string{"cpp", "csharp"}, got)
}

func TestGenerateTags_MalformedInput(t *testing.T) {
	g := NewGenerator(nil)

	_, err := g.GenerateTags(nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedInput))

	a := reactFrontendProject()
	a.Frameworks[0].Confidence = 2
	_, err = g.GenerateTags(a)
	require.ErrorIs(t, err, ErrMalformedInput)

	_, err = g.Explanations([]string{"react"}, a)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestExplanations(t *testing.T) {
	g := NewGenerator(nil)
	a := reactFrontendProject()

	got, err := g.Explanations([]string{"components", "javascript", "typescript", "frontend", "made-up"}, a)
	require.NoError(t, err)

	require.Equal(t, "derived from detected framework 'react' with confidence 0.95", got["components"])
	require.Equal(t, "primary language 'javascript' (70% of files)", got["javascript"])
	require.Equal(t, "secondary language 'typescript' (20% of files)", got["typescript"])
	require.Equal(t, "project classified as web frontend", got["frontend"])
	require.Equal(t, FallbackExplanation, got["made-up"])
}

func TestExplanations_FirstMatchWins(t *testing.T) {
	g := NewGenerator(nil)

	// "testing" is produced by jest (framework stage) before the testing stage.
	got, err := g.Explanations([]string{"testing", "TESTING"}, reactFrontendProject())
	require.NoError(t, err)
	require.Equal(t, "derived from detected framework 'jest' with confidence 0.80", got["testing"])
	require.Equal(t, got["testing"], got["TESTING"])
}

func TestExplanations_CoverGeneratedTags(t *testing.T) {
	for _, a := range []*models.AnalysisResult{reactFrontendProject(), djangoBackendProject(), goMicroserviceProject(), emptyPythonProject(), manyFrameworksProject(30)} {
		g := NewGenerator(nil, WithMaxTags(100))
		tags, err := g.GenerateTags(a)
		require.NoError(t, err)

		for _, tag := range tags {
			got, err := g.Explanations([]string{tag}, a)
			require.NoError(t, err)
			require.NotEmpty(t, got[tag])
			require.NotEqual(t, FallbackExplanation, got[tag], "tag %q has no rule explanation", tag)
		}
	}
}

func TestDerivations_CarryStageAndRule(t *testing.T) {
	derivations, err := NewGenerator(nil).Derivations(goMicroserviceProject())
	require.NoError(t, err)
	require.NotEmpty(t, derivations)

	require.Equal(t, StageLanguage, derivations[0].Stage)
	require.Equal(t, "primary-language", derivations[0].Rule)

	last := StageLanguage
	for _, d := range derivations {
		require.GreaterOrEqual(t, int(d.Stage), int(last), "stages must be evaluated in order")
		last = d.Stage
	}
	require.Equal(t, StageDirectory, last)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
