package tags

import (
	"testing"

	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/stretchr/testify/require"
)

func TestValidate_KnownAndUnknown(t *testing.T) {
	v := NewValidator(nil)

	report := v.Validate([]string{"react", "totally-made-up-tag"})
	require.Len(t, report.Tags, 2)

	require.Equal(t, TagReport{Tag: "react", Known: true, WellFormed: true}, report.Tags[0])
	require.Equal(t, TagReport{Tag: "totally-made-up-tag", Known: false, WellFormed: true}, report.Tags[1])

	require.Equal(t, []string{"totally-made-up-tag"}, report.Unknown())
	require.Empty(t, report.Malformed())
	require.True(t, report.AllWellFormed())
	require.Empty(t, report.Suggestions())
}

func TestValidate_Suggestions(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		tag        string
		known      bool
		wellFormed bool
		suggestion string
	}{
		{tag: "React", known: false, wellFormed: false, suggestion: "react"},
		{tag: " docker ", known: false, wellFormed: false, suggestion: "docker"},
		{tag: "coding  style", known: false, wellFormed: false, suggestion: "coding style"},
		{tag: "pytset", known: false, wellFormed: true, suggestion: "pytest"},
		{tag: "Unit_Testing", known: false, wellFormed: false, suggestion: "unit-testing"},
		{tag: "coding style", known: true, wellFormed: true},
		{tag: "best-practices", known: true, wellFormed: true},
		{tag: "!!!", known: false, wellFormed: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			report := v.Validate([]string{tt.tag})
			require.Len(t, report.Tags, 1)

			got := report.Tags[0]
			require.Equal(t, tt.tag, got.Tag)
			require.Equal(t, tt.known, got.Known)
			require.Equal(t, tt.wellFormed, got.WellFormed)
			require.Equal(t, tt.suggestion, got.Suggestion)
		})
	}
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	input := []string{"React", "pytset", "  Docker", "made-up"}
	snapshot := append([]string(nil), input...)

	report := NewValidator(nil).Validate(input)
	require.Equal(t, snapshot, input)

	tagsInReport := make([]string, 0, len(report.Tags))
	for _, tr := range report.Tags {
		tagsInReport = append(tagsInReport, tr.Tag)
	}
	require.Equal(t, snapshot, tagsInReport)
	require.False(t, report.AllWellFormed())
	require.Equal(t, []string{"React", "  Docker"}, report.Malformed())
}

func TestValidate_Empty(t *testing.T) {
	report := NewValidator(nil).Validate(nil)
	require.Empty(t, report.Tags)
	require.True(t, report.AllWellFormed())
	require.Empty(t, report.Unknown())
}

func TestValidate_GeneratedTagsAreWellFormed(t *testing.T) {
	g := NewGenerator(nil, WithMaxTags(100))
	v := NewValidator(nil)

	for _, a := range []*models.AnalysisResult{reactFrontendProject(), djangoBackendProject(), goMicroserviceProject()} {
		tags, err := g.GenerateTags(a)
		require.NoError(t, err)

		report := v.Validate(tags)
		require.True(t, report.AllWellFormed(), "%s: malformed %v", a.ProjectPath, report.Malformed())
	}
}

func TestNewValidator_WithCommonTags(t *testing.T) {
	v := NewValidator(nil)
	require.False(t, v.IsKnown("htmx-patterns"))

	v = NewValidator(nil, WithCommonTags("HTMX Patterns", "htmx-patterns", ""))
	require.True(t, v.IsKnown("htmx-patterns"))
	require.True(t, v.IsKnown("htmx patterns"))
}

func TestNewValidator_CustomMapping(t *testing.T) {
	v := NewValidator(NewMapping(map[string][]string{"htmx": {"htmx", "hypermedia"}}))

	require.True(t, v.IsKnown("htmx"))
	require.True(t, v.IsKnown("hypermedia"))
	require.True(t, v.IsKnown("testing"), "allowlist is always included")
	require.False(t, v.IsKnown("react"), "default mapping is replaced")
}

func TestValidate_DerivedLanguageTagsAreKnown(t *testing.T) {
	a := &models.AnalysisResult{
		ProjectType: models.ProjectTypeUnknown,
		Languages: models.LanguageInfo{
			PrimaryLanguage: "python",
			Languages:       map[string]float64{"python": 0.4, "yaml": 0.2, "hcl": 0.2, "powershell": 0.2},
			TotalFiles:      10,
		},
	}

	derived, err := NewGenerator(nil).GenerateTags(a)
	require.NoError(t, err)
	require.Subset(t, derived, []string{"python", "yaml", "hcl", "powershell"})

	report := NewValidator(nil).Validate(derived)
	require.Empty(t, report.Unknown())
}
