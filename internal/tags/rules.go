package tags

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-airules/internal/models"
)

// Stage is a rule category. Stages are evaluated in declaration order, which
// is also their priority when the tag cap truncates output.
type Stage int

const (
	StageLanguage Stage = iota
	StageFramework
	StageProjectType
	StageTesting
	StageSecurity
	StageDeployment
	StageDirectory
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageLanguage:
		return "language"
	case StageFramework:
		return "framework"
	case StageProjectType:
		return "project-type"
	case StageTesting:
		return "testing"
	case StageSecurity:
		return "security"
	case StageDeployment:
		return "deployment"
	case StageDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Derivation is one tag produced by a rule together with its justification.
type Derivation struct {
	Tag    string
	Reason string
	Stage  Stage
	Rule   string
}

// ruleEnv carries the generator settings rules depend on.
type ruleEnv struct {
	mapping           *Mapping
	minConfidence     float64
	languageThreshold float64
}

// rule is one entry of the ordered rule table: a predicate, a producer and
// the explanation rendered for each produced tag.
type rule struct {
	name    string
	stage   Stage
	applies func(a *models.AnalysisResult) bool
	derive  func(env ruleEnv, a *models.AnalysisResult) []Derivation
}

func always(*models.AnalysisResult) bool { return true }

func hasTests(a *models.AnalysisResult) bool { return a.TestingInfo.HasTests() }

func hasSecurity(a *models.AnalysisResult) bool { return a.SecurityInfo.HasSignal() }

func hasDeployment(a *models.AnalysisResult) bool { return a.DeploymentInfo.HasSignal() }

// emit builds derivations for a fixed reason.
func emit(reason string, tags ...string) []Derivation {
	out := make([]Derivation, 0, len(tags))
	for _, t := range tags {
		out = append(out, Derivation{Tag: t, Reason: reason})
	}
	return out
}

// defaultRules is the single rule table shared by tag generation and
// explanations.
var defaultRules = []rule{
	{
		name:    "primary-language",
		stage:   StageLanguage,
		applies: always,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			primary := a.Languages.Primary()
			tag := LanguageTag(primary)
			if tag == "" {
				return nil
			}

			reason := fmt.Sprintf("primary language '%s'", primary)
			if share := a.Languages.Share(primary); share > 0 {
				reason = fmt.Sprintf("primary language '%s' (%.0f%% of files)", primary, share*100)
			}
			return emit(reason, tag)
		},
	},
	{
		name:    "secondary-languages",
		stage:   StageLanguage,
		applies: always,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, ls := range a.Languages.Significant(env.languageThreshold) {
				tag := LanguageTag(ls.Name)
				if tag == "" {
					continue
				}
				reason := fmt.Sprintf("secondary language '%s' (%.0f%% of files)", ls.Name, ls.Share*100)
				out = append(out, emit(reason, tag)...)
			}
			return out
		},
	},
	{
		name:    "frameworks",
		stage:   StageFramework,
		applies: always,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, fw := range a.Frameworks {
				if fw.Confidence < env.minConfidence {
					continue
				}

				reason := fmt.Sprintf("derived from detected framework '%s' with confidence %.2f", key(fw.Name), fw.Confidence)

				mapped, _ := env.mapping.Lookup(fw.Name)
				produced := append([]string{}, mapped...)
				for _, seeded := range fw.Tags {
					if t := Normalize(seeded); t != "" {
						produced = append(produced, t)
					}
				}
				if len(produced) == 0 {
					if t := Normalize(fw.Name); t != "" {
						produced = append(produced, t)
					}
				}

				out = append(out, emit(reason, produced...)...)
			}
			return out
		},
	},
	{
		name:    "project-type",
		stage:   StageProjectType,
		applies: always,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			reason := fmt.Sprintf("project classified as %s", a.ProjectType.Label())
			return emit(reason, projectTypeTags(a.ProjectType)...)
		},
	},
	{
		name:    "testing",
		stage:   StageTesting,
		applies: hasTests,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			ti := a.TestingInfo
			out := emit("project contains automated tests", "testing")
			if ti.HasUnitTests {
				out = append(out, emit("unit tests detected", "unit-testing")...)
			}
			if ti.HasIntegrationTests {
				out = append(out, emit("integration tests detected", "integration-testing")...)
			}
			if ti.HasE2ETests {
				out = append(out, emit("end-to-end tests detected", "e2e-testing")...)
			}
			return out
		},
	},
	{
		name:    "test-frameworks",
		stage:   StageTesting,
		applies: hasTests,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, name := range a.TestingInfo.TestFrameworks {
				if t := Normalize(name); t != "" {
					out = append(out, emit(fmt.Sprintf("test framework '%s' detected", name), t)...)
				}
			}
			return out
		},
	},
	{
		name:    "test-coverage",
		stage:   StageTesting,
		applies: hasTests,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			tools := a.TestingInfo.TestCoverageTools
			if len(tools) == 0 {
				return nil
			}
			return emit(fmt.Sprintf("coverage tooling detected (%s)", strings.Join(tools, ", ")), "test-coverage")
		},
	},
	{
		name:    "security",
		stage:   StageSecurity,
		applies: hasSecurity,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			return emit("security tooling or authentication detected", "security")
		},
	},
	{
		name:    "authentication",
		stage:   StageSecurity,
		applies: hasSecurity,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, method := range a.SecurityInfo.AuthenticationMethods {
				reason := fmt.Sprintf("authentication method '%s' detected", method)
				out = append(out, emit(reason, authMethodTags(method)...)...)
			}
			return out
		},
	},
	{
		name:    "security-tools",
		stage:   StageSecurity,
		applies: hasSecurity,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, tool := range a.SecurityInfo.SecurityTools {
				if t := Normalize(tool); t != "" {
					out = append(out, emit(fmt.Sprintf("security tool '%s' detected", tool), t)...)
				}
			}
			return out
		},
	},
	{
		name:    "secrets",
		stage:   StageSecurity,
		applies: hasSecurity,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			if !a.SecurityInfo.HasEnvFiles {
				return nil
			}
			return emit("environment files (.env) detected", "secrets-management")
		},
	},
	{
		name:    "containers",
		stage:   StageDeployment,
		applies: hasDeployment,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, tool := range a.DeploymentInfo.ContainerTools {
				if t := Normalize(tool); t != "" {
					out = append(out, emit(fmt.Sprintf("container tool '%s' detected", tool), t)...)
				}
			}
			if a.DeploymentInfo.Containerized {
				out = append(out, emit("project is containerized", "containerization")...)
			}
			return out
		},
	},
	{
		name:    "cloud",
		stage:   StageDeployment,
		applies: hasDeployment,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			var out []Derivation
			for _, platform := range a.DeploymentInfo.CloudPlatforms {
				if t := Normalize(platform); t != "" {
					out = append(out, emit(fmt.Sprintf("cloud platform '%s' detected", platform), t)...)
				}
			}
			return out
		},
	},
	{
		name:    "ci-cd",
		stage:   StageDeployment,
		applies: hasDeployment,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			tools := a.DeploymentInfo.CICDTools
			if len(tools) == 0 {
				return nil
			}
			out := emit(fmt.Sprintf("CI/CD pipeline detected (%s)", strings.Join(tools, ", ")), "ci-cd")
			for _, tool := range tools {
				if t := Normalize(tool); t != "" {
					out = append(out, emit(fmt.Sprintf("CI/CD tool '%s' detected", tool), t)...)
				}
			}
			return out
		},
	},
	{
		name:    "infrastructure-as-code",
		stage:   StageDeployment,
		applies: hasDeployment,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			tools := a.DeploymentInfo.InfrastructureAsCode
			var out []Derivation
			for _, tool := range tools {
				if t := Normalize(tool); t != "" {
					out = append(out, emit(fmt.Sprintf("infrastructure-as-code tool '%s' detected", tool), t)...)
				}
			}
			if len(tools) > 0 {
				out = append(out, emit("infrastructure is managed as code", "infrastructure-as-code")...)
			}
			return out
		},
	},
	{
		name:    "directories",
		stage:   StageDirectory,
		applies: always,
		derive: func(env ruleEnv, a *models.AnalysisResult) []Derivation {
			d := a.DirectoryInfo
			var out []Derivation
			if d.HasDocsDir {
				out = append(out, emit("docs directory present", "documentation")...)
			}
			if d.HasTestsDir {
				out = append(out, emit("dedicated tests directory present", "test-organization")...)
			}
			if d.HasMigrationsDir {
				out = append(out, emit("migrations directory present", "database-migrations")...)
			}
			if d.HasConfigDir {
				out = append(out, emit("config directory present", "configuration")...)
			}
			if d.HasSrcDir {
				out = append(out, emit("src directory layout present", "project-structure")...)
			}
			if d.HasAssetsDir || d.HasStaticDir {
				out = append(out, emit("assets or static directory present", "static-assets")...)
			}
			if d.HasScriptsDir {
				out = append(out, emit("scripts directory present", "scripting")...)
			}
			return out
		},
	},
}

// projectTypeTags returns the tags of a project type, most specific first.
func projectTypeTags(p models.ProjectType) []string {
	switch p {
	case models.ProjectTypeWebFrontend:
		return []string{"frontend", "web-performance"}
	case models.ProjectTypeWebBackend:
		return []string{"backend", "api-design"}
	case models.ProjectTypeFullstack:
		return []string{"fullstack", "api-design"}
	case models.ProjectTypeMicroservice:
		return []string{"microservice", "api-design"}
	case models.ProjectTypeAPI:
		return []string{"api-design", "rest-api"}
	case models.ProjectTypeDataScience:
		return []string{"data-science", "data-analysis"}
	case models.ProjectTypeMachineLearning:
		return []string{"machine-learning", "model-evaluation"}
	case models.ProjectTypeMobileApp:
		return []string{"mobile-development"}
	case models.ProjectTypeCLITool:
		return []string{"cli-design"}
	case models.ProjectTypeLibrary:
		return []string{"library-design", "api-documentation"}
	case models.ProjectTypeInfrastructure:
		return []string{"infrastructure-as-code"}
	case models.ProjectTypeUnknown, "":
		return nil
	default:
		return nil
	}
}

// authMethodTags maps an authentication method to its tags.
func authMethodTags(method string) []string {
	switch key(method) {
	case "jwt":
		return []string{"jwt", "authentication"}
	case "oauth", "oauth2", "oidc", "openid-connect":
		return []string{"oauth", "authentication"}
	case "session", "sessions", "cookie":
		return []string{"session-management", "authentication"}
	case "api-key", "apikey", "api-keys":
		return []string{"api-keys", "authentication"}
	case "saml":
		return []string{"saml", "authentication"}
	case "basic", "":
		return []string{"authentication"}
	default:
		if t := Normalize(method); t != "" {
			return []string{t, "authentication"}
		}
		return []string{"authentication"}
	}
}
