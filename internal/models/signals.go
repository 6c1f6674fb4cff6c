package models

// DirectoryInfo captures structural signals from the project layout.
type DirectoryInfo struct {
	HasSrcDir        bool `json:"hasSrcDir"`
	HasTestsDir      bool `json:"hasTestsDir"`
	HasDocsDir       bool `json:"hasDocsDir"`
	HasConfigDir     bool `json:"hasConfigDir"`
	HasAssetsDir     bool `json:"hasAssetsDir"`
	HasStaticDir     bool `json:"hasStaticDir"`
	HasMigrationsDir bool `json:"hasMigrationsDir"`
	HasScriptsDir    bool `json:"hasScriptsDir"`

	// SourceDirectories are top-level directories holding source files
	SourceDirectories []string `json:"sourceDirectories,omitempty"`
}

// TestingInfo captures test related signals.
type TestingInfo struct {
	HasUnitTests        bool `json:"hasUnitTests"`
	HasIntegrationTests bool `json:"hasIntegrationTests"`
	HasE2ETests         bool `json:"hasE2eTests"`

	// TestFrameworks are test runner or library names, e.g. "jest"
	TestFrameworks []string `json:"testFrameworks,omitempty"`

	// TestDirectories are relative paths of directories containing tests
	TestDirectories []string `json:"testDirectories,omitempty"`

	// TestCoverageTools are coverage tool names, e.g. "coverage.py"
	TestCoverageTools []string `json:"testCoverageTools,omitempty"`
}

// HasTests reports whether unit or integration tests were found.
func (t TestingInfo) HasTests() bool {
	return t.HasUnitTests || t.HasIntegrationTests
}

// SecurityInfo captures security related signals.
type SecurityInfo struct {
	HasSecurityTools bool `json:"hasSecurityTools"`
	HasEnvFiles      bool `json:"hasEnvFiles"`

	// SecurityTools are scanner or policy tool names, e.g. "gitleaks"
	SecurityTools []string `json:"securityTools,omitempty"`

	// AuthenticationMethods are detected auth schemes, e.g. "jwt", "oauth"
	AuthenticationMethods []string `json:"authenticationMethods,omitempty"`
}

// HasSignal reports whether any security evidence exists.
func (s SecurityInfo) HasSignal() bool {
	return s.HasSecurityTools || len(s.AuthenticationMethods) > 0
}

// DeploymentInfo captures packaging and delivery signals.
type DeploymentInfo struct {
	Containerized bool `json:"containerized"`

	ContainerTools       []string `json:"containerTools,omitempty"`
	CloudPlatforms       []string `json:"cloudPlatforms,omitempty"`
	CICDTools            []string `json:"ciCdTools,omitempty"`
	InfrastructureAsCode []string `json:"infrastructureAsCode,omitempty"`
}

// HasSignal reports whether the project is containerized or has CI/CD.
func (d DeploymentInfo) HasSignal() bool {
	return d.Containerized || len(d.CICDTools) > 0
}
