package models

import (
	"fmt"
)

// ProjectType represents the overall kind of project inferred by the analyzer.
type ProjectType string

const (
	ProjectTypeWebFrontend     ProjectType = "web_frontend"
	ProjectTypeWebBackend      ProjectType = "web_backend"
	ProjectTypeFullstack       ProjectType = "fullstack"
	ProjectTypeMicroservice    ProjectType = "microservice"
	ProjectTypeAPI             ProjectType = "api"
	ProjectTypeDataScience     ProjectType = "data_science"
	ProjectTypeMachineLearning ProjectType = "machine_learning"
	ProjectTypeMobileApp       ProjectType = "mobile_app"
	ProjectTypeCLITool         ProjectType = "cli_tool"
	ProjectTypeLibrary         ProjectType = "library"
	ProjectTypeInfrastructure  ProjectType = "infrastructure"
	ProjectTypeUnknown         ProjectType = "unknown"
)

// IsValid checks if the project type is valid. The empty value is treated
// as unknown.
func (p ProjectType) IsValid() bool {
	switch p {
	case ProjectTypeWebFrontend, ProjectTypeWebBackend, ProjectTypeFullstack,
		ProjectTypeMicroservice, ProjectTypeAPI, ProjectTypeDataScience,
		ProjectTypeMachineLearning, ProjectTypeMobileApp, ProjectTypeCLITool,
		ProjectTypeLibrary, ProjectTypeInfrastructure, ProjectTypeUnknown, "":
		return true
	default:
		return false
	}
}

// String returns the string representation of ProjectType
func (p ProjectType) String() string {
	if p == "" {
		return string(ProjectTypeUnknown)
	}
	return string(p)
}

// Label returns a human readable name, e.g. "web frontend".
func (p ProjectType) Label() string {
	switch p {
	case ProjectTypeWebFrontend:
		return "web frontend"
	case ProjectTypeWebBackend:
		return "web backend"
	case ProjectTypeFullstack:
		return "fullstack"
	case ProjectTypeMicroservice:
		return "microservice"
	case ProjectTypeAPI:
		return "API"
	case ProjectTypeDataScience:
		return "data science"
	case ProjectTypeMachineLearning:
		return "machine learning"
	case ProjectTypeMobileApp:
		return "mobile app"
	case ProjectTypeCLITool:
		return "CLI tool"
	case ProjectTypeLibrary:
		return "library"
	case ProjectTypeInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// ParseProjectType parses a string into a ProjectType
func ParseProjectType(s string) (ProjectType, error) {
	p := ProjectType(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid project type: %s", s)
	}
	if p == "" {
		return ProjectTypeUnknown, nil
	}
	return p, nil
}
