package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedInput is returned (wrapped) when an analysis cannot be used.
var ErrMalformedInput = errors.New("malformed analysis")

// MalformedInputError describes which field of an analysis is invalid.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed analysis: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedInput).
func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// AnalysisResult is the complete profile of a project produced by the analyzer.
// It is built once per run and treated as read-only afterwards.
type AnalysisResult struct {
	// ProjectPath is the absolute path of the analyzed project
	ProjectPath string `json:"projectPath"`

	// ProjectType is the inferred kind of project
	ProjectType ProjectType `json:"projectType"`

	Languages      LanguageInfo    `json:"languages"`
	Frameworks     []FrameworkInfo `json:"frameworks"`
	DirectoryInfo  DirectoryInfo   `json:"directoryInfo"`
	TestingInfo    TestingInfo     `json:"testingInfo"`
	SecurityInfo   SecurityInfo    `json:"securityInfo"`
	DeploymentInfo DeploymentInfo  `json:"deploymentInfo"`
}

// Validate checks the declared shapes and value ranges of the analysis.
func (a *AnalysisResult) Validate() error {
	if a == nil {
		return &MalformedInputError{Field: "analysis", Reason: "is nil"}
	}

	if !a.ProjectType.IsValid() {
		return &MalformedInputError{Field: "projectType", Reason: fmt.Sprintf("unknown value %q", a.ProjectType)}
	}

	if a.Languages.TotalFiles < 0 {
		return &MalformedInputError{Field: "languages.totalFiles", Reason: "must not be negative"}
	}

	for name, share := range a.Languages.Languages {
		if math.IsNaN(share) || share < 0 {
			return &MalformedInputError{Field: "languages." + name, Reason: fmt.Sprintf("invalid share %v", share)}
		}
	}

	seen := make(map[string]struct{}, len(a.Frameworks))
	for i, fw := range a.Frameworks {
		field := fmt.Sprintf("frameworks[%d]", i)
		if strings.TrimSpace(fw.Name) == "" {
			return &MalformedInputError{Field: field + ".name", Reason: "is empty"}
		}
		if !fw.Category.IsValid() {
			return &MalformedInputError{Field: field + ".category", Reason: fmt.Sprintf("unknown value %q", fw.Category)}
		}
		if math.IsNaN(fw.Confidence) || fw.Confidence < 0 || fw.Confidence > 1 {
			return &MalformedInputError{Field: field + ".confidence", Reason: fmt.Sprintf("%v is outside [0, 1]", fw.Confidence)}
		}

		key := strings.ToLower(fw.Name)
		if _, dup := seen[key]; dup {
			return &MalformedInputError{Field: field + ".name", Reason: fmt.Sprintf("duplicate framework %q", fw.Name)}
		}
		seen[key] = struct{}{}
	}

	return nil
}

// Framework returns the framework with the given name (case-insensitive).
func (a *AnalysisResult) Framework(name string) (FrameworkInfo, bool) {
	for _, fw := range a.Frameworks {
		if strings.EqualFold(fw.Name, name) {
			return fw, true
		}
	}
	return FrameworkInfo{}, false
}

// FrameworksByCategory returns the frameworks of a category in analysis order.
func (a *AnalysisResult) FrameworksByCategory(category FrameworkCategory) []FrameworkInfo {
	var result []FrameworkInfo
	for _, fw := range a.Frameworks {
		if fw.Category == category {
			result = append(result, fw)
		}
	}
	return result
}

// IsEmpty reports whether the analysis carries no language evidence at all.
func (a *AnalysisResult) IsEmpty() bool {
	return a.Languages.TotalFiles == 0 && len(a.Languages.Languages) == 0
}

// IsMultilingual reports whether more than one language has a share above 10%.
func (a *AnalysisResult) IsMultilingual() bool {
	count := 0
	for _, share := range a.Languages.Languages {
		if share > 0.1 {
			count++
		}
	}
	return count > 1
}
