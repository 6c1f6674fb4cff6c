package models

import (
	"fmt"
)

// FrameworkCategory classifies a detected framework or tool
type FrameworkCategory string

const (
	CategoryFrontend        FrameworkCategory = "frontend"
	CategoryWebFramework    FrameworkCategory = "web_framework"
	CategoryBundler         FrameworkCategory = "bundler"
	CategoryTesting         FrameworkCategory = "testing"
	CategoryDatabase        FrameworkCategory = "database"
	CategoryAnalytics       FrameworkCategory = "analytics"
	CategoryMachineLearning FrameworkCategory = "machine_learning"
	CategoryORM             FrameworkCategory = "orm"
	CategoryStyling         FrameworkCategory = "styling"
	CategoryStateManagement FrameworkCategory = "state_management"
	CategoryMobile          FrameworkCategory = "mobile"
	CategoryCLI             FrameworkCategory = "cli"
	CategoryLinting         FrameworkCategory = "linting"
	CategoryInfrastructure  FrameworkCategory = "infrastructure"
)

// AllFrameworkCategories lists every category in declaration order.
var AllFrameworkCategories = []FrameworkCategory{
	CategoryFrontend,
	CategoryWebFramework,
	CategoryBundler,
	CategoryTesting,
	CategoryDatabase,
	CategoryAnalytics,
	CategoryMachineLearning,
	CategoryORM,
	CategoryStyling,
	CategoryStateManagement,
	CategoryMobile,
	CategoryCLI,
	CategoryLinting,
	CategoryInfrastructure,
}

// IsValid checks if the category is one of the known categories
func (c FrameworkCategory) IsValid() bool {
	switch c {
	case CategoryFrontend, CategoryWebFramework, CategoryBundler, CategoryTesting,
		CategoryDatabase, CategoryAnalytics, CategoryMachineLearning, CategoryORM,
		CategoryStyling, CategoryStateManagement, CategoryMobile, CategoryCLI,
		CategoryLinting, CategoryInfrastructure:
		return true
	default:
		return false
	}
}

// String returns the string representation of FrameworkCategory
func (c FrameworkCategory) String() string {
	return string(c)
}

// ParseFrameworkCategory parses a string into a FrameworkCategory
func ParseFrameworkCategory(s string) (FrameworkCategory, error) {
	c := FrameworkCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid framework category: %s", s)
	}
	return c, nil
}

// FrameworkInfo describes a framework, library or tool detected in a project.
type FrameworkInfo struct {
	// Name is the lowercase framework identifier (unique within an analysis)
	Name string `json:"name"`

	// Category classifies the framework
	Category FrameworkCategory `json:"category"`

	// Version is the declared version, if known
	Version string `json:"version,omitempty"`

	// Confidence expresses detection certainty in [0, 1]
	Confidence float64 `json:"confidence"`

	// PackageName is the package the framework was detected from, if any
	PackageName string `json:"packageName,omitempty"`

	// ConfigFiles are the configuration files that reference the framework
	ConfigFiles []string `json:"configFiles,omitempty"`

	// Indicators are the file or path hints that matched
	Indicators []string `json:"indicators,omitempty"`

	// Tags are optional pre-seeded tags for the framework
	Tags []string `json:"tags,omitempty"`
}
