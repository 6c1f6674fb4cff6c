package analyzer

import (
	"math"
	"sort"
	"strings"

	"github.com/jakoblorz/go-airules/internal/models"
)

const (
	confidenceDependency = 0.8
	confidenceConfig     = 0.7
	confidenceIndicator  = 0.5
	confidenceBonus      = 0.1
	maxIndicators        = 5
)

// signature describes how a framework shows up in a project. Package names
// ending in "*" match by prefix.
type signature struct {
	name       string
	category   models.FrameworkCategory
	packages   map[ecosystem][]string
	configs    []string
	indicators []string
}

var signatures = []signature{
	// Frontend
	{name: "react", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"react"}}, indicators: []string{"**/*.jsx", "**/*.tsx"}},
	{name: "vue", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"vue"}}, configs: []string{"vue.config.{js,ts}"}, indicators: []string{"**/*.vue"}},
	{name: "angular", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"@angular/core"}}, configs: []string{"angular.json"}},
	{name: "svelte", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"svelte"}}, configs: []string{"svelte.config.{js,ts}"}, indicators: []string{"**/*.svelte"}},
	{name: "nextjs", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"next"}}, configs: []string{"next.config.{js,mjs,ts}"}},
	{name: "nuxt", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"nuxt"}}, configs: []string{"nuxt.config.{js,ts}"}},
	{name: "astro", category: models.CategoryFrontend, packages: map[ecosystem][]string{ecosystemNPM: {"astro"}}, configs: []string{"astro.config.{js,mjs,ts}"}},

	// Web frameworks
	{name: "express", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemNPM: {"express"}}},
	{name: "fastify", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemNPM: {"fastify"}}},
	{name: "nestjs", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemNPM: {"@nestjs/core"}}, configs: []string{"nest-cli.json"}},
	{name: "django", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemPyPI: {"django"}}, indicators: []string{"manage.py", "**/settings.py", "**/wsgi.py"}},
	{name: "flask", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemPyPI: {"flask"}}},
	{name: "fastapi", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemPyPI: {"fastapi"}}},
	{name: "rails", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemRubyGems: {"rails"}}, configs: []string{"config/routes.rb"}},
	{name: "laravel", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemComposer: {"laravel/framework"}}, indicators: []string{"artisan"}},
	{name: "spring-boot", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemMaven: {"spring-boot-starter*", "org.springframework.boot"}}},
	{name: "gin", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemGo: {"github.com/gin-gonic/gin"}}},
	{name: "echo", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemGo: {"github.com/labstack/echo*"}}},
	{name: "fiber", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemGo: {"github.com/gofiber/fiber*"}}},
	{name: "chi", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemGo: {"github.com/go-chi/chi*"}}},
	{name: "actix-web", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemCargo: {"actix-web"}}},
	{name: "axum", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemCargo: {"axum"}}},
	{name: "rocket", category: models.CategoryWebFramework, packages: map[ecosystem][]string{ecosystemCargo: {"rocket"}}, configs: []string{"Rocket.toml"}},

	// Bundlers
	{name: "webpack", category: models.CategoryBundler, packages: map[ecosystem][]string{ecosystemNPM: {"webpack"}}, configs: []string{"webpack.config.{js,cjs,mjs,ts}"}},
	{name: "vite", category: models.CategoryBundler, packages: map[ecosystem][]string{ecosystemNPM: {"vite"}}, configs: []string{"vite.config.{js,mjs,ts}"}},
	{name: "rollup", category: models.CategoryBundler, packages: map[ecosystem][]string{ecosystemNPM: {"rollup"}}, configs: []string{"rollup.config.{js,mjs,ts}"}},
	{name: "esbuild", category: models.CategoryBundler, packages: map[ecosystem][]string{ecosystemNPM: {"esbuild"}}},
	{name: "parcel", category: models.CategoryBundler, packages: map[ecosystem][]string{ecosystemNPM: {"parcel"}}, configs: []string{".parcelrc"}},

	// Testing
	{name: "jest", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemNPM: {"jest"}}, configs: []string{"jest.config.{js,cjs,mjs,ts,json}"}},
	{name: "vitest", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemNPM: {"vitest"}}, configs: []string{"vitest.config.{js,mjs,ts}"}},
	{name: "mocha", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemNPM: {"mocha"}}, configs: []string{".mocharc*"}},
	{name: "cypress", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemNPM: {"cypress"}}, configs: []string{"cypress.config.{js,ts}", "cypress.json"}},
	{name: "playwright", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemNPM: {"@playwright/test"}, ecosystemPyPI: {"playwright", "pytest-playwright"}}, configs: []string{"playwright.config.{js,ts}"}},
	{name: "pytest", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemPyPI: {"pytest"}}, configs: []string{"pytest.ini", "conftest.py", "**/conftest.py"}},
	{name: "testify", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemGo: {"github.com/stretchr/testify"}}},
	{name: "rspec", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemRubyGems: {"rspec*"}}, configs: []string{".rspec"}},
	{name: "junit", category: models.CategoryTesting, packages: map[ecosystem][]string{ecosystemMaven: {"junit", "junit-jupiter*"}}},

	// Databases
	{name: "postgresql", category: models.CategoryDatabase, packages: map[ecosystem][]string{
		ecosystemNPM:   {"pg", "postgres"},
		ecosystemPyPI:  {"psycopg2", "psycopg2-binary", "psycopg", "asyncpg"},
		ecosystemGo:    {"github.com/lib/pq", "github.com/jackc/pgx*"},
		ecosystemCargo: {"tokio-postgres", "postgres"},
		ecosystemMaven: {"postgresql"},
	}},
	{name: "mysql", category: models.CategoryDatabase, packages: map[ecosystem][]string{
		ecosystemNPM:   {"mysql", "mysql2"},
		ecosystemPyPI:  {"mysqlclient", "pymysql", "mysql-connector-python"},
		ecosystemGo:    {"github.com/go-sql-driver/mysql"},
		ecosystemMaven: {"mysql-connector-j", "mysql-connector-java"},
	}},
	{name: "mongodb", category: models.CategoryDatabase, packages: map[ecosystem][]string{
		ecosystemNPM:  {"mongodb"},
		ecosystemPyPI: {"pymongo", "motor"},
		ecosystemGo:   {"go.mongodb.org/mongo-driver*"},
	}},
	{name: "redis", category: models.CategoryDatabase, packages: map[ecosystem][]string{
		ecosystemNPM:   {"redis", "ioredis"},
		ecosystemPyPI:  {"redis"},
		ecosystemGo:    {"github.com/redis/go-redis*", "github.com/go-redis/redis*"},
		ecosystemCargo: {"redis"},
	}},
	{name: "sqlite", category: models.CategoryDatabase, packages: map[ecosystem][]string{
		ecosystemNPM: {"sqlite3", "better-sqlite3"},
		ecosystemGo:  {"github.com/mattn/go-sqlite3", "modernc.org/sqlite"},
	}, indicators: []string{"**/*.sqlite3", "**/*.db"}},

	// ORMs
	{name: "prisma", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemNPM: {"prisma", "@prisma/client"}}, configs: []string{"prisma/schema.prisma", "**/schema.prisma"}},
	{name: "typeorm", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemNPM: {"typeorm"}}, configs: []string{"ormconfig.{json,js,ts}"}},
	{name: "sequelize", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemNPM: {"sequelize"}}, configs: []string{".sequelizerc"}},
	{name: "mongoose", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemNPM: {"mongoose"}}},
	{name: "sqlalchemy", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemPyPI: {"sqlalchemy", "flask-sqlalchemy"}}, configs: []string{"alembic.ini"}},
	{name: "gorm", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemGo: {"gorm.io/gorm"}}},
	{name: "diesel", category: models.CategoryORM, packages: map[ecosystem][]string{ecosystemCargo: {"diesel"}}, configs: []string{"diesel.toml"}},

	// Analytics and machine learning
	{name: "pandas", category: models.CategoryAnalytics, packages: map[ecosystem][]string{ecosystemPyPI: {"pandas"}}},
	{name: "numpy", category: models.CategoryAnalytics, packages: map[ecosystem][]string{ecosystemPyPI: {"numpy"}}},
	{name: "jupyter", category: models.CategoryAnalytics, packages: map[ecosystem][]string{ecosystemPyPI: {"jupyter", "jupyterlab", "notebook", "ipykernel"}}, indicators: []string{"**/*.ipynb"}},
	{name: "matplotlib", category: models.CategoryAnalytics, packages: map[ecosystem][]string{ecosystemPyPI: {"matplotlib", "seaborn"}}},
	{name: "scikit-learn", category: models.CategoryMachineLearning, packages: map[ecosystem][]string{ecosystemPyPI: {"scikit-learn", "sklearn"}}},
	{name: "tensorflow", category: models.CategoryMachineLearning, packages: map[ecosystem][]string{ecosystemPyPI: {"tensorflow", "tensorflow-cpu", "keras"}, ecosystemNPM: {"@tensorflow/tfjs"}}},
	{name: "pytorch", category: models.CategoryMachineLearning, packages: map[ecosystem][]string{ecosystemPyPI: {"torch", "pytorch-lightning", "lightning"}}},

	// Styling and state
	{name: "tailwindcss", category: models.CategoryStyling, packages: map[ecosystem][]string{ecosystemNPM: {"tailwindcss"}}, configs: []string{"tailwind.config.{js,cjs,mjs,ts}"}},
	{name: "sass", category: models.CategoryStyling, packages: map[ecosystem][]string{ecosystemNPM: {"sass", "node-sass"}}, indicators: []string{"**/*.scss", "**/*.sass"}},
	{name: "styled-components", category: models.CategoryStyling, packages: map[ecosystem][]string{ecosystemNPM: {"styled-components"}}},
	{name: "redux", category: models.CategoryStateManagement, packages: map[ecosystem][]string{ecosystemNPM: {"redux", "@reduxjs/toolkit"}}},
	{name: "zustand", category: models.CategoryStateManagement, packages: map[ecosystem][]string{ecosystemNPM: {"zustand"}}},
	{name: "pinia", category: models.CategoryStateManagement, packages: map[ecosystem][]string{ecosystemNPM: {"pinia"}}},

	// Mobile
	{name: "react-native", category: models.CategoryMobile, packages: map[ecosystem][]string{ecosystemNPM: {"react-native", "expo"}}, configs: []string{"metro.config.js"}},
	{name: "flutter", category: models.CategoryMobile, packages: map[ecosystem][]string{ecosystemPub: {"flutter"}}, configs: []string{"pubspec.yaml"}},

	// CLI
	{name: "cobra", category: models.CategoryCLI, packages: map[ecosystem][]string{ecosystemGo: {"github.com/spf13/cobra"}}},
	{name: "click", category: models.CategoryCLI, packages: map[ecosystem][]string{ecosystemPyPI: {"click"}}},
	{name: "typer", category: models.CategoryCLI, packages: map[ecosystem][]string{ecosystemPyPI: {"typer"}}},
	{name: "clap", category: models.CategoryCLI, packages: map[ecosystem][]string{ecosystemCargo: {"clap"}}},

	// Linting and formatting
	{name: "eslint", category: models.CategoryLinting, packages: map[ecosystem][]string{ecosystemNPM: {"eslint"}}, configs: []string{".eslintrc*", "eslint.config.{js,cjs,mjs,ts}"}},
	{name: "prettier", category: models.CategoryLinting, packages: map[ecosystem][]string{ecosystemNPM: {"prettier"}}, configs: []string{".prettierrc*", "prettier.config.{js,cjs,mjs}"}},
	{name: "ruff", category: models.CategoryLinting, packages: map[ecosystem][]string{ecosystemPyPI: {"ruff"}}, configs: []string{"ruff.toml", ".ruff.toml"}},
	{name: "black", category: models.CategoryLinting, packages: map[ecosystem][]string{ecosystemPyPI: {"black"}}},
	{name: "golangci-lint", category: models.CategoryLinting, configs: []string{".golangci.{yml,yaml,toml,json}"}},

	// Protocols and runtimes
	{name: "graphql", category: models.CategoryWebFramework, packages: map[ecosystem][]string{
		ecosystemNPM:  {"graphql", "@apollo/server", "apollo-server*"},
		ecosystemPyPI: {"graphene", "strawberry-graphql", "ariadne"},
		ecosystemGo:   {"github.com/99designs/gqlgen", "github.com/graphql-go/graphql"},
	}, indicators: []string{"**/*.graphql", "**/*.gql"}},
	{name: "grpc", category: models.CategoryWebFramework, packages: map[ecosystem][]string{
		ecosystemNPM:   {"@grpc/grpc-js"},
		ecosystemPyPI:  {"grpcio"},
		ecosystemGo:    {"google.golang.org/grpc"},
		ecosystemCargo: {"tonic"},
	}, indicators: []string{"**/*.proto"}},
	{name: "celery", category: models.CategoryInfrastructure, packages: map[ecosystem][]string{ecosystemPyPI: {"celery"}}},
	{name: "tokio", category: models.CategoryInfrastructure, packages: map[ecosystem][]string{ecosystemCargo: {"tokio"}}},
	{name: "serde", category: models.CategoryInfrastructure, packages: map[ecosystem][]string{ecosystemCargo: {"serde"}}},
}

// matches reports whether a dependency satisfies the signature.
func (sig signature) matches(dep dependency) bool {
	for _, want := range sig.packages[dep.Ecosystem] {
		if prefix, ok := strings.CutSuffix(want, "*"); ok {
			if strings.HasPrefix(dep.Name, prefix) {
				return true
			}
			continue
		}
		if dep.Name == want {
			return true
		}
	}
	return false
}

// detectFrameworks scores every signature against the declared dependencies
// and the file inventory. Results are sorted by confidence, then name.
func detectFrameworks(s *scan, deps []dependency) []models.FrameworkInfo {
	var frameworks []models.FrameworkInfo

	for _, sig := range signatures {
		fw := models.FrameworkInfo{Name: sig.name, Category: sig.category}

		var matched *dependency
		for i := range deps {
			if sig.matches(deps[i]) {
				matched = &deps[i]
				break
			}
		}
		configs := s.match(sig.configs...)
		indicators := s.match(sig.indicators...)

		switch {
		case matched != nil:
			fw.Confidence = confidenceDependency
			if len(configs) > 0 {
				fw.Confidence += confidenceBonus
			}
			if len(indicators) > 0 {
				fw.Confidence += confidenceBonus
			}
		case len(configs) > 0:
			fw.Confidence = confidenceConfig
			if len(indicators) > 0 {
				fw.Confidence += confidenceBonus
			}
		case len(indicators) > 0:
			fw.Confidence = confidenceIndicator
		default:
			continue
		}

		if matched != nil {
			fw.PackageName = matched.Name
			fw.Version = cleanVersion(matched.Version)
			fw.Indicators = append(fw.Indicators, matched.Source)
		}
		fw.ConfigFiles = configs
		if len(indicators) > maxIndicators {
			indicators = indicators[:maxIndicators]
		}
		fw.Indicators = append(fw.Indicators, indicators...)
		fw.Confidence = roundConfidence(fw.Confidence)

		frameworks = append(frameworks, fw)
	}

	sortFrameworks(frameworks)
	return frameworks
}

// mergeFramework adds fw or raises the confidence of an existing entry.
func mergeFramework(frameworks []models.FrameworkInfo, fw models.FrameworkInfo) []models.FrameworkInfo {
	for i := range frameworks {
		if frameworks[i].Name != fw.Name {
			continue
		}
		frameworks[i].Confidence = roundConfidence(frameworks[i].Confidence + confidenceBonus)
		frameworks[i].ConfigFiles = appendUnique(frameworks[i].ConfigFiles, fw.ConfigFiles...)
		return frameworks
	}
	return append(frameworks, fw)
}

func sortFrameworks(frameworks []models.FrameworkInfo) {
	sort.SliceStable(frameworks, func(i, j int) bool {
		if frameworks[i].Confidence != frameworks[j].Confidence {
			return frameworks[i].Confidence > frameworks[j].Confidence
		}
		return frameworks[i].Name < frameworks[j].Name
	})
}

func roundConfidence(c float64) float64 {
	return math.Min(1, math.Round(c*100)/100)
}

// cleanVersion strips range operators from a declared version.
func cleanVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "^~>=<! v")
	if i := strings.IndexAny(v, " ,|"); i >= 0 {
		v = v[:i]
	}
	if v == "*" || v == "latest" {
		return ""
	}
	return v
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
