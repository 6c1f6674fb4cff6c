package tags

// commonTags are topics that are not tied to a framework but are valid
// rules subjects: the tags the rule stages emit, language tags and general
// engineering topics users commonly ask for.
var commonTags = []string{
	// Languages
	"bash", "c", "cpp", "csharp", "css", "dart", "elixir", "erlang", "fsharp", "go",
	"haskell", "hcl", "html", "java", "javascript", "julia", "kotlin", "lua",
	"objective-c", "php", "powershell", "python", "r", "ruby", "rust", "scala", "scss",
	"shell", "sql", "swift", "typescript", "yaml", "zig",

	// Project types
	"frontend", "web-performance", "backend", "api-design", "fullstack",
	"microservice", "rest-api", "data-science", "data-analysis", "machine-learning",
	"model-evaluation", "mobile-development", "cli-design", "library-design",
	"api-documentation", "infrastructure-as-code",

	// Testing
	"testing", "unit-testing", "integration-testing", "e2e-testing", "test-coverage",
	"go-test", "unittest",

	// Security
	"security", "authentication", "authorization", "jwt", "oauth", "saml",
	"session-management", "api-keys", "secrets-management",

	// Deployment
	"containerization", "ci-cd", "aws", "gcp", "azure", "vercel", "netlify",
	"fly-io", "heroku", "docker-compose", "gitlab-ci", "circleci", "jenkins",
	"azure-pipelines", "pulumi", "aws-cdk", "serverless",

	// Directory structure
	"documentation", "test-organization", "database-migrations", "configuration",
	"project-structure", "static-assets", "scripting",

	// General topics
	"coding style", "code-style", "best-practices", "error-handling", "logging",
	"performance", "accessibility", "naming-conventions", "code-review",
	"refactoring", "type-safety", "async", "concurrency", "observability",
	"dependency-management", "internationalization",
}
