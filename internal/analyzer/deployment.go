package analyzer

import (
	"regexp"
	"strings"

	"github.com/jakoblorz/go-airules/internal/models"
	"gopkg.in/yaml.v3"
)

var ciFiles = []struct {
	pattern string
	tool    string
}{
	{".github/workflows/*.{yml,yaml}", "github-actions"},
	{".gitlab-ci.yml", "gitlab-ci"},
	{".circleci/config.{yml,yaml}", "circleci"},
	{"Jenkinsfile", "jenkins"},
	{"azure-pipelines.{yml,yaml}", "azure-pipelines"},
	{".travis.yml", "travis-ci"},
	{"bitbucket-pipelines.yml", "bitbucket-pipelines"},
	{".drone.yml", "drone"},
}

var iacFiles = []struct {
	pattern string
	tool    string
}{
	{"**/*.tf", "terraform"},
	{"Pulumi.{yml,yaml}", "pulumi"},
	{"cdk.json", "aws-cdk"},
	{"serverless.{yml,yaml}", "serverless"},
	{"**/*.bicep", "bicep"},
	{"ansible.cfg", "ansible"},
	{"**/playbook*.{yml,yaml}", "ansible"},
	{"template.{yml,yaml}", "aws-sam"},
}

var cloudFiles = []struct {
	pattern  string
	platform string
}{
	{"app.yaml", "gcp"},
	{"cloudbuild.{yml,yaml}", "gcp"},
	{"cdk.json", "aws"},
	{"samconfig.toml", "aws"},
	{"serverless.{yml,yaml}", "aws"},
	{"buildspec.yml", "aws"},
	{"vercel.json", "vercel"},
	{"netlify.toml", "netlify"},
	{"fly.toml", "fly-io"},
	{"Procfile", "heroku"},
	{"azure-pipelines.{yml,yaml}", "azure"},
	{"render.yaml", "render"},
}

// cloudPackagePrefixes maps a dependency prefix to its cloud platform.
var cloudPackagePrefixes = []struct {
	prefix   string
	platform string
}{
	{"boto3", "aws"},
	{"aws-sdk", "aws"},
	{"@aws-sdk/", "aws"},
	{"github.com/aws/aws-sdk-go", "aws"},
	{"aws-cdk-lib", "aws"},
	{"google-cloud-", "gcp"},
	{"@google-cloud/", "gcp"},
	{"cloud.google.com/go", "gcp"},
	{"firebase", "gcp"},
	{"azure-", "azure"},
	{"@azure/", "azure"},
	{"github.com/azure/azure-sdk-for-go", "azure"},
}

var terraformProvider = regexp.MustCompile(`provider\s+"(aws|google|azurerm)"`)

var terraformPlatforms = map[string]string{
	"aws":     "aws",
	"google":  "gcp",
	"azurerm": "azure",
}

// composeImages maps a compose service image to the database it runs.
var composeImages = map[string]string{
	"postgres": "postgresql",
	"postgis":  "postgresql",
	"mysql":    "mysql",
	"mariadb":  "mysql",
	"mongo":    "mongodb",
	"redis":    "redis",
}

type composeFile struct {
	Services map[string]struct {
		Image string `yaml:"image"`
		Build any    `yaml:"build"`
	} `yaml:"services"`
}

// detectDeployment returns the deployment signals and the database
// frameworks implied by compose services.
func (a *Analyzer) detectDeployment(s *scan, deps []dependency) (models.DeploymentInfo, []models.FrameworkInfo) {
	var info models.DeploymentInfo
	containerTools := make(map[string]struct{})
	var services []models.FrameworkInfo

	if s.any("**/Dockerfile", "**/Dockerfile.*", "**/*.Dockerfile", "**/Containerfile") {
		containerTools["docker"] = struct{}{}
	}

	for _, rel := range s.match("**/docker-compose*.{yml,yaml}", "**/compose*.{yml,yaml}") {
		containerTools["docker-compose"] = struct{}{}

		data, err := s.read(rel)
		if err != nil {
			a.logger.Warn("failed to read compose file", "path", rel, "error", err)
			continue
		}
		var compose composeFile
		if err := yaml.Unmarshal(data, &compose); err != nil {
			a.logger.Warn("skipping malformed compose file", "path", rel, "error", err)
			continue
		}
		for name, svc := range compose.Services {
			image := imageName(svc.Image)
			if db, ok := composeImages[image]; ok {
				a.logger.Debug("compose service implies database", "service", name, "database", db)
				services = append(services, models.FrameworkInfo{
					Name:        db,
					Category:    models.CategoryDatabase,
					Confidence:  confidenceIndicator,
					ConfigFiles: []string{rel},
					Indicators:  []string{rel + "#" + name},
				})
			}
		}
	}

	if s.hasDirNamed("k8s", "kubernetes", "manifests") || s.any("**/kustomization.{yml,yaml}") {
		containerTools["kubernetes"] = struct{}{}
	}
	if s.any("**/Chart.yaml") {
		containerTools["helm"] = struct{}{}
		containerTools["kubernetes"] = struct{}{}
	}
	info.ContainerTools = sortedKeys(containerTools)
	info.Containerized = len(info.ContainerTools) > 0

	ci := make(map[string]struct{})
	for _, c := range ciFiles {
		if s.any(c.pattern) {
			ci[c.tool] = struct{}{}
		}
	}
	info.CICDTools = sortedKeys(ci)

	iac := make(map[string]struct{})
	for _, f := range iacFiles {
		if s.any(f.pattern) {
			iac[f.tool] = struct{}{}
		}
	}
	info.InfrastructureAsCode = sortedKeys(iac)

	cloud := make(map[string]struct{})
	for _, c := range cloudFiles {
		if s.any(c.pattern) {
			cloud[c.platform] = struct{}{}
		}
	}
	for _, dep := range deps {
		name := strings.ToLower(dep.Name)
		for _, p := range cloudPackagePrefixes {
			if strings.HasPrefix(name, p.prefix) {
				cloud[p.platform] = struct{}{}
			}
		}
	}
	for _, rel := range s.match("**/*.tf") {
		data, err := s.read(rel)
		if err != nil {
			continue
		}
		for _, m := range terraformProvider.FindAllStringSubmatch(string(data), -1) {
			cloud[terraformPlatforms[m[1]]] = struct{}{}
		}
	}
	info.CloudPlatforms = sortedKeys(cloud)

	return info, services
}

// imageName reduces "docker.io/library/postgres:16-alpine" to "postgres".
func imageName(image string) string {
	image = strings.ToLower(strings.TrimSpace(image))
	if i := strings.LastIndex(image, "/"); i >= 0 {
		image = image[i+1:]
	}
	if i := strings.IndexAny(image, ":@"); i >= 0 {
		image = image[:i]
	}
	return image
}

// yamlScalar returns a plain string value, ignoring nested mappings such as
// `flutter: {sdk: flutter}`.
func yamlScalar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
