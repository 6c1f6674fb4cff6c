package analyzer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jakoblorz/go-airules/internal/filesystem"
)

// ProjectBuilder helps create test projects on a mock filesystem
type ProjectBuilder struct {
	fs   *filesystem.MockFileSystem
	root string
}

// NewProjectBuilder creates a new ProjectBuilder whose root is also the
// working directory.
func NewProjectBuilder(root string) *ProjectBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(root)

	return &ProjectBuilder{
		fs:   fs,
		root: root,
	}
}

// Root returns the project root
func (pb *ProjectBuilder) Root() string {
	return pb.root
}

// AddFile adds a file relative to the project root
func (pb *ProjectBuilder) AddFile(rel, content string) *ProjectBuilder {
	pb.fs.AddFile(filepath.Join(pb.root, filepath.FromSlash(rel)), []byte(content))
	return pb
}

// AddFiles adds empty files relative to the project root
func (pb *ProjectBuilder) AddFiles(rels ...string) *ProjectBuilder {
	for _, rel := range rels {
		pb.AddFile(rel, "")
	}
	return pb
}

// AddPackageJSON writes a package.json with the given dependencies
func (pb *ProjectBuilder) AddPackageJSON(name string, deps, devDeps map[string]string) *ProjectBuilder {
	pkg := map[string]any{"name": name}
	if len(deps) > 0 {
		pkg["dependencies"] = deps
	}
	if len(devDeps) > 0 {
		pkg["devDependencies"] = devDeps
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("failed to marshal package.json: %v", err))
	}
	return pb.AddFile("package.json", string(data)+"\n")
}

// AddRequirements writes requirements.txt
func (pb *ProjectBuilder) AddRequirements(lines ...string) *ProjectBuilder {
	return pb.AddFile("requirements.txt", strings.Join(lines, "\n")+"\n")
}

// AddGoMod writes go.mod with direct requirements of the form "path version"
func (pb *ProjectBuilder) AddGoMod(modulePath string, requires ...string) *ProjectBuilder {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n\ngo 1.24\n", modulePath)
	if len(requires) > 0 {
		sorted := append([]string(nil), requires...)
		sort.Strings(sorted)
		b.WriteString("\nrequire (\n")
		for _, req := range sorted {
			fmt.Fprintf(&b, "\t%s\n", req)
		}
		b.WriteString(")\n")
	}
	return pb.AddFile("go.mod", b.String())
}

// Build returns the filesystem
func (pb *ProjectBuilder) Build() *filesystem.MockFileSystem {
	return pb.fs
}
