package rules

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/jakoblorz/go-airules/internal/models"
)

// Action describes what applying a Change does to the file on disk.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
)

// Change is one rules file about to be written.
type Change struct {
	Tool    models.Tool
	Path    string
	RelPath string
	Tags    []string
	Action  Action
	Content []byte
}

// Exists reports whether the file is already on disk.
func (c Change) Exists() bool {
	return c.Action != ActionCreate
}

// Writer plans and writes rule files below a project root.
type Writer struct {
	fs   filesystem.FileSystem
	root string
}

// NewWriter creates a Writer for the project at root.
func NewWriter(fs filesystem.FileSystem, root string) *Writer {
	return &Writer{fs: fs, root: root}
}

// Plan renders docs for tool without touching the filesystem. Per-tag tools
// get one change per document; shared-file tools get a single change with
// every document merged into the existing file.
func (w *Writer) Plan(tool models.Tool, docs []Document) ([]Change, error) {
	layout, err := LayoutFor(tool)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	if layout.Shared() {
		change, err := w.planShared(layout, docs)
		if err != nil {
			return nil, err
		}
		return []Change{change}, nil
	}

	changes := make([]Change, 0, len(docs))
	for _, doc := range docs {
		rel := layout.RelPath(doc)
		path, existing, err := w.resolve(rel)
		if err != nil {
			return nil, err
		}

		content, err := RenderFile(tool, doc, existing)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", rel, err)
		}

		changes = append(changes, Change{
			Tool:    tool,
			Path:    path,
			RelPath: rel,
			Tags:    []string{doc.Tag},
			Action:  action(existing, content),
			Content: content,
		})
	}
	return changes, nil
}

func (w *Writer) planShared(layout Layout, docs []Document) (Change, error) {
	rel := layout.SharedFile
	path, existing, err := w.resolve(rel)
	if err != nil {
		return Change{}, err
	}

	merged := string(existing)
	tags := make([]string, 0, len(docs))
	for _, doc := range docs {
		merged = MergeSection(merged, doc.ID(), RenderSection(doc))
		tags = append(tags, doc.Tag)
	}

	content := []byte(merged)
	return Change{
		Tool:    layout.Tool,
		Path:    path,
		RelPath: rel,
		Tags:    tags,
		Action:  action(existing, content),
		Content: content,
	}, nil
}

// Apply writes the change. Unchanged files are left alone.
func (w *Writer) Apply(change Change) error {
	if change.Action == ActionUnchanged {
		return nil
	}
	return filesystem.WriteFileAll(w.fs, change.Path, change.Content, 0644)
}

// resolve returns the absolute path of rel and its current content, nil when
// the file does not exist yet.
func (w *Writer) resolve(rel string) (string, []byte, error) {
	path, err := filesystem.SecureJoin(w.fs, w.root, filepath.FromSlash(rel))
	if err != nil {
		return "", nil, err
	}

	if !w.fs.Exists(path) {
		return path, nil, nil
	}

	existing, err := w.fs.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return path, existing, nil
}

func action(existing, content []byte) Action {
	switch {
	case existing == nil:
		return ActionCreate
	case bytes.Equal(existing, content):
		return ActionUnchanged
	default:
		return ActionUpdate
	}
}
