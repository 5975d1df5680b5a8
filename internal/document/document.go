// Package document serializes charts to portable JSON and YAML documents
// and imports them back, tolerating the field-name variations found in
// exports from other gantt tools.
package document

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/task"
	"github.com/ganttkit/ganttkit/internal/util"
)

// Version is the document format version written on export.
const Version = "1.0"

// Document is the portable chart representation.
type Document struct {
	Version      string             `json:"version" yaml:"version"`
	Name         string             `json:"name,omitempty" yaml:"name,omitempty"`
	ExportDate   time.Time          `json:"exportDate" yaml:"export_date"`
	Tasks        []*task.Task       `json:"tasks" yaml:"tasks"`
	Dependencies []*task.Dependency `json:"dependencies" yaml:"dependencies"`
}

// New builds an export document from chart contents. The task and dependency
// slices are cloned; the document never aliases live state.
func New(name string, tasks []*task.Task, deps []*task.Dependency) *Document {
	return &Document{
		Version:      Version,
		Name:         name,
		ExportDate:   time.Now().UTC(),
		Tasks:        task.CloneTasks(tasks),
		Dependencies: task.CloneDependencies(deps),
	}
}

// MarshalJSON renders the document as indented JSON.
func (d *Document) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// MarshalYAML renders the document as YAML.
func (d *Document) MarshalYAMLBytes() ([]byte, error) {
	return yaml.Marshal(d)
}

// WriteFile exports the document to path atomically, picking the format from
// the extension: .yaml/.yml write YAML, everything else JSON.
func (d *Document) WriteFile(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = d.MarshalYAMLBytes()
	default:
		data, err = d.MarshalJSONIndent()
	}
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return util.AtomicWriteFile(path, data, 0o644)
}

// Validate checks structural integrity: unique positive task IDs, valid date
// ranges, and dependencies that reference known tasks.
func (d *Document) Validate() error {
	seen := make(map[int]bool, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.ID <= 0 {
			return errors.ErrDocumentInvalid(fmt.Sprintf("task %q has non-positive id %d", t.Name, t.ID))
		}
		if seen[t.ID] {
			return errors.ErrDocumentInvalid(fmt.Sprintf("duplicate task id %d", t.ID))
		}
		seen[t.ID] = true
		if t.Start.IsZero() || t.End.IsZero() {
			return errors.ErrDocumentInvalid(fmt.Sprintf("task %d is missing dates", t.ID))
		}
		if t.End.Before(t.Start) {
			return errors.ErrDocumentInvalid(fmt.Sprintf("task %d ends before it starts", t.ID))
		}
	}
	for _, dep := range d.Dependencies {
		if !seen[dep.From] || !seen[dep.To] {
			return errors.ErrDocumentInvalid(fmt.Sprintf("dependency %d->%d references an unknown task", dep.From, dep.To))
		}
	}
	if path := task.CyclePath(d.Dependencies); path != nil {
		return errors.ErrDocumentInvalid(fmt.Sprintf("dependency cycle through task %d", path[0]))
	}
	return nil
}
