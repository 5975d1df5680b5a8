package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/task"
)

// ReadFile imports a document from path, detecting the format from the
// extension.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	switch strings.ToLower(ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

// ParseYAML imports a YAML document. YAML imports are strict: they only come
// from our own exports.
func ParseYAML(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.ErrDocumentInvalid(err.Error())
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseJSON imports a JSON document. Parsing is tolerant: other gantt tools
// disagree on field names, so common aliases are accepted for each field.
func ParseJSON(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.ErrDocumentInvalid("not valid JSON")
	}
	root := gjson.ParseBytes(data)

	// A bare task array is accepted as a whole document.
	tasksNode := root
	if root.IsObject() {
		tasksNode = root.Get("tasks")
		if !tasksNode.Exists() {
			return nil, errors.ErrDocumentInvalid("document has no tasks field")
		}
	}
	if !tasksNode.IsArray() {
		return nil, errors.ErrDocumentInvalid("tasks is not an array")
	}

	d := &Document{
		Version: Version,
		Name:    root.Get("name").String(),
		Tasks:   []*task.Task{},
	}

	var parseErr error
	tasksNode.ForEach(func(_, node gjson.Result) bool {
		t, err := parseTask(node)
		if err != nil {
			parseErr = err
			return false
		}
		d.Tasks = append(d.Tasks, t)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	d.Dependencies = parseDependencies(root.Get("dependencies"))

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// pick returns the first existing field among aliases.
func pick(node gjson.Result, aliases ...string) gjson.Result {
	for _, a := range aliases {
		if v := node.Get(a); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func parseTask(node gjson.Result) (*task.Task, error) {
	id := pick(node, "id", "taskId")
	if !id.Exists() {
		return nil, errors.ErrDocumentInvalid("task is missing an id")
	}

	t := &task.Task{
		ID:        int(id.Int()),
		Name:      pick(node, "name", "title", "text").String(),
		Progress:  int(pick(node, "progress", "percentComplete").Int()),
		ParentID:  int(pick(node, "parentId", "parent_id", "parent").Int()),
		Collapsed: pick(node, "collapsed", "closed").Bool(),
		Color:     node.Get("color").String(),
		Readonly:  node.Get("readonly").Bool(),
		Draggable: true,
		Resizable: true,
		Metadata:  map[string]string{},
	}

	if v := node.Get("draggable"); v.Exists() {
		t.Draggable = v.Bool()
	}
	if v := node.Get("resizable"); v.Exists() {
		t.Resizable = v.Bool()
	}

	typ := task.Type(pick(node, "type", "taskType").String())
	if !task.IsValidType(typ) {
		typ = task.TypeTask
	}
	t.Type = typ
	if t.Color == "" {
		t.Color = task.DefaultColor(typ)
	}

	start := pick(node, "start", "startDate", "start_date")
	if !start.Exists() {
		return nil, errors.ErrDocumentInvalid(fmt.Sprintf("task %d is missing a start date", t.ID))
	}
	var err error
	if t.Start, err = dates.ParseField("start", start.String()); err != nil {
		return nil, err
	}

	end := pick(node, "end", "endDate", "end_date", "due")
	if !end.Exists() {
		return nil, errors.ErrDocumentInvalid(fmt.Sprintf("task %d is missing an end date", t.ID))
	}
	if t.End, err = dates.ParseField("end", end.String()); err != nil {
		return nil, err
	}

	node.Get("metadata").ForEach(func(k, v gjson.Result) bool {
		t.Metadata[k.String()] = v.String()
		return true
	})

	return t, nil
}

func parseDependencies(node gjson.Result) []*task.Dependency {
	deps := []*task.Dependency{}
	node.ForEach(func(_, dn gjson.Result) bool {
		d := &task.Dependency{
			From: int(pick(dn, "fromId", "from", "source").Int()),
			To:   int(pick(dn, "toId", "to", "target").Int()),
			Lag:  int(dn.Get("lag").Int()),
		}
		typ := task.DependencyType(dn.Get("type").String())
		if !task.IsValidDependencyType(typ) {
			typ = task.FinishToStart
		}
		d.Type = typ
		deps = append(deps, d)
		return true
	})
	return deps
}
