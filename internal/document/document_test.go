package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/task"
)

func date(t *testing.T, s string) dates.Date {
	t.Helper()
	d, err := dates.Parse(s)
	require.NoError(t, err)
	return d
}

func sampleDoc(t *testing.T) *Document {
	return New("plan", []*task.Task{
		{
			ID: 1, Name: "design", Type: task.TypeTask,
			Start: date(t, "2024-01-01"), End: date(t, "2024-01-05"),
			Progress: 40, Color: task.ColorTask,
			Draggable: true, Resizable: true,
			Metadata: map[string]string{"owner": "ana"},
		},
		{
			ID: 2, Name: "build", Type: task.TypeTask,
			Start: date(t, "2024-01-06"), End: date(t, "2024-01-12"),
			Color: task.ColorTask, Draggable: true, Resizable: true,
			Metadata: map[string]string{},
		},
	}, []*task.Dependency{
		{From: 1, To: 2, Type: task.FinishToStart},
	})
}

func TestNewClonesInput(t *testing.T) {
	tasks := []*task.Task{{ID: 1, Name: "a", Start: date(t, "2024-01-01"), End: date(t, "2024-01-02")}}
	d := New("plan", tasks, nil)

	tasks[0].Name = "mutated"
	assert.Equal(t, "a", d.Tasks[0].Name)
}

func TestJSONRoundTrip(t *testing.T) {
	doc := sampleDoc(t)

	data, err := doc.MarshalJSONIndent()
	require.NoError(t, err)

	parsed, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, parsed.Tasks, 2)
	assert.Equal(t, "design", parsed.Tasks[0].Name)
	assert.Equal(t, "2024-01-01", parsed.Tasks[0].Start.String())
	assert.Equal(t, map[string]string{"owner": "ana"}, parsed.Tasks[0].Metadata)
	require.Len(t, parsed.Dependencies, 1)
	assert.Equal(t, task.FinishToStart, parsed.Dependencies[0].Type)
}

func TestYAMLRoundTrip(t *testing.T) {
	doc := sampleDoc(t)

	data, err := doc.MarshalYAMLBytes()
	require.NoError(t, err)

	parsed, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, parsed.Tasks, 2)
	assert.Equal(t, "2024-01-12", parsed.Tasks[1].End.String())
}

func TestWriteAndReadFile(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDoc(t)

	for _, name := range []string{"chart.json", "chart.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, doc.WriteFile(path))

		parsed, err := ReadFile(path)
		require.NoError(t, err, name)
		assert.Len(t, parsed.Tasks, 2, name)
	}
}

func TestParseJSONFieldAliases(t *testing.T) {
	data := []byte(`{
		"tasks": [
			{"id": 1, "text": "from dhtmlx", "start_date": "2024-03-01", "end_date": "2024-03-05", "parent": 0},
			{"id": 2, "title": "from jira-ish", "startDate": "2024-03-06", "due": "2024-03-10", "percentComplete": 30, "closed": true}
		],
		"dependencies": [
			{"source": 1, "target": 2}
		]
	}`)

	doc, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "from dhtmlx", doc.Tasks[0].Name)
	assert.Equal(t, "2024-03-01", doc.Tasks[0].Start.String())
	assert.Equal(t, 30, doc.Tasks[1].Progress)
	assert.True(t, doc.Tasks[1].Collapsed)
	require.Len(t, doc.Dependencies, 1)
	assert.Equal(t, 1, doc.Dependencies[0].From)
	assert.Equal(t, 2, doc.Dependencies[0].To)
	assert.Equal(t, task.FinishToStart, doc.Dependencies[0].Type, "missing type defaults")
}

func TestParseJSONBareArray(t *testing.T) {
	data := []byte(`[{"id": 1, "name": "only", "start": "2024-01-01", "end": "2024-01-02"}]`)

	doc, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Len(t, doc.Tasks, 1)
	assert.Empty(t, doc.Dependencies)
}

func TestParseJSONDefaults(t *testing.T) {
	data := []byte(`{"tasks": [{"id": 1, "name": "bare", "start": "2024-01-01", "end": "2024-01-02", "type": "weird"}]}`)

	doc, err := ParseJSON(data)
	require.NoError(t, err)
	got := doc.Tasks[0]
	assert.Equal(t, task.TypeTask, got.Type, "unknown type falls back")
	assert.Equal(t, task.ColorTask, got.Color)
	assert.True(t, got.Draggable)
	assert.True(t, got.Resizable)
	assert.NotNil(t, got.Metadata)
}

func TestParseJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"tasks": [`},
		{"no tasks field", `{"name": "x"}`},
		{"tasks not array", `{"tasks": 5}`},
		{"missing id", `{"tasks": [{"name": "x", "start": "2024-01-01", "end": "2024-01-02"}]}`},
		{"missing start", `{"tasks": [{"id": 1, "name": "x", "end": "2024-01-02"}]}`},
		{"bad date", `{"tasks": [{"id": 1, "name": "x", "start": "soon", "end": "2024-01-02"}]}`},
		{"duplicate ids", `{"tasks": [
			{"id": 1, "name": "a", "start": "2024-01-01", "end": "2024-01-02"},
			{"id": 1, "name": "b", "start": "2024-01-01", "end": "2024-01-02"}]}`},
		{"end before start", `{"tasks": [{"id": 1, "name": "x", "start": "2024-01-05", "end": "2024-01-02"}]}`},
		{"unknown dep target", `{"tasks": [{"id": 1, "name": "x", "start": "2024-01-01", "end": "2024-01-02"}],
			"dependencies": [{"fromId": 1, "toId": 9}]}`},
		{"dependency cycle", `{"tasks": [
			{"id": 1, "name": "a", "start": "2024-01-01", "end": "2024-01-02"},
			{"id": 2, "name": "b", "start": "2024-01-01", "end": "2024-01-02"}],
			"dependencies": [{"fromId": 1, "toId": 2}, {"fromId": 2, "toId": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestParseYAMLRejectsBadDate(t *testing.T) {
	data := []byte("tasks:\n  - id: 1\n    name: x\n    start: nope\n    end: 2024-01-02\n")
	_, err := ParseYAML(data)
	require.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errUnwrapAll(err)))
}

func errUnwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}

func TestValidateErrorCode(t *testing.T) {
	doc := &Document{Tasks: []*task.Task{{ID: 0, Name: "x"}}}
	err := doc.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDocumentInvalid, errors.AsError(err).Code)
}
