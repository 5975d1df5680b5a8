package task

import (
	"log/slog"
	"math"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/errors"
)

// Input carries the caller-supplied fields for task creation. Zero-valued
// fields fall back to defaults: today's date, a one-day span, the type's
// default color.
type Input struct {
	// ID requests a specific ID. Zero (or a taken ID) lets the manager
	// assign the smallest unused positive integer.
	ID        int
	Name      string
	Start     string
	End       string
	Progress  int
	Type      Type
	ParentID  int
	Collapsed bool
	Color     string
	Draggable *bool
	Resizable *bool
	Readonly  bool
	Metadata  map[string]string
}

// Patch carries partial updates for a task. Nil fields are left unchanged.
type Patch struct {
	Name      *string
	Start     *string
	End       *string
	Progress  *int
	Type      *Type
	ParentID  *int
	Collapsed *bool
	Color     *string
	Draggable *bool
	Resizable *bool
	Readonly  *bool
	// Metadata replaces the whole bag when non-nil.
	Metadata map[string]string
}

// Manager owns the authoritative task and dependency lists and keeps the
// derived caches (children, dependency index) consistent across mutations.
// It assumes single-goroutine access, matching the chart core's contract.
type Manager struct {
	tasks  []*Task
	deps   []*Dependency
	nextID int
	logger *slog.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{nextID: 1, logger: logger}
}

// Load replaces the manager's content with the given tasks and dependencies
// and rebuilds all derived caches. The slices are adopted, not copied.
func (m *Manager) Load(tasks []*Task, deps []*Dependency) {
	m.tasks = tasks
	m.deps = deps
	m.nextID = 1
	m.rebuildHierarchy()
	m.rebuildDependencyIndex()
}

// Tasks returns the manager's task list. The slice and tasks are the
// manager's own; callers that hold on to them must clone.
func (m *Manager) Tasks() []*Task {
	return m.tasks
}

// Dependencies returns the manager's dependency list.
func (m *Manager) Dependencies() []*Dependency {
	return m.deps
}

// Task returns the task with the given ID.
func (m *Manager) Task(id int) (*Task, bool) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// allocateID returns the requested ID when it is free, otherwise the
// smallest unused positive integer. The counter is monotonic and skips
// IDs already taken by loaded or explicitly-numbered tasks.
func (m *Manager) allocateID(requested int) int {
	taken := make(map[int]bool, len(m.tasks))
	for _, t := range m.tasks {
		taken[t.ID] = true
	}
	if requested > 0 && !taken[requested] {
		return requested
	}
	for taken[m.nextID] {
		m.nextID++
	}
	id := m.nextID
	m.nextID++
	return id
}

// CreateTask creates a task from the given input. Date strings that cannot
// be parsed fail with an INVALID_DATE error and leave the task list
// unchanged. On success the new task is appended and the parent's children
// cache is recomputed.
func (m *Manager) CreateTask(in Input) (*Task, error) {
	var start, end dates.Date
	var err error

	if in.Start != "" {
		if start, err = dates.ParseField("start", in.Start); err != nil {
			return nil, err
		}
	} else {
		start = dates.Today()
	}

	typ := in.Type
	if !IsValidType(typ) {
		typ = TypeTask
	}

	switch {
	case in.End != "":
		if end, err = dates.ParseField("end", in.End); err != nil {
			return nil, err
		}
	case typ == TypeMilestone:
		end = start
	default:
		end = start.AddDays(1)
	}

	if end.Before(start) {
		return nil, errors.ErrDateOrder(start.String(), end.String())
	}

	color := in.Color
	if color == "" {
		color = DefaultColor(typ)
	}

	draggable := true
	if in.Draggable != nil {
		draggable = *in.Draggable
	}
	resizable := true
	if in.Resizable != nil {
		resizable = *in.Resizable
	}

	metadata := in.Metadata
	if metadata == nil {
		metadata = make(map[string]string)
	}

	t := &Task{
		ID:         m.allocateID(in.ID),
		Name:       in.Name,
		Start:      start,
		End:        end,
		Progress:   clampProgress(in.Progress),
		Type:       typ,
		ParentID:   in.ParentID,
		Children:   []int{},
		DependsOn:  []int{},
		Dependents: []int{},
		Collapsed:  in.Collapsed,
		Color:      color,
		Draggable:  draggable,
		Resizable:  resizable,
		Readonly:   in.Readonly,
		Metadata:   metadata,
	}

	m.tasks = append(m.tasks, t)
	m.rebuildHierarchy()
	return t, nil
}

// UpdateTask merges the patch into the task with the given ID. An unknown ID
// fails with TASK_NOT_FOUND; an unparseable date fails with INVALID_DATE and
// leaves the task untouched. A parent change recomputes the children caches.
func (m *Manager) UpdateTask(id int, p Patch) (*Task, error) {
	t, ok := m.Task(id)
	if !ok {
		return nil, errors.ErrTaskNotFound(id)
	}

	// Parse dates up front so a bad value cannot leave a half-applied patch.
	start, end := t.Start, t.End
	var err error
	if p.Start != nil {
		if start, err = dates.ParseField("start", *p.Start); err != nil {
			return nil, err
		}
	}
	if p.End != nil {
		if end, err = dates.ParseField("end", *p.End); err != nil {
			return nil, err
		}
	}
	if end.Before(start) {
		return nil, errors.ErrDateOrder(start.String(), end.String())
	}

	t.Start, t.End = start, end
	parentChanged := false
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Progress != nil {
		t.Progress = clampProgress(*p.Progress)
	}
	if p.Type != nil && IsValidType(*p.Type) {
		t.Type = *p.Type
	}
	if p.ParentID != nil && *p.ParentID != t.ParentID {
		t.ParentID = *p.ParentID
		parentChanged = true
	}
	if p.Collapsed != nil {
		t.Collapsed = *p.Collapsed
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Draggable != nil {
		t.Draggable = *p.Draggable
	}
	if p.Resizable != nil {
		t.Resizable = *p.Resizable
	}
	if p.Readonly != nil {
		t.Readonly = *p.Readonly
	}
	if p.Metadata != nil {
		t.Metadata = p.Metadata
	}

	if parentChanged {
		m.rebuildHierarchy()
	}
	return t, nil
}

// MoveTask sets a task's dates directly, preserving everything else. This is
// the drag fast path used by the dispatcher.
func (m *Manager) MoveTask(id int, start, end dates.Date) (*Task, error) {
	t, ok := m.Task(id)
	if !ok {
		return nil, errors.ErrTaskNotFound(id)
	}
	if end.Before(start) {
		return nil, errors.ErrDateOrder(start.String(), end.String())
	}
	t.Start, t.End = start, end
	return t, nil
}

// DeleteTask removes the task and all descendants reachable through ParentID
// chains, plus every dependency touching a removed task. Returns false when
// the ID is unknown.
//
// Descendants are collected by scanning ParentID rather than walking the
// Children cache, so a stale cache cannot strand orphans.
func (m *Manager) DeleteTask(id int) bool {
	if _, ok := m.Task(id); !ok {
		return false
	}

	doomed := map[int]bool{id: true}
	for grew := true; grew; {
		grew = false
		for _, t := range m.tasks {
			if !doomed[t.ID] && doomed[t.ParentID] {
				doomed[t.ID] = true
				grew = true
			}
		}
	}

	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !doomed[t.ID] {
			kept = append(kept, t)
		}
	}
	m.tasks = kept

	keptDeps := m.deps[:0]
	for _, d := range m.deps {
		if !doomed[d.From] && !doomed[d.To] {
			keptDeps = append(keptDeps, d)
		}
	}
	m.deps = keptDeps

	m.rebuildHierarchy()
	m.rebuildDependencyIndex()
	return true
}

// CreateDependency links two tasks. Creation is idempotent: an existing
// (from, to, type) dependency is returned as-is. A dependency that would
// close a cycle is rolled back and rejected with DEPENDENCY_CYCLE.
//
// The add-then-verify-then-rollback order is deliberate: correctness comes
// from the rollback, not from pre-checking the graph.
func (m *Manager) CreateDependency(from, to int, typ DependencyType, lag int) (*Dependency, error) {
	if _, ok := m.Task(from); !ok {
		return nil, errors.ErrTaskNotFound(from)
	}
	if _, ok := m.Task(to); !ok {
		return nil, errors.ErrTaskNotFound(to)
	}
	if !IsValidDependencyType(typ) {
		typ = FinishToStart
	}

	for _, d := range m.deps {
		if d.From == from && d.To == to && d.Type == typ {
			return d, nil
		}
	}

	dep := &Dependency{From: from, To: to, Type: typ, Lag: lag}
	m.deps = append(m.deps, dep)
	m.rebuildDependencyIndex()

	if HasCycle(m.deps) {
		m.deps = m.deps[:len(m.deps)-1]
		m.rebuildDependencyIndex()
		m.logger.Warn("rejected dependency that would create a cycle",
			"from", from, "to", to, "type", typ)
		return nil, errors.ErrDependencyCycle(from, to)
	}
	return dep, nil
}

// DeleteDependency removes the first dependency matching (from, to),
// ignoring type. Returns whether a match was found.
func (m *Manager) DeleteDependency(from, to int) bool {
	for i, d := range m.deps {
		if d.From == from && d.To == to {
			m.deps = append(m.deps[:i], m.deps[i+1:]...)
			m.rebuildDependencyIndex()
			return true
		}
	}
	return false
}

// HasCircularDependencies reports whether the current dependency graph
// contains a cycle. Pure query, no mutation.
func (m *Manager) HasCircularDependencies() bool {
	return HasCycle(m.deps)
}

// Descendants returns the task's descendants, walking the children cache
// recursively in depth-first order.
func (m *Manager) Descendants(id int) []*Task {
	t, ok := m.Task(id)
	if !ok {
		return nil
	}
	var out []*Task
	for _, childID := range t.Children {
		if child, ok := m.Task(childID); ok {
			out = append(out, child)
			out = append(out, m.Descendants(childID)...)
		}
	}
	return out
}

// Ancestors returns the task's ancestors walking the ParentID chain upward,
// nearest first. A malformed parent cycle terminates the walk.
func (m *Manager) Ancestors(id int) []*Task {
	var out []*Task
	seen := map[int]bool{id: true}
	t, ok := m.Task(id)
	for ok && t.ParentID != 0 && !seen[t.ParentID] {
		seen[t.ParentID] = true
		if t, ok = m.Task(t.ParentID); ok {
			out = append(out, t)
		}
	}
	return out
}

// TaskDuration returns the inclusive day count of a task's span.
func (m *Manager) TaskDuration(t *Task) int {
	return t.Duration()
}

// ProjectProgress averages progress across a project's direct children and
// all deeper descendants, rounded to the nearest integer. Returns 0 when the
// task is missing, not a project, or has no subtasks.
func (m *Manager) ProjectProgress(id int) int {
	t, ok := m.Task(id)
	if !ok || t.Type != TypeProject {
		return 0
	}
	subtasks := m.Descendants(id)
	if len(subtasks) == 0 {
		return 0
	}
	sum := 0
	for _, s := range subtasks {
		sum += s.Progress
	}
	return int(math.Round(float64(sum) / float64(len(subtasks))))
}

// rebuildHierarchy recomputes every task's Children cache from ParentID in
// one pass. Invoked once per hierarchy-affecting mutation so the cache can
// never drift from the authoritative ParentID field.
func (m *Manager) rebuildHierarchy() {
	byID := make(map[int]*Task, len(m.tasks))
	for _, t := range m.tasks {
		t.Children = t.Children[:0]
		byID[t.ID] = t
	}
	for _, t := range m.tasks {
		if t.ParentID == 0 {
			continue
		}
		if parent, ok := byID[t.ParentID]; ok {
			parent.Children = append(parent.Children, t.ID)
		}
	}
}

// rebuildDependencyIndex recomputes every task's DependsOn/Dependents arrays
// from the dependency list.
func (m *Manager) rebuildDependencyIndex() {
	byID := make(map[int]*Task, len(m.tasks))
	for _, t := range m.tasks {
		t.DependsOn = t.DependsOn[:0]
		t.Dependents = t.Dependents[:0]
		byID[t.ID] = t
	}
	for _, d := range m.deps {
		if succ, ok := byID[d.To]; ok {
			succ.DependsOn = append(succ.DependsOn, d.From)
		}
		if pred, ok := byID[d.From]; ok {
			pred.Dependents = append(pred.Dependents, d.To)
		}
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
