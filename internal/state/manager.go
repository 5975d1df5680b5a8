package state

import (
	"log/slog"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/events"
	"github.com/ganttkit/ganttkit/internal/scheduler"
	"github.com/ganttkit/ganttkit/internal/task"
)

// DefaultMaxHistory bounds the undo ring when no override is configured.
const DefaultMaxHistory = 10

// Subscriber receives the state snapshot after every state-affecting
// operation. Snapshots are deep clones; mutating them affects nothing.
type Subscriber func(*State)

// Manager owns the canonical chart state and mediates all mutation through
// the Action dispatch protocol. Single-goroutine access by contract: there
// is no locking because the chart core never runs concurrently with itself.
type Manager struct {
	state *State
	tasks *task.Manager

	history    []*State
	future     []*State
	maxHistory int

	batching bool
	queue    []Action

	cache      map[int]*CachedTask
	visibleIDs []int
	dirtyTasks bool
	dirtyDeps  bool

	subscribers []subscription
	nextSubID   int

	logger    *slog.Logger
	publisher events.Publisher
}

type subscription struct {
	id int
	fn Subscriber
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithPublisher attaches an event publisher; the manager publishes a typed
// event per mutation for boundary consumers (websocket push, CLI watch).
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithMaxHistory overrides the undo ring capacity.
func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxHistory = n
		}
	}
}

// WithConfig seeds the chart config.
func WithConfig(cfg ChartConfig) Option {
	return func(m *Manager) { m.state.Config = cfg }
}

// NewManager creates a manager with a default empty state.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		state:      defaultState(),
		maxHistory: DefaultMaxHistory,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.tasks = task.NewManager(m.logger)
	m.tasks.Load(m.state.Tasks, m.state.Dependencies)
	m.dirtyTasks = true
	m.rebuildCaches()
	return m
}

// --- Read accessors ---

// State returns a deep clone of the current state.
func (m *Manager) State() *State {
	return m.state.Clone()
}

// Tasks returns a deep copy of the task list.
func (m *Manager) Tasks() []*task.Task {
	return task.CloneTasks(m.state.Tasks)
}

// Dependencies returns a deep copy of the dependency list.
func (m *Manager) Dependencies() []*task.Dependency {
	return task.CloneDependencies(m.state.Dependencies)
}

// TaskCache returns a copy of the derived cache entry for a task.
func (m *Manager) TaskCache(id int) (CachedTask, bool) {
	ct, ok := m.cache[id]
	if !ok {
		return CachedTask{}, false
	}
	c := *ct
	c.Task = ct.Task.Clone()
	return c, true
}

// VisibleTasks returns deep copies of the tasks inside the current
// virtual-scroll window, in row order.
func (m *Manager) VisibleTasks() []*task.Task {
	sc := m.state.Scroll
	out := make([]*task.Task, 0, sc.EndIndex-sc.StartIndex)
	for _, id := range m.visibleIDs[sc.StartIndex:sc.EndIndex] {
		if ct, ok := m.cache[id]; ok {
			out = append(out, ct.Task.Clone())
		}
	}
	return out
}

// VisibleOrder returns deep copies of every visible (no collapsed ancestor)
// task in row order, ignoring the scroll window. Text renderers that manage
// their own viewport use this instead of VisibleTasks.
func (m *Manager) VisibleOrder() []*task.Task {
	out := make([]*task.Task, 0, len(m.visibleIDs))
	for _, id := range m.visibleIDs {
		if ct, ok := m.cache[id]; ok {
			out = append(out, ct.Task.Clone())
		}
	}
	return out
}

// --- Dispatch ---

// Dispatch applies an action. Outside a batch this checkpoints history,
// clears the redo stack, applies, recomputes caches, and notifies
// subscribers. Inside a batch the action is queued for CommitBatchUpdate.
// A failed action leaves state, history, and caches untouched.
func (m *Manager) Dispatch(a Action) error {
	if m.batching {
		m.queue = append(m.queue, a)
		return nil
	}

	checkpoint := m.state.Clone()
	if err := m.apply(a); err != nil {
		return err
	}
	m.pushHistory(checkpoint)
	m.future = nil
	m.rebuildCaches()
	m.notify()
	m.publishAction(a)
	return nil
}

// BeginBatchUpdate enters batching mode: subsequent Dispatch calls queue
// instead of applying, so a multi-step edit lands as one undo step.
func (m *Manager) BeginBatchUpdate() {
	m.batching = true
	m.queue = m.queue[:0]
}

// CommitBatchUpdate applies all queued actions as one history-checkpointed
// unit and returns to idle. Individual action failures are logged and
// skipped; the batch commits what succeeded.
func (m *Manager) CommitBatchUpdate() {
	m.batching = false
	if len(m.queue) == 0 {
		return
	}

	checkpoint := m.state.Clone()
	applied := 0
	for _, a := range m.queue {
		if err := m.apply(a); err != nil {
			m.logger.Warn("batched action failed", "error", err)
			continue
		}
		applied++
	}
	m.queue = m.queue[:0]
	if applied == 0 {
		return
	}
	m.pushHistory(checkpoint)
	m.future = nil
	m.rebuildCaches()
	m.notify()
	m.publish(events.New(events.TypeStateChanged, "state", nil))
}

// apply routes one action to the task manager or the view state. The type
// switch is exhaustive over the Action set.
func (m *Manager) apply(a Action) error {
	switch act := a.(type) {
	case AddTask:
		if _, err := m.tasks.CreateTask(act.Input); err != nil {
			return err
		}
		m.syncLists()
		m.dirtyTasks = true
	case UpdateTask:
		if _, err := m.tasks.UpdateTask(act.ID, act.Patch); err != nil {
			return err
		}
		m.dirtyTasks = true
	case DeleteTask:
		if !m.tasks.DeleteTask(act.ID) {
			return errors.ErrTaskNotFound(act.ID)
		}
		m.syncLists()
		m.deselect(act.ID)
		m.dirtyTasks = true
		m.dirtyDeps = true
	case MoveTask:
		if _, err := m.tasks.MoveTask(act.ID, act.Start, act.End); err != nil {
			return err
		}
		m.dirtyTasks = true
	case AddDependency:
		if _, err := m.tasks.CreateDependency(act.From, act.To, act.Type, act.Lag); err != nil {
			return err
		}
		m.syncLists()
		m.dirtyDeps = true
	case DeleteDependency:
		if !m.tasks.DeleteDependency(act.From, act.To) {
			return errors.ErrDependencyNotFound(act.From, act.To)
		}
		m.syncLists()
		m.dirtyDeps = true
	case ChangeView:
		if IsValidViewMode(act.Mode) {
			m.state.View.Mode = act.Mode
		}
	case SelectTask:
		if !m.state.IsSelected(act.ID) {
			m.state.SelectedTaskIDs = append(m.state.SelectedTaskIDs, act.ID)
		}
	case DeselectTask:
		m.deselect(act.ID)
	case SetDates:
		m.state.View.Start = act.Start
		m.state.View.End = act.End
	}
	return nil
}

// syncLists re-adopts the task manager's slices after a structural change.
// The two views share the same underlying tasks; only the slice headers can
// diverge when the manager appends or removes.
func (m *Manager) syncLists() {
	m.state.Tasks = m.tasks.Tasks()
	m.state.Dependencies = m.tasks.Dependencies()
}

func (m *Manager) deselect(id int) {
	for i, sel := range m.state.SelectedTaskIDs {
		if sel == id {
			m.state.SelectedTaskIDs = append(m.state.SelectedTaskIDs[:i], m.state.SelectedTaskIDs[i+1:]...)
			return
		}
	}
}

// --- Bulk and view mutations ---

// UpdateTasks replaces the task list wholesale, e.g. when applying a
// scheduler result or importing a document. One history entry.
func (m *Manager) UpdateTasks(tasks []*task.Task) {
	checkpoint := m.state.Clone()
	m.state.Tasks = task.CloneTasks(tasks)
	m.tasks.Load(m.state.Tasks, m.state.Dependencies)
	m.syncLists()
	m.pushHistory(checkpoint)
	m.future = nil
	m.dirtyTasks = true
	m.rebuildCaches()
	m.notify()
	m.publish(events.New(events.TypeStateChanged, "state", nil))
}

// UpdateDependencies replaces the dependency list wholesale. A set that
// contains a cycle is rejected, consistent with AddDependency's rollback.
func (m *Manager) UpdateDependencies(deps []*task.Dependency) error {
	if path := task.CyclePath(deps); path != nil {
		m.logger.Warn("rejected dependency set containing a cycle", "path", path)
		return errors.ErrDependencyCycle(path[0], path[1])
	}
	checkpoint := m.state.Clone()
	m.state.Dependencies = task.CloneDependencies(deps)
	m.tasks.Load(m.state.Tasks, m.state.Dependencies)
	m.syncLists()
	m.pushHistory(checkpoint)
	m.future = nil
	m.dirtyDeps = true
	m.dirtyTasks = true
	m.rebuildCaches()
	m.notify()
	m.publish(events.New(events.TypeStateChanged, "state", nil))
	return nil
}

// ConfigPatch carries partial chart-config updates.
type ConfigPatch struct {
	ReadOnly     *bool
	AutoSchedule *bool
	DateFormat   *string
}

// UpdateConfig merges a partial config. History-checkpointed.
func (m *Manager) UpdateConfig(p ConfigPatch) {
	checkpoint := m.state.Clone()
	if p.ReadOnly != nil {
		m.state.Config.ReadOnly = *p.ReadOnly
	}
	if p.AutoSchedule != nil {
		m.state.Config.AutoSchedule = *p.AutoSchedule
	}
	if p.DateFormat != nil {
		m.state.Config.DateFormat = *p.DateFormat
	}
	m.pushHistory(checkpoint)
	m.future = nil
	m.rebuildCaches()
	m.notify()
}

// ViewPatch carries partial view-settings updates.
type ViewPatch struct {
	Mode  *ViewMode
	Start *dates.Date
	End   *dates.Date
}

// UpdateViewSettings merges a partial view update. History-checkpointed.
func (m *Manager) UpdateViewSettings(p ViewPatch) {
	checkpoint := m.state.Clone()
	if p.Mode != nil && IsValidViewMode(*p.Mode) {
		m.state.View.Mode = *p.Mode
	}
	if p.Start != nil {
		m.state.View.Start = *p.Start
	}
	if p.End != nil {
		m.state.View.End = *p.End
	}
	m.pushHistory(checkpoint)
	m.future = nil
	m.rebuildCaches()
	m.notify()
}

// ToggleTaskCollapse flips a task's collapsed flag, hiding or revealing its
// descendants. Returns TASK_NOT_FOUND for unknown IDs.
func (m *Manager) ToggleTaskCollapse(id int) error {
	t, ok := m.tasks.Task(id)
	if !ok {
		return errors.ErrTaskNotFound(id)
	}
	collapsed := !t.Collapsed
	return m.Dispatch(UpdateTask{ID: id, Patch: task.Patch{Collapsed: &collapsed}})
}

// UpdateScrollPosition sets the scroll offset and recomputes the window.
// Deliberately history-exempt: pure scrolling should not be undoable.
// Subscribers are still notified.
func (m *Manager) UpdateScrollPosition(scrollTop int) {
	if scrollTop < 0 {
		scrollTop = 0
	}
	m.state.Scroll.ScrollTop = scrollTop
	m.updateScrollWindow()
	m.notify()
}

// AutoSchedule runs the dependency-aware scheduler over the current chart
// and applies the result as a single undoable update.
func (m *Manager) AutoSchedule() {
	rescheduled := scheduler.Schedule(m.state.Tasks, m.state.Dependencies, m.logger)
	m.UpdateTasks(rescheduled)
	m.publish(events.New(events.TypeScheduleApplied, "state", nil))
}

// --- History ---

// pushHistory appends a checkpoint, evicting the oldest entry when the ring
// is full.
func (m *Manager) pushHistory(checkpoint *State) {
	m.history = append(m.history, checkpoint)
	if len(m.history) > m.maxHistory {
		m.history = m.history[1:]
	}
}

// Undo restores the most recent checkpoint. Returns false when history is
// empty.
func (m *Manager) Undo() bool {
	if len(m.history) == 0 {
		return false
	}
	m.future = append(m.future, m.state)
	m.state = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.restoreAfterHistoryMove("undo")
	return true
}

// Redo reverses the most recent undo. Returns false when the redo stack is
// empty.
func (m *Manager) Redo() bool {
	if len(m.future) == 0 {
		return false
	}
	m.history = append(m.history, m.state)
	m.state = m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.restoreAfterHistoryMove("redo")
	return true
}

func (m *Manager) restoreAfterHistoryMove(op string) {
	m.tasks.Load(m.state.Tasks, m.state.Dependencies)
	m.syncLists()
	m.dirtyTasks = true
	m.dirtyDeps = true
	m.rebuildCaches()
	m.notify()
	m.publish(events.New(events.TypeHistory, "history", events.HistoryChange{
		Op:        op,
		UndoDepth: len(m.history),
		RedoDepth: len(m.future),
	}))
}

// UndoStackSize returns the number of undoable checkpoints.
func (m *Manager) UndoStackSize() int {
	return len(m.history)
}

// RedoStackSize returns the number of redoable checkpoints.
func (m *Manager) RedoStackSize() int {
	return len(m.future)
}

// ClearHistory drops both stacks.
func (m *Manager) ClearHistory() {
	m.history = nil
	m.future = nil
}

// SetMaxHistorySize resizes the undo ring, evicting oldest entries as
// needed. Sizes below one are ignored.
func (m *Manager) SetMaxHistorySize(n int) {
	if n < 1 {
		return
	}
	m.maxHistory = n
	if len(m.history) > n {
		m.history = m.history[len(m.history)-n:]
	}
}

// --- Subscription ---

// Subscribe registers a callback, invokes it immediately with the current
// state so late subscribers see the initial snapshot, and returns an
// unsubscribe function. Notification is synchronous, in registration order.
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.nextSubID++
	id := m.nextSubID
	m.subscribers = append(m.subscribers, subscription{id: id, fn: fn})
	fn(m.state.Clone())
	return func() {
		for i, sub := range m.subscribers {
			if sub.id == id {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}

// notify sends one shared snapshot clone to every subscriber.
func (m *Manager) notify() {
	if len(m.subscribers) == 0 {
		return
	}
	snapshot := m.state.Clone()
	for _, sub := range m.subscribers {
		sub.fn(snapshot)
	}
}

// --- Event publishing ---

func (m *Manager) publish(ev events.Event) {
	if m.publisher != nil {
		m.publisher.Publish(ev)
	}
}

func (m *Manager) publishAction(a Action) {
	if m.publisher == nil {
		return
	}
	switch act := a.(type) {
	case AddTask:
		m.publish(events.New(events.TypeTaskCreated, "tasks", events.TaskChange{Name: act.Input.Name}))
	case UpdateTask:
		m.publish(events.New(events.TypeTaskUpdated, "tasks", events.TaskChange{TaskID: act.ID}))
	case MoveTask:
		m.publish(events.New(events.TypeTaskUpdated, "tasks", events.TaskChange{TaskID: act.ID}))
	case DeleteTask:
		m.publish(events.New(events.TypeTaskDeleted, "tasks", events.TaskChange{TaskID: act.ID}))
	case AddDependency:
		m.publish(events.New(events.TypeDependencyAdded, "dependencies", events.DependencyChange{FromID: act.From, ToID: act.To}))
	case DeleteDependency:
		m.publish(events.New(events.TypeDependencyRemoved, "dependencies", events.DependencyChange{FromID: act.From, ToID: act.To}))
	default:
		m.publish(events.New(events.TypeStateChanged, "state", nil))
	}
}
