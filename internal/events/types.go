// Package events provides event types and publishing infrastructure for
// ganttkit. The state manager notifies its subscribers synchronously; this
// package is the asynchronous bridge that fans those changes out to
// boundary consumers such as websocket clients.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type defines the type of event.
type Type string

const (
	// TypeStateChanged indicates the chart state changed in any way.
	TypeStateChanged Type = "state_changed"
	// TypeTaskCreated indicates a task was added.
	TypeTaskCreated Type = "task_created"
	// TypeTaskUpdated indicates a task was modified or moved.
	TypeTaskUpdated Type = "task_updated"
	// TypeTaskDeleted indicates a task (and its subtree) was removed.
	TypeTaskDeleted Type = "task_deleted"
	// TypeDependencyAdded indicates a dependency was created.
	TypeDependencyAdded Type = "dependency_added"
	// TypeDependencyRemoved indicates a dependency was deleted.
	TypeDependencyRemoved Type = "dependency_removed"
	// TypeScheduleApplied indicates the auto-scheduler rewrote task dates.
	TypeScheduleApplied Type = "schedule_applied"
	// TypeHistory indicates an undo or redo was applied.
	TypeHistory Type = "history"
)

// Event represents a published event.
type Event struct {
	ID    string `json:"id"`
	Type  Type   `json:"type"`
	Topic string `json:"topic"`
	Data  any    `json:"data,omitempty"`
	Time  time.Time `json:"time"`
}

// New creates a new event with a fresh ID and the current timestamp.
func New(eventType Type, topic string, data any) Event {
	return Event{
		ID:    uuid.NewString(),
		Type:  eventType,
		Topic: topic,
		Data:  data,
		Time:  time.Now(),
	}
}

// TaskChange is the payload for task events.
type TaskChange struct {
	TaskID int    `json:"task_id"`
	Name   string `json:"name,omitempty"`
}

// DependencyChange is the payload for dependency events.
type DependencyChange struct {
	FromID int `json:"from_id"`
	ToID   int `json:"to_id"`
}

// HistoryChange is the payload for undo/redo events.
type HistoryChange struct {
	Op        string `json:"op"` // undo or redo
	UndoDepth int    `json:"undo_depth"`
	RedoDepth int    `json:"redo_depth"`
}
