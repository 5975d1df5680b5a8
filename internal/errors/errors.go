// Package errors provides structured error types for ganttkit.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for ganttkit.
const (
	// Task errors
	CodeTaskNotFound Code = "TASK_NOT_FOUND"
	CodeInvalidDate  Code = "INVALID_DATE"

	// Dependency errors
	CodeDependencyNotFound Code = "DEPENDENCY_NOT_FOUND"
	CodeDependencyCycle    Code = "DEPENDENCY_CYCLE"

	// Chart/document errors
	CodeChartNotFound   Code = "CHART_NOT_FOUND"
	CodeDocumentInvalid Code = "DOCUMENT_INVALID"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeTaskNotFound:       CategoryNotFound,
	CodeInvalidDate:        CategoryBadRequest,
	CodeDependencyNotFound: CategoryNotFound,
	CodeDependencyCycle:    CategoryConflict,
	CodeChartNotFound:      CategoryNotFound,
	CodeDocumentInvalid:    CategoryBadRequest,
	CodeConfigInvalid:      CategoryBadRequest,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// Error is the structured error type for ganttkit.
type Error struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *Error) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category for HTTP status mapping.
func (e *Error) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is an Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrTaskNotFound returns an error when a task doesn't exist.
func ErrTaskNotFound(id int) *Error {
	return &Error{
		Code: CodeTaskNotFound,
		What: fmt.Sprintf("task %d not found", id),
		Why:  "No task with this ID exists in the chart",
		Fix:  "List tasks with 'ganttkit list' to see valid IDs",
	}
}

// ErrInvalidDate returns an error when a date string cannot be parsed.
func ErrInvalidDate(field, value string) *Error {
	return &Error{
		Code: CodeInvalidDate,
		What: fmt.Sprintf("invalid %s date %q", field, value),
		Why:  "Dates must be calendar dates in YYYY-MM-DD form",
		Fix:  "Use a date like 2024-01-15",
	}
}

// ErrDateOrder returns an error when end precedes start.
func ErrDateOrder(start, end string) *Error {
	return &Error{
		Code: CodeInvalidDate,
		What: fmt.Sprintf("end date %s is before start date %s", end, start),
		Why:  "A task's end date must not precede its start date",
		Fix:  "Swap the dates or extend the end date",
	}
}

// ErrDependencyNotFound returns an error when a dependency doesn't exist.
func ErrDependencyNotFound(from, to int) *Error {
	return &Error{
		Code: CodeDependencyNotFound,
		What: fmt.Sprintf("no dependency from task %d to task %d", from, to),
		Why:  "No dependency links these two tasks",
		Fix:  "Check the chart's dependency list",
	}
}

// ErrDependencyCycle returns an error when a dependency would close a cycle.
func ErrDependencyCycle(from, to int) *Error {
	return &Error{
		Code: CodeDependencyCycle,
		What: fmt.Sprintf("dependency %d -> %d would create a cycle", from, to),
		Why:  "The dependency graph must stay acyclic for scheduling to terminate",
		Fix:  "Remove one of the dependencies on the path back from the target task",
	}
}

// ErrChartNotFound returns an error when a chart doesn't exist.
func ErrChartNotFound(id string) *Error {
	return &Error{
		Code: CodeChartNotFound,
		What: fmt.Sprintf("chart %s not found", id),
		Why:  "No chart with this ID exists in the database",
		Fix:  "Run 'ganttkit charts' to see stored charts",
	}
}

// ErrDocumentInvalid returns an error for an unparseable document.
func ErrDocumentInvalid(reason string) *Error {
	return &Error{
		Code: CodeDocumentInvalid,
		What: "document cannot be parsed",
		Why:  reason,
		Fix:  "Export a fresh document with 'ganttkit export' and compare the shapes",
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *Error {
	return &Error{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check .ganttkit/config.yaml and fix the invalid field",
	}
}

// AsError attempts to convert an error to an Error.
// Returns nil if the error is not an Error.
func AsError(err error) *Error {
	var gerr *Error
	if As(err, &gerr) {
		return gerr
	}
	return nil
}

// As is a convenience wrapper for errors.As.
func As(err error, target any) bool {
	return asError(err, target)
}

// asError implements errors.As behavior.
func asError(err error, target any) bool {
	if err == nil {
		return false
	}
	if gerr, ok := err.(*Error); ok {
		if t, ok := target.(**Error); ok {
			*t = gerr
			return true
		}
	}
	// Check unwrapped error
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return asError(unwrapper.Unwrap(), target)
	}
	return false
}

// Wrap wraps a generic error into an Error with unknown code.
func Wrap(err error, what string) *Error {
	return &Error{
		Code:  Code("UNKNOWN"),
		What:  what,
		Cause: err,
	}
}
