package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Code: CodeTaskNotFound,
		What: "task 7 not found",
		Why:  "no such id",
	}
	want := "task 7 not found: no such id"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := ErrConfigInvalid("db.dsn", "unreadable").WithCause(cause)

	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{ErrTaskNotFound(1), 404},
		{ErrInvalidDate("start", "not-a-date"), 400},
		{ErrDependencyCycle(1, 2), 409},
		{ErrChartNotFound("abc"), 404},
		{&Error{Code: Code("UNKNOWN"), What: "boom"}, 500},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.status {
			t.Errorf("HTTPStatus() for %s = %d, want %d", tt.err.Code, got, tt.status)
		}
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := ErrTaskNotFound(1)
	b := ErrTaskNotFound(99)
	if !stderrors.Is(a, b) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(a, ErrDependencyCycle(1, 2)) {
		t.Error("errors with different codes should not match")
	}
}

func TestAsError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrInvalidDate("end", "xyz"))
	gerr := AsError(wrapped)
	if gerr == nil {
		t.Fatal("AsError should unwrap through fmt.Errorf")
	}
	if gerr.Code != CodeInvalidDate {
		t.Errorf("Code = %s, want %s", gerr.Code, CodeInvalidDate)
	}

	if AsError(fmt.Errorf("plain")) != nil {
		t.Error("AsError on a plain error should return nil")
	}
}

func TestMarshalJSON(t *testing.T) {
	err := ErrDependencyCycle(3, 1).WithCause(fmt.Errorf("during import"))
	data, merr := json.Marshal(err)
	if merr != nil {
		t.Fatalf("marshal: %v", merr)
	}

	var out map[string]any
	if uerr := json.Unmarshal(data, &out); uerr != nil {
		t.Fatalf("unmarshal: %v", uerr)
	}
	if out["code"] != string(CodeDependencyCycle) {
		t.Errorf("code = %v, want %s", out["code"], CodeDependencyCycle)
	}
	if out["cause"] != "during import" {
		t.Errorf("cause = %v, want 'during import'", out["cause"])
	}
}

func TestUserMessage(t *testing.T) {
	msg := ErrInvalidDate("start", "01/02/2024").UserMessage()
	for _, part := range []string{"Error:", "Why:", "Fix:"} {
		if !strings.Contains(msg, part) {
			t.Errorf("UserMessage missing %q section:\n%s", part, msg)
		}
	}
}
