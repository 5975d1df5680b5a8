package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	gkerrors "github.com/ganttkit/ganttkit/internal/errors"
)

// APIError is the standard error response format.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Fix   string `json:"fix,omitempty"`
}

// JSONResponse writes a successful JSON response.
func JSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// JSONResponseStatus writes a JSON response with a specific status code.
func JSONResponseStatus(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// JSONError writes a simple error response.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{Error: message})
}

// HandleError inspects the error type and writes the appropriate response:
// structured errors carry their own status and code, anything else is a 500.
func HandleError(w http.ResponseWriter, err error) {
	var gkErr *gkerrors.Error
	if stderrors.As(err, &gkErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(gkErr.HTTPStatus())
		_ = json.NewEncoder(w).Encode(APIError{
			Error: gkErr.What,
			Code:  string(gkErr.Code),
			Fix:   gkErr.Fix,
		})
		return
	}
	JSONError(w, err.Error(), http.StatusInternalServerError)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
