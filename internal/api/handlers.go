package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/scheduler"
	"github.com/ganttkit/ganttkit/internal/state"
	"github.com/ganttkit/ganttkit/internal/task"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok"})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.state.State()
	s.mu.Unlock()
	JSONResponse(w, st)
}

// --- Tasks ---

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tasks := s.state.Tasks()
	s.mu.Unlock()
	JSONResponse(w, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in task.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Dispatch(state.AddTask{Input: in}); err != nil {
		HandleError(w, err)
		return
	}
	tasks := s.state.Tasks()
	JSONResponseStatus(w, tasks[len(tasks)-1], http.StatusCreated)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	ct, found := s.state.TaskCache(id)
	s.mu.Unlock()
	if !found {
		HandleError(w, errors.ErrTaskNotFound(id))
		return
	}
	JSONResponse(w, ct)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch task.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Dispatch(state.UpdateTask{ID: id, Patch: patch}); err != nil {
		HandleError(w, err)
		return
	}
	ct, _ := s.state.TaskCache(id)
	JSONResponse(w, ct.Task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Dispatch(state.DeleteTask{ID: id}); err != nil {
		HandleError(w, err)
		return
	}
	NoContent(w)
}

type moveRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	start, err := dates.ParseField("start", req.Start)
	if err != nil {
		HandleError(w, err)
		return
	}
	end, err := dates.ParseField("end", req.End)
	if err != nil {
		HandleError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Dispatch(state.MoveTask{ID: id, Start: start, End: end}); err != nil {
		HandleError(w, err)
		return
	}
	ct, _ := s.state.TaskCache(id)
	JSONResponse(w, ct.Task)
}

func (s *Server) handleToggleCollapse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.ToggleTaskCollapse(id); err != nil {
		HandleError(w, err)
		return
	}
	ct, _ := s.state.TaskCache(id)
	JSONResponse(w, ct.Task)
}

// --- Dependencies ---

func (s *Server) handleListDependencies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	deps := s.state.Dependencies()
	s.mu.Unlock()
	JSONResponse(w, deps)
}

type dependencyRequest struct {
	FromID int                 `json:"fromId"`
	ToID   int                 `json:"toId"`
	Type   task.DependencyType `json:"type"`
	Lag    int                 `json:"lag"`
}

func (s *Server) handleCreateDependency(w http.ResponseWriter, r *http.Request) {
	var req dependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = task.FinishToStart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.state.Dispatch(state.AddDependency{
		From: req.FromID, To: req.ToID, Type: req.Type, Lag: req.Lag,
	})
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, req, http.StatusCreated)
}

func (s *Server) handleDeleteDependency(w http.ResponseWriter, r *http.Request) {
	from, ok := pathID(w, r, "from")
	if !ok {
		return
	}
	to, ok := pathID(w, r, "to")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Dispatch(state.DeleteDependency{From: from, To: to}); err != nil {
		HandleError(w, err)
		return
	}
	NoContent(w)
}

// --- History ---

type historyResponse struct {
	Applied   bool `json:"applied"`
	UndoDepth int  `json:"undoDepth"`
	RedoDepth int  `json:"redoDepth"`
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	applied := s.state.Undo()
	resp := historyResponse{applied, s.state.UndoStackSize(), s.state.RedoStackSize()}
	s.mu.Unlock()
	JSONResponse(w, resp)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	applied := s.state.Redo()
	resp := historyResponse{applied, s.state.UndoStackSize(), s.state.RedoStackSize()}
	s.mu.Unlock()
	JSONResponse(w, resp)
}

// --- Scheduling ---

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.state.AutoSchedule()
	tasks := s.state.Tasks()
	s.mu.Unlock()
	JSONResponse(w, tasks)
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tasks := s.state.Tasks()
	deps := s.state.Dependencies()
	s.mu.Unlock()

	analysis, err := scheduler.CriticalPath(tasks, deps)
	if err != nil {
		JSONError(w, err.Error(), http.StatusConflict)
		return
	}
	JSONResponse(w, analysis)
}

// --- Helpers ---

// pathID parses an integer path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		JSONError(w, "invalid "+name+" path parameter", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
