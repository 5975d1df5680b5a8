package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ganttkit/ganttkit/internal/db"
	"github.com/ganttkit/ganttkit/internal/document"
)

// --- Import / export ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := document.New(s.chartName, s.state.Tasks(), s.state.Dependencies())
	s.mu.Unlock()
	JSONResponse(w, doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 16<<20))
	if err != nil {
		JSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	doc, err := document.ParseJSON(data)
	if err != nil {
		HandleError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UpdateTasks(doc.Tasks)
	if err := s.state.UpdateDependencies(doc.Dependencies); err != nil {
		HandleError(w, err)
		return
	}
	if doc.Name != "" {
		s.chartName = doc.Name
	}
	JSONResponse(w, map[string]any{
		"tasks":        len(doc.Tasks),
		"dependencies": len(doc.Dependencies),
	})
}

// --- Persistence ---

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		JSONError(w, "chart persistence is not configured", http.StatusNotImplemented)
		return false
	}
	return true
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	list, err := s.store.ListCharts(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, list)
}

type saveChartRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req saveChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if req.Name != "" {
		s.chartName = req.Name
	}
	chart := &db.Chart{
		ID:           s.chartID,
		Name:         s.chartName,
		Tasks:        s.state.Tasks(),
		Dependencies: s.state.Dependencies(),
	}
	s.mu.Unlock()

	if err := s.store.SaveChart(r.Context(), chart); err != nil {
		HandleError(w, err)
		return
	}

	s.mu.Lock()
	s.chartID = chart.ID
	s.mu.Unlock()

	JSONResponseStatus(w, map[string]string{"id": chart.ID, "name": chart.Name}, http.StatusCreated)
}

func (s *Server) handleLoadChart(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := r.PathValue("id")

	chart, err := s.store.LoadChart(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UpdateTasks(chart.Tasks)
	if err := s.state.UpdateDependencies(chart.Dependencies); err != nil {
		HandleError(w, err)
		return
	}
	s.state.ClearHistory()
	s.chartID = chart.ID
	s.chartName = chart.Name
	JSONResponse(w, map[string]any{
		"id":    chart.ID,
		"name":  chart.Name,
		"tasks": len(chart.Tasks),
	})
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.DeleteChart(r.Context(), r.PathValue("id")); err != nil {
		HandleError(w, err)
		return
	}
	NoContent(w)
}
