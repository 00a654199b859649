package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/types"
)

// CandidatePayload is one candidate document in a run request. Name drives
// the candidate's output naming.
type CandidatePayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// RunRequest represents the request body for POST /api/runs.
type RunRequest struct {
	Requisition string             `json:"requisition"`
	Candidates  []CandidatePayload `json:"candidates"`
	Mode        string             `json:"mode,omitempty"`
	Archive     bool               `json:"archive,omitempty"`
}

// RunResponse represents the response for POST /api/runs.
type RunResponse struct {
	Result      *types.BatchResult `json:"result"`
	ArchivePath string             `json:"archive_path,omitempty"`
}

// handleCreateRun executes a screening batch synchronously and returns the
// full batch result.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Requisition == "" {
		s.errorResponse(w, http.StatusBadRequest, "requisition is required")
		return
	}
	if len(req.Candidates) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "at least one candidate is required")
		return
	}
	for _, c := range req.Candidates {
		if c.Name == "" || c.Content == "" {
			s.errorResponse(w, http.StatusBadRequest, "candidate name and content are required")
			return
		}
	}

	sources := make([]pipeline.CandidateSource, len(req.Candidates))
	for i, c := range req.Candidates {
		sources[i] = pipeline.CandidateSource{Name: c.Name, Raw: []byte(c.Content)}
	}

	result, err := s.runner.Run(r.Context(), []byte(req.Requisition), sources)
	if err != nil {
		s.logger.Error("run failed", zap.Error(err))
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := RunResponse{Result: result}
	if req.Archive && s.archiver != nil {
		archivePath, err := s.archiver.ArchiveToFile(result.RunRoot)
		if err != nil {
			s.logger.Warn("failed to archive run", zap.Error(err))
		} else {
			resp.ArchivePath = archivePath
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListRuns returns recent runs from the database.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "run history requires a configured database")
		return
	}

	runs, err := s.database.ListRuns(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to list runs", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
