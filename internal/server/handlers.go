package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/workspace"
	"github.com/ShayCichocki/architect/pkg/models"
)

const maxBodyBytes = 32 << 20

type orchestrateRequest struct {
	Specification string              `json:"specification"`
	Files         []models.SourceFile `json:"files"`
	Tests         []string            `json:"tests"`
}

type queryRequest struct {
	Query string              `json:"query"`
	Files []models.SourceFile `json:"files"`
}

type queryResponse struct {
	Hits []models.RetrievalHit `json:"hits"`
}

type terminalRequest struct {
	Command string `json:"command"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	var req orchestrateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Specification) == "" {
		s.writeError(w, http.StatusBadRequest, "specification_required")
		return
	}

	result := s.engine.RunOrchestration(req.Specification, req.Files, req.Tests)
	s.logger.Debug("orchestrated",
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("files", len(req.Files)),
		zap.Int("steps", len(result.Plan)))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query_required")
		return
	}

	hits := s.engine.Query(workspace.IngestAll(req.Files), req.Query)
	s.writeJSON(w, http.StatusOK, queryResponse{Hits: hits})
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	var req terminalRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		s.writeError(w, http.StatusBadRequest, "command_required")
		return
	}

	result := s.engine.RunSelfHealingCommand(r.Context(), req.Command, s.workDir)
	s.writeJSON(w, http.StatusOK, result)
}

// decode reads a bounded JSON body, answering 400 invalid_request on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := readJSON(r, v); err != nil {
		s.logger.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	return true
}
