package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/generation"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, userID string) {
	var req generation.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid request body", err.Error()))
		return
	}

	result, err := s.generation.Generate(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type regenerateResponse struct {
	Success bool `json:"success"`
	generation.RegenerateResult
}

func (s *Server) handleRegenerateExamples(w http.ResponseWriter, r *http.Request, userID string) {
	cardID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid flashcard ID", err.Error()))
		return
	}

	result, err := s.generation.RegenerateExamples(r.Context(), userID, cardID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regenerateResponse{Success: true, RegenerateResult: result})
}
