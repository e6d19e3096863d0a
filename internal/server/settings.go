package server

import (
	"encoding/json"
	"net/http"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := s.settings.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, userID string) {
	var req settings.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid request body", err.Error()))
		return
	}

	view, err := s.settings.Update(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type validateKeyRequest struct {
	OpenAIAPIKey string `json:"openaiApiKey"`
}

func (s *Server) handleValidateKey(w http.ResponseWriter, r *http.Request, userID string) {
	var req validateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid request body", err.Error()))
		return
	}

	result, err := s.settings.ValidateAndSaveKey(r.Context(), userID, req.OpenAIAPIKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, keyTestStatus(result), result)
}

func (s *Server) handleTestCurrentKey(w http.ResponseWriter, r *http.Request, userID string) {
	result, err := s.settings.TestCurrentKey(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, keyTestStatus(result), result)
}

// A failed key test is answered, not errored: the client renders the result
// either way.
func keyTestStatus(result settings.KeyTestResult) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := s.settings.Reset(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSettingsOptions(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, settings.Options())
}
