package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/speech"
)

type synthesizeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request, userID string) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid request body", err.Error()))
		return
	}

	// Synthesis is the slowest provider call; bound it independently of the
	// server-wide timeouts.
	ctx, cancel := context.WithTimeout(r.Context(), s.speechTimeout)
	defer cancel()

	result, err := s.speech.Synthesize(ctx, userID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	audioSource := "generated"
	if result.CacheHit {
		audioSource = "cache"
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Audio-Source", audioSource)
	w.Header().Set("X-API-Key-Source", string(result.KeyInfo.EffectiveSource))
	w.Header().Set("X-TTS-Model", result.Model)
	w.Header().Set("X-TTS-Voice", result.Voice)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Audio)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request, userID string) {
	cleared := s.speech.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Audio cache cleared",
		"cleared_entries": cleared,
	})
}

type modelsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	speech.ModelCatalog
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request, userID string) {
	catalog, err := s.speech.ListModels(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelsResponse{
		Success:      true,
		Message:      "Models retrieved successfully",
		ModelCatalog: catalog,
	})
}
