// Package server exposes the HTTP API: content generation, speech synthesis,
// settings and flashcard CRUD.
package server

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/lingocards/lingocards/internal/flashcard"
	"github.com/lingocards/lingocards/internal/generation"
	"github.com/lingocards/lingocards/internal/settings"
	"github.com/lingocards/lingocards/internal/speech"
)

// Server wires the services into HTTP routes.
type Server struct {
	generation     *generation.Service
	speech         *speech.Service
	settings       *settings.Service
	flashcards     flashcard.Repository
	speechTimeout  time.Duration
	allowedOrigins []string
}

func New(
	generationService *generation.Service,
	speechService *speech.Service,
	settingsService *settings.Service,
	flashcards flashcard.Repository,
	speechTimeout time.Duration,
	allowedOrigins []string,
) *Server {
	return &Server{
		generation:     generationService,
		speech:         speechService,
		settings:       settingsService,
		flashcards:     flashcards,
		speechTimeout:  speechTimeout,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/openai/generate-flashcard", requireUser(s.handleGenerate))
	mux.HandleFunc("POST /api/flashcards/{id}/regenerate-examples", requireUser(s.handleRegenerateExamples))

	mux.HandleFunc("POST /api/tts", requireUser(s.handleSynthesize))
	mux.HandleFunc("POST /api/tts/clear-cache", requireUser(s.handleClearCache))
	mux.HandleFunc("GET /api/tts/models", requireUser(s.handleListModels))

	mux.HandleFunc("GET /api/settings", requireUser(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", requireUser(s.handleUpdateSettings))
	mux.HandleFunc("POST /api/settings/validate-api-key", requireUser(s.handleValidateKey))
	mux.HandleFunc("GET /api/settings/test-current-key", requireUser(s.handleTestCurrentKey))
	mux.HandleFunc("POST /api/settings/reset", requireUser(s.handleResetSettings))
	mux.HandleFunc("GET /api/settings/options", requireUser(s.handleSettingsOptions))

	mux.HandleFunc("GET /api/flashcards", requireUser(s.handleListFlashcards))
	mux.HandleFunc("POST /api/flashcards", requireUser(s.handleCreateFlashcard))
	mux.HandleFunc("PUT /api/flashcards/{id}", requireUser(s.handleUpdateFlashcard))
	mux.HandleFunc("DELETE /api/flashcards/{id}", requireUser(s.handleDeleteFlashcard))

	return corsMiddleware(s.allowedOrigins, h2c.NewHandler(mux, &http2.Server{}))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
