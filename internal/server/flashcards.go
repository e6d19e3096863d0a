package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/flashcard"
)

// flashcardRequest is the create/update payload. Example is the deprecated
// singular field older clients still send.
type flashcardRequest struct {
	Text             string   `json:"text"`
	Transcription    string   `json:"transcription"`
	Translation      string   `json:"translation"`
	ShortDescription string   `json:"shortDescription"`
	Explanation      string   `json:"explanation"`
	Examples         []string `json:"examples"`
	Example          string   `json:"example"`
	Notes            string   `json:"notes"`
	IsAIGenerated    *bool    `json:"isAIGenerated"`
	CategoryID       *int64   `json:"categoryId"`
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request, userID string) {
	cards, err := s.flashcards.FindByUser(r.Context(), userID, r.URL.Query().Get("categoryId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if cards == nil {
		cards = []flashcard.Flashcard{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request, userID string) {
	var req flashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid request body", err.Error()))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, apperror.New(apperror.KindClientInput, "Text is required", ""))
		return
	}
	if !s.checkCategory(w, r, userID, req.CategoryID) {
		return
	}

	card := &flashcard.Flashcard{
		UserID:           userID,
		CategoryID:       req.CategoryID,
		Text:             strings.TrimSpace(req.Text),
		Transcription:    strings.TrimSpace(req.Transcription),
		Translation:      strings.TrimSpace(req.Translation),
		ShortDescription: strings.TrimSpace(req.ShortDescription),
		Explanation:      strings.TrimSpace(req.Explanation),
		Examples:         flashcard.ProcessExamples(req.Examples, req.Example),
		Example:          strings.TrimSpace(req.Example),
		Notes:            strings.TrimSpace(req.Notes),
	}
	if req.IsAIGenerated != nil {
		card.IsAIGenerated = *req.IsAIGenerated
	}

	if err := s.flashcards.Create(r.Context(), card); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request, userID string) {
	cardID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid flashcard ID", err.Error()))
		return
	}

	var req flashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid request body", err.Error()))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, apperror.New(apperror.KindClientInput, "Text is required", ""))
		return
	}

	card, err := s.flashcards.FindByID(r.Context(), cardID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if card == nil {
		writeError(w, apperror.New(apperror.KindNotFound, "Flashcard not found", ""))
		return
	}
	if !s.checkCategory(w, r, userID, req.CategoryID) {
		return
	}

	card.CategoryID = req.CategoryID
	card.Text = strings.TrimSpace(req.Text)
	card.Transcription = strings.TrimSpace(req.Transcription)
	card.Translation = strings.TrimSpace(req.Translation)
	card.ShortDescription = strings.TrimSpace(req.ShortDescription)
	card.Explanation = strings.TrimSpace(req.Explanation)
	card.Examples = flashcard.ProcessExamples(req.Examples, req.Example)
	card.Example = strings.TrimSpace(req.Example)
	card.Notes = strings.TrimSpace(req.Notes)
	if req.IsAIGenerated != nil {
		card.IsAIGenerated = *req.IsAIGenerated
	}

	if err := s.flashcards.Update(r.Context(), card); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request, userID string) {
	cardID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, apperror.New(apperror.KindClientInput, "Invalid flashcard ID", err.Error()))
		return
	}

	deleted, err := s.flashcards.Delete(r.Context(), cardID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, apperror.New(apperror.KindNotFound, "Flashcard not found", ""))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Flashcard deleted"})
}

// checkCategory verifies an optional category reference and answers the
// request itself on failure.
func (s *Server) checkCategory(w http.ResponseWriter, r *http.Request, userID string, categoryID *int64) bool {
	if categoryID == nil {
		return true
	}
	exists, err := s.flashcards.CategoryExists(r.Context(), *categoryID, userID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if !exists {
		writeError(w, apperror.New(apperror.KindNotFound, "Category not found", ""))
		return false
	}
	return true
}
