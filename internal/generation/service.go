// Package generation orchestrates AI flashcard-content generation: it
// resolves the user's credential and model preferences, builds the prompt,
// calls the provider and parses the response.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/credential"
	"github.com/lingocards/lingocards/internal/flashcard"
	"github.com/lingocards/lingocards/internal/inference"
	"github.com/lingocards/lingocards/internal/settings"
)

// MaxTextLength bounds the word or phrase a card can be generated for.
const MaxTextLength = 200

// Service generates card content and regenerates example lists.
type Service struct {
	settings         *settings.Service
	flashcards       flashcard.Repository
	inference        inference.Client
	operatorKey      string
	defaultChatModel string
	targetLanguage   string
}

func NewService(
	settingsService *settings.Service,
	flashcards flashcard.Repository,
	inferenceClient inference.Client,
	operatorKey string,
	defaultChatModel string,
	targetLanguage string,
) *Service {
	return &Service{
		settings:         settingsService,
		flashcards:       flashcards,
		inference:        inferenceClient,
		operatorKey:      operatorKey,
		defaultChatModel: defaultChatModel,
		targetLanguage:   targetLanguage,
	}
}

// GenerateRequest is one content-generation call.
type GenerateRequest struct {
	Text         string `json:"text"`
	EnglishLevel string `json:"englishLevel"`
	PromptType   string `json:"promptType"`
}

// GenerateResult is the response of a generation call. Result holds the
// structured card for a parsed full card, the example list for threeExamples,
// or the raw text for single-field kinds. A full card that failed to parse
// keeps Raw, sets Parsed=false and carries Message; the provider output is
// still handed to the client.
type GenerateResult struct {
	Result    any             `json:"result,omitempty"`
	Raw       string          `json:"raw"`
	Parsed    bool            `json:"parsed"`
	Message   string          `json:"message,omitempty"`
	KeyInfo   credential.Info `json:"apiKeyInfo"`
	ModelUsed string          `json:"modelUsed"`
}

// Generate produces flashcard content for one word or phrase.
func (s *Service) Generate(ctx context.Context, userID string, req GenerateRequest) (GenerateResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return GenerateResult{}, apperror.New(apperror.KindClientInput,
			"Text is required", "Provide the word or phrase to generate content for")
	}
	// Rune count, not bytes: the limit is characters and input is often
	// non-ASCII.
	if utf8.RuneCountInString(text) > MaxTextLength {
		return GenerateResult{}, apperror.New(apperror.KindClientInput,
			"Text is too long", fmt.Sprintf("Text must be at most %d characters", MaxTextLength))
	}
	if req.EnglishLevel == "" {
		return GenerateResult{}, apperror.New(apperror.KindClientInput,
			"English level is required", "Provide the learner's English level")
	}
	if !slices.Contains(settings.EnglishLevels, req.EnglishLevel) {
		return GenerateResult{}, apperror.New(apperror.KindClientInput,
			"Invalid English level", fmt.Sprintf("English level must be one of %s", strings.Join(settings.EnglishLevels, ", ")))
	}

	userSettings, err := s.settings.Ensure(ctx, userID)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("settings.Ensure > %w", err)
	}

	key, info := credential.Resolve(userSettings.APIKeySource, userSettings.OpenAIAPIKey, s.operatorKey)
	if key == "" {
		return GenerateResult{}, apperror.NoCredential(info)
	}

	model := userSettings.ChatModel
	if model == "" {
		model = s.defaultChatModel
	}

	kind := inference.ParsePromptKind(req.PromptType)
	prompt := inference.BuildPrompt(text, req.EnglishLevel, kind, s.targetLanguage)

	slog.Default().Info("generating card content",
		"userID", userID,
		"promptType", string(kind),
		"model", model,
		"keySource", string(info.EffectiveSource),
	)

	response, err := s.inference.Complete(ctx, inference.CompletionRequest{
		APIKey: key,
		Model:  model,
		Messages: []inference.Message{
			{Role: inference.RoleSystem, Content: inference.SystemInstruction(s.targetLanguage)},
			{Role: inference.RoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   kind.MaxTokens(),
	})
	if err != nil {
		return GenerateResult{}, apperror.ClassifyGeneration(err)
	}

	result := GenerateResult{
		Raw:       response.Content,
		KeyInfo:   info,
		ModelUsed: model,
	}

	switch kind {
	case inference.KindFullCard:
		content, ok := inference.ParseCardResponse(response.Content, text)
		if !ok {
			result.Parsed = false
			result.Message = "Couldn't parse AI response as JSON"
			return result, nil
		}
		result.Result = content
		result.Parsed = true
	case inference.KindThreeExamples:
		examples := inference.ParseExamplesResponse(response.Content)
		if len(examples) == 0 {
			result.Parsed = false
			result.Message = "Couldn't extract example sentences from AI response"
			return result, nil
		}
		result.Result = examples
		result.Parsed = true
	default:
		result.Result = response.Content
		result.Parsed = false
	}
	return result, nil
}

// RegenerateResult is the outcome of replacing a card's example list.
type RegenerateResult struct {
	Flashcard   *flashcard.Flashcard `json:"flashcard"`
	NewExamples []string             `json:"newExamples"`
	Message     string               `json:"message"`
	KeyInfo     credential.Info      `json:"apiKeyInfo"`
	ModelUsed   string               `json:"modelUsed"`
}

// RegenerateExamples replaces the whole example list of an owned card with
// three freshly generated sentences.
func (s *Service) RegenerateExamples(ctx context.Context, userID string, cardID int64) (RegenerateResult, error) {
	card, err := s.flashcards.FindByID(ctx, cardID, userID)
	if err != nil {
		return RegenerateResult{}, fmt.Errorf("flashcards.FindByID > %w", err)
	}
	if card == nil {
		return RegenerateResult{}, apperror.New(apperror.KindNotFound,
			"Flashcard not found", "The flashcard does not exist or belongs to another user")
	}

	userSettings, err := s.settings.Ensure(ctx, userID)
	if err != nil {
		return RegenerateResult{}, fmt.Errorf("settings.Ensure > %w", err)
	}

	key, info := credential.Resolve(userSettings.APIKeySource, userSettings.OpenAIAPIKey, s.operatorKey)
	if key == "" {
		return RegenerateResult{}, apperror.NoCredential(info)
	}

	model := userSettings.ChatModel
	if model == "" {
		model = s.defaultChatModel
	}

	prompt := inference.BuildRegenerateExamplesPrompt(card.Text, userSettings.DefaultEnglishLevel, card.Examples)

	response, err := s.inference.Complete(ctx, inference.CompletionRequest{
		APIKey: key,
		Model:  model,
		Messages: []inference.Message{
			{Role: inference.RoleSystem, Content: inference.SystemInstruction(s.targetLanguage)},
			{Role: inference.RoleUser, Content: prompt},
		},
		Temperature: 0.8,
		MaxTokens:   inference.KindThreeExamples.MaxTokens(),
	})
	if err != nil {
		return RegenerateResult{}, apperror.ClassifyGeneration(err)
	}

	examples := inference.ParseExamplesResponse(response.Content)
	if len(examples) == 0 {
		return RegenerateResult{}, apperror.New(apperror.KindGenerationFailed,
			"Error generating examples", "AI response did not contain example sentences")
	}

	if err := s.flashcards.UpdateExamples(ctx, card.ID, userID, examples); err != nil {
		return RegenerateResult{}, fmt.Errorf("flashcards.UpdateExamples > %w", err)
	}
	card.Examples = examples

	return RegenerateResult{
		Flashcard:   card,
		NewExamples: examples,
		Message:     "Examples regenerated successfully",
		KeyInfo:     info,
		ModelUsed:   model,
	}, nil
}
