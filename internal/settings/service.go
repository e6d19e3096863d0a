package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/credential"
	"github.com/lingocards/lingocards/internal/inference"
)

// probeModel is the cheap model used for the one-token key test. It is
// deliberately not the user's configured chat model: the probe verifies the
// key, not the model.
const probeModel = "gpt-3.5-turbo"

// Service implements settings operations on top of the repository and the
// chat-completion client used for API key probes.
type Service struct {
	repo        Repository
	inference   inference.Client
	operatorKey string
	validate    *validator.Validate
}

func NewService(repo Repository, inferenceClient inference.Client, operatorKey string) *Service {
	return &Service{
		repo:        repo,
		inference:   inferenceClient,
		operatorKey: operatorKey,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Ensure returns the user's settings, materializing and persisting the
// defaults on first access. Calling it for an existing user is a plain read.
func (s *Service) Ensure(ctx context.Context, userID string) (*UserSettings, error) {
	existing, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo.FindByUser > %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	defaults := Defaults(userID)
	if err := s.repo.Save(ctx, defaults); err != nil {
		return nil, fmt.Errorf("repo.Save > %w", err)
	}
	return defaults, nil
}

// Get returns the redacted settings view, creating defaults when needed.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	settings, err := s.Ensure(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("Ensure > %w", err)
	}
	return NewView(settings, s.operatorKey), nil
}

// UpdateRequest is a partial settings patch. Nil fields are left untouched;
// for the enumerated string fields an empty string also means "no change",
// matching the auto-save behavior of the settings form.
//
// The personal API key is deliberately not patchable here: the stored key
// only changes through ValidateAndSaveKey, which probes it first.
type UpdateRequest struct {
	APIKeySource    *credential.Source    `json:"apiKeySource" validate:"omitempty,oneof=user system"`
	TTSSettings     *TTSSettingsPatch     `json:"ttsSettings"`
	GeneralSettings *GeneralSettingsPatch `json:"generalSettings"`
	AISettings      *AISettingsPatch      `json:"aiSettings"`
}

type TTSSettingsPatch struct {
	Model              string   `json:"model" validate:"omitempty,oneof=tts-1 tts-1-hd gpt-4o-mini-tts"`
	Voice              string   `json:"voice" validate:"omitempty,oneof=alloy ash coral echo fable onyx nova sage shimmer"`
	Speed              *float64 `json:"speed" validate:"omitempty,min=0.25,max=4"`
	ResponseFormat     string   `json:"responseFormat" validate:"omitempty,oneof=mp3 opus aac flac"`
	VoiceStyle         string   `json:"voiceStyle" validate:"omitempty,oneof=neutral formal calm dramatic educational"`
	CustomInstructions *string  `json:"customInstructions" validate:"omitempty,max=500"`
}

type GeneralSettingsPatch struct {
	CacheAudio          *bool  `json:"cacheAudio"`
	DefaultEnglishLevel string `json:"defaultEnglishLevel" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
}

type AISettingsPatch struct {
	ChatGPTModel string `json:"chatgptModel" validate:"omitempty,oneof=gpt-4.1 gpt-4.1-mini gpt-4o"`
}

// Update applies a partial patch and returns the redacted view of the result.
func (s *Service) Update(ctx context.Context, userID string, req UpdateRequest) (View, error) {
	if err := s.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				fields = append(fields, e.Field())
			}
			return View{}, apperror.New(apperror.KindClientInput,
				"Invalid settings",
				fmt.Sprintf("Invalid value for: %s", strings.Join(fields, ", ")))
		}
		return View{}, fmt.Errorf("validate.Struct > %w", err)
	}

	settings, err := s.Ensure(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("Ensure > %w", err)
	}

	applyPatch(settings, req)

	if err := s.repo.Save(ctx, settings); err != nil {
		return View{}, fmt.Errorf("repo.Save > %w", err)
	}
	return NewView(settings, s.operatorKey), nil
}

func applyPatch(settings *UserSettings, req UpdateRequest) {
	if req.APIKeySource != nil {
		settings.APIKeySource = *req.APIKeySource
	}
	if tts := req.TTSSettings; tts != nil {
		if tts.Model != "" {
			settings.TTSModel = tts.Model
		}
		if tts.Voice != "" {
			settings.TTSVoice = tts.Voice
		}
		if tts.Speed != nil {
			settings.TTSSpeed = *tts.Speed
		}
		if tts.ResponseFormat != "" {
			settings.TTSResponseFormat = tts.ResponseFormat
		}
		if tts.VoiceStyle != "" {
			settings.TTSVoiceStyle = tts.VoiceStyle
		}
		if tts.CustomInstructions != nil {
			settings.TTSCustomInstructions = *tts.CustomInstructions
		}
	}
	if general := req.GeneralSettings; general != nil {
		if general.CacheAudio != nil {
			settings.CacheAudio = *general.CacheAudio
		}
		if general.DefaultEnglishLevel != "" {
			settings.DefaultEnglishLevel = general.DefaultEnglishLevel
		}
	}
	if ai := req.AISettings; ai != nil {
		if ai.ChatGPTModel != "" {
			settings.ChatModel = ai.ChatGPTModel
		}
	}
}

// KeyTestResult is the outcome of probing an API key against the provider. A
// failed probe is a result, not an error: the caller still answers the
// request, just with success=false.
type KeyTestResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Details string           `json:"details"`
	KeyInfo *credential.Info `json:"apiKeyInfo,omitempty"`
}

// ValidateAndSaveKey probes the submitted key with a one-token completion
// and, when the probe succeeds, stores it and switches the user to their
// personal key.
func (s *Service) ValidateAndSaveKey(ctx context.Context, userID, rawKey string) (KeyTestResult, error) {
	key := strings.TrimSpace(rawKey)
	if key == "" {
		return KeyTestResult{
			Success: false,
			Message: "API key is required",
			Details: "Enter your OpenAI API key",
		}, nil
	}
	if !strings.HasPrefix(key, credential.SecretKeyPrefix) {
		return KeyTestResult{
			Success: false,
			Message: "Invalid API key format",
			Details: "OpenAI API keys start with 'sk-'",
		}, nil
	}

	if result, ok := s.probe(ctx, key); !ok {
		return result, nil
	}

	settings, err := s.Ensure(ctx, userID)
	if err != nil {
		return KeyTestResult{}, fmt.Errorf("Ensure > %w", err)
	}
	settings.OpenAIAPIKey = key
	settings.APIKeySource = credential.SourceUser
	if err := s.repo.Save(ctx, settings); err != nil {
		return KeyTestResult{}, fmt.Errorf("repo.Save > %w", err)
	}

	_, info := credential.Resolve(settings.APIKeySource, settings.OpenAIAPIKey, s.operatorKey)
	return KeyTestResult{
		Success: true,
		Message: "API key is valid and saved",
		Details: "The key was tested successfully and stored. Switched to your personal key.",
		KeyInfo: &info,
	}, nil
}

// TestCurrentKey probes whichever key the user's settings currently resolve
// to, without changing anything.
func (s *Service) TestCurrentKey(ctx context.Context, userID string) (KeyTestResult, error) {
	settings, err := s.Ensure(ctx, userID)
	if err != nil {
		return KeyTestResult{}, fmt.Errorf("Ensure > %w", err)
	}

	key, info := credential.Resolve(settings.APIKeySource, settings.OpenAIAPIKey, s.operatorKey)
	if key == "" {
		return KeyTestResult{
			Success: false,
			Message: "No API key configured",
			Details: "Set a personal key or check the system key",
			KeyInfo: &info,
		}, nil
	}

	if result, ok := s.probe(ctx, key); !ok {
		result.KeyInfo = &info
		return result, nil
	}

	sourceLabel := "System"
	usingLabel := "the system key"
	if info.EffectiveSource == credential.SourceUser {
		sourceLabel = "Personal"
		usingLabel = "your personal key"
	}
	return KeyTestResult{
		Success: true,
		Message: fmt.Sprintf("%s API key works!", sourceLabel),
		Details: fmt.Sprintf("Test succeeded using %s.", usingLabel),
		KeyInfo: &info,
	}, nil
}

// probe makes the cheapest possible completion call with the key. ok=false
// carries a user-facing failure result.
func (s *Service) probe(ctx context.Context, key string) (KeyTestResult, bool) {
	_, err := s.inference.Complete(ctx, inference.CompletionRequest{
		APIKey:    key,
		Model:     probeModel,
		Messages:  []inference.Message{{Role: inference.RoleUser, Content: "Test"}},
		MaxTokens: 1,
	})
	if err == nil {
		return KeyTestResult{}, true
	}
	return probeFailure(err), false
}

func probeFailure(err error) KeyTestResult {
	var providerErr *apperror.ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.StatusCode {
		case 401:
			return KeyTestResult{
				Success: false,
				Message: "API key is invalid or expired",
				Details: "Check the key on platform.openai.com",
			}
		case 402:
			return KeyTestResult{
				Success: false,
				Message: "Insufficient credits on the OpenAI account",
				Details: "Top up the balance at platform.openai.com/billing",
			}
		case 429:
			return KeyTestResult{
				Success: false,
				Message: "Rate limit exceeded",
				Details: "Try again later or check your plan",
			}
		case 500:
			return KeyTestResult{
				Success: false,
				Message: "OpenAI server problems",
				Details: "Try again later",
			}
		}
	}
	return KeyTestResult{
		Success: false,
		Message: "API key validation failed",
		Details: err.Error(),
	}
}

// Reset discards the user's settings, including any stored personal key, and
// recreates the defaults.
func (s *Service) Reset(ctx context.Context, userID string) (View, error) {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return View{}, fmt.Errorf("repo.Delete > %w", err)
	}
	defaults := Defaults(userID)
	if err := s.repo.Save(ctx, defaults); err != nil {
		return View{}, fmt.Errorf("repo.Save > %w", err)
	}
	return NewView(defaults, s.operatorKey), nil
}
