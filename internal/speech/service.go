package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/credential"
	"github.com/lingocards/lingocards/internal/settings"
)

const (
	// MaxInputLength is the provider's input ceiling; longer text is
	// truncated, not rejected.
	MaxInputLength = 4096

	MinSpeed = 0.25
	MaxSpeed = 4.0

	maxTTSModelIDs = 10
)

// Service synthesizes speech for flashcard text using the user's TTS
// settings and effective API key.
type Service struct {
	settings    *settings.Service
	synthesizer Synthesizer
	cache       *Cache
	operatorKey string
}

func NewService(settingsService *settings.Service, synthesizer Synthesizer, cache *Cache, operatorKey string) *Service {
	return &Service{
		settings:    settingsService,
		synthesizer: synthesizer,
		cache:       cache,
		operatorKey: operatorKey,
	}
}

// SynthesisResult carries the audio plus the metadata the transport layer
// exposes as response headers.
type SynthesisResult struct {
	Audio    []byte
	CacheHit bool
	KeyInfo  credential.Info
	Model    string
	Voice    string
	Format   string
}

// Synthesize produces audio for text. Identical text and settings reuse the
// cached clip when the user has caching enabled.
func (s *Service) Synthesize(ctx context.Context, userID, text string) (SynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return SynthesisResult{}, apperror.New(apperror.KindClientInput,
			"Text is required", "Provide the text to synthesize")
	}

	userSettings, err := s.settings.Ensure(ctx, userID)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("settings.Ensure > %w", err)
	}

	key, info := credential.Resolve(userSettings.APIKeySource, userSettings.OpenAIAPIKey, s.operatorKey)
	if key == "" {
		return SynthesisResult{}, apperror.NoCredential(info)
	}
	if !credential.IsWellFormed(key) {
		return SynthesisResult{}, (&apperror.Error{
			Kind:    apperror.KindInvalidCredentialFormat,
			Message: "Invalid OpenAI API key format",
		}).WithKeyInfo(info)
	}

	tts := userSettings.TTS()
	cacheKey := Key(text, tts)

	if userSettings.CacheAudio {
		if audio, ok := s.cache.Get(cacheKey); ok {
			slog.Default().Debug("serving cached audio",
				"userID", userID,
				"cacheSize", s.cache.Size(),
			)
			return SynthesisResult{
				Audio:    audio,
				CacheHit: true,
				KeyInfo:  info,
				Model:    tts.Model,
				Voice:    tts.Voice,
				Format:   tts.ResponseFormat,
			}, nil
		}
	}

	// Truncate by runes, not bytes: card text is frequently non-ASCII.
	input := text
	if runes := []rune(input); len(runes) > MaxInputLength {
		input = string(runes[:MaxInputLength])
	}

	request := SpeechRequest{
		APIKey:         key,
		Model:          tts.Model,
		Voice:          tts.Voice,
		Input:          input,
		ResponseFormat: tts.ResponseFormat,
		Speed:          clampSpeed(tts.Speed),
	}
	// Only the instructable model accepts delivery instructions; the tts-1
	// family rejects the parameter.
	if tts.Model == settings.InstructableTTSModel {
		request.Instructions = StyleInstructions(tts.VoiceStyle, tts.CustomInstructions)
	}

	slog.Default().Info("generating speech",
		"userID", userID,
		"model", tts.Model,
		"voice", tts.Voice,
		"keySource", string(info.EffectiveSource),
	)

	audio, err := s.synthesizer.Speak(ctx, request)
	if err != nil {
		return SynthesisResult{}, apperror.ClassifySpeech(err)
	}

	if userSettings.CacheAudio {
		if s.cache.Set(cacheKey, audio) {
			slog.Default().Debug("audio cached", "cacheSize", s.cache.Size())
		}
	}

	return SynthesisResult{
		Audio:   audio,
		KeyInfo: info,
		Model:   tts.Model,
		Voice:   tts.Voice,
		Format:  tts.ResponseFormat,
	}, nil
}

func clampSpeed(speed float64) float64 {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

// ClearCache drops every cached clip and returns how many were removed.
func (s *Service) ClearCache() int {
	return s.cache.Clear()
}

// ModelCatalog is the response of a model-availability check.
type ModelCatalog struct {
	TotalModels int             `json:"total_models"`
	TTSModels   []string        `json:"tts_models"`
	AllModels   []string        `json:"all_models"`
	KeyInfo     credential.Info `json:"apiKeyInfo"`
}

// ListModels queries the provider's model catalog with the user's effective
// key and picks out the speech-capable models.
func (s *Service) ListModels(ctx context.Context, userID string) (ModelCatalog, error) {
	userSettings, err := s.settings.Ensure(ctx, userID)
	if err != nil {
		return ModelCatalog{}, fmt.Errorf("settings.Ensure > %w", err)
	}

	key, info := credential.Resolve(userSettings.APIKeySource, userSettings.OpenAIAPIKey, s.operatorKey)
	if key == "" {
		return ModelCatalog{}, apperror.NoCredential(info)
	}

	ids, err := s.synthesizer.ListModels(ctx, key)
	if err != nil {
		return ModelCatalog{}, apperror.ClassifySpeech(err)
	}

	ttsIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.Contains(id, "tts") || strings.Contains(id, "speech") || id == "tts-1" || id == "tts-1-hd" {
			ttsIDs = append(ttsIDs, id)
		}
	}

	allIDs := ids
	if len(allIDs) > maxTTSModelIDs {
		allIDs = allIDs[:maxTTSModelIDs]
	}

	return ModelCatalog{
		TotalModels: len(ids),
		TTSModels:   ttsIDs,
		AllModels:   allIDs,
		KeyInfo:     info,
	}, nil
}
