// Package settings manages per-user application settings, including the
// personal OpenAI API key and speech-synthesis preferences.
package settings

import (
	"time"

	"github.com/lingocards/lingocards/internal/credential"
)

// Allowed values for the enumerated settings fields. These mirror the option
// catalogs served to the client via Options.
var (
	TTSModels       = []string{"tts-1", "tts-1-hd", "gpt-4o-mini-tts"}
	TTSVoices       = []string{"alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer"}
	ResponseFormats = []string{"mp3", "opus", "aac", "flac"}
	VoiceStyles     = []string{"neutral", "formal", "calm", "dramatic", "educational"}
	EnglishLevels   = []string{"A1", "A2", "B1", "B2", "C1", "C2"}
	ChatModels      = []string{"gpt-4.1", "gpt-4.1-mini", "gpt-4o"}
)

// InstructableTTSModel is the synthesis model that accepts free-text voice
// instructions; the plain tts-1 family rejects them.
const InstructableTTSModel = "gpt-4o-mini-tts"

const (
	DefaultTTSModel       = "tts-1"
	DefaultTTSVoice       = "alloy"
	DefaultTTSSpeed       = 1.0
	DefaultResponseFormat = "mp3"
	DefaultVoiceStyle     = "neutral"
	DefaultEnglishLevel   = "B1"
	DefaultChatModel      = "gpt-4.1-mini"

	// MaxCustomInstructions bounds the free-text voice instructions a user
	// may store.
	MaxCustomInstructions = 500
)

// UserSettings is one user's settings row. OpenAIAPIKey is a secret: it never
// leaves this package except through credential resolution, and View is the
// only serializable representation.
type UserSettings struct {
	UserID                string            `db:"user_id"`
	APIKeySource          credential.Source `db:"api_key_source"`
	OpenAIAPIKey          string            `db:"openai_api_key"`
	TTSModel              string            `db:"tts_model"`
	TTSVoice              string            `db:"tts_voice"`
	TTSSpeed              float64           `db:"tts_speed"`
	TTSResponseFormat     string            `db:"tts_response_format"`
	TTSVoiceStyle         string            `db:"tts_voice_style"`
	TTSCustomInstructions string            `db:"tts_custom_instructions"`
	CacheAudio            bool              `db:"cache_audio"`
	DefaultEnglishLevel   string            `db:"default_english_level"`
	ChatModel             string            `db:"chat_model"`
	CreatedAt             time.Time         `db:"created_at"`
	UpdatedAt             time.Time         `db:"updated_at"`
}

// Defaults returns a fresh settings record for a user who has none yet.
func Defaults(userID string) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		APIKeySource:        credential.SourceSystem,
		TTSModel:            DefaultTTSModel,
		TTSVoice:            DefaultTTSVoice,
		TTSSpeed:            DefaultTTSSpeed,
		TTSResponseFormat:   DefaultResponseFormat,
		TTSVoiceStyle:       DefaultVoiceStyle,
		CacheAudio:          true,
		DefaultEnglishLevel: DefaultEnglishLevel,
		ChatModel:           DefaultChatModel,
	}
}

// TTSSettings groups the speech-synthesis fields; the audio cache key is
// derived from exactly these values plus the input text.
type TTSSettings struct {
	Model              string  `json:"model"`
	Voice              string  `json:"voice"`
	Speed              float64 `json:"speed"`
	ResponseFormat     string  `json:"responseFormat"`
	VoiceStyle         string  `json:"voiceStyle"`
	CustomInstructions string  `json:"customInstructions"`
}

// TTS returns the speech-synthesis slice of the settings.
func (s *UserSettings) TTS() TTSSettings {
	return TTSSettings{
		Model:              s.TTSModel,
		Voice:              s.TTSVoice,
		Speed:              s.TTSSpeed,
		ResponseFormat:     s.TTSResponseFormat,
		VoiceStyle:         s.TTSVoiceStyle,
		CustomInstructions: s.TTSCustomInstructions,
	}
}

// GeneralSettings is the serialized shape of the non-TTS preferences.
type GeneralSettings struct {
	CacheAudio          bool   `json:"cacheAudio"`
	DefaultEnglishLevel string `json:"defaultEnglishLevel"`
}

// AISettings is the serialized shape of the generation preferences.
type AISettings struct {
	ChatGPTModel string `json:"chatgptModel"`
}

// View is the redacted, client-safe representation of UserSettings. The raw
// API key is replaced by HasAPIKey and the derived credential Info; building
// views anywhere else is a leak waiting to happen, so this is the single
// constructor.
type View struct {
	UserID          string            `json:"userId"`
	APIKeySource    credential.Source `json:"apiKeySource"`
	HasAPIKey       bool              `json:"hasApiKey"`
	APIKeyInfo      credential.Info   `json:"apiKeyInfo"`
	TTSSettings     TTSSettings       `json:"ttsSettings"`
	GeneralSettings GeneralSettings   `json:"generalSettings"`
	AISettings      AISettings        `json:"aiSettings"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NewView builds the redacted view of s against the given operator key.
func NewView(s *UserSettings, operatorKey string) View {
	_, info := credential.Resolve(s.APIKeySource, s.OpenAIAPIKey, operatorKey)
	return View{
		UserID:       s.UserID,
		APIKeySource: s.APIKeySource,
		HasAPIKey:    s.OpenAIAPIKey != "",
		APIKeyInfo:   info,
		TTSSettings:  s.TTS(),
		GeneralSettings: GeneralSettings{
			CacheAudio:          s.CacheAudio,
			DefaultEnglishLevel: s.DefaultEnglishLevel,
		},
		AISettings: AISettings{
			ChatGPTModel: s.ChatModel,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
