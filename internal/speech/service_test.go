package speech_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/credential"
	mock_inference "github.com/lingocards/lingocards/internal/mocks/inference"
	mock_settings "github.com/lingocards/lingocards/internal/mocks/settings"
	mock_speech "github.com/lingocards/lingocards/internal/mocks/speech"
	"github.com/lingocards/lingocards/internal/settings"
	"github.com/lingocards/lingocards/internal/speech"
)

const operatorKey = "sk-operator"

type fixture struct {
	settingsRepo *mock_settings.MockRepository
	synthesizer  *mock_speech.MockSynthesizer
	cache        *speech.Cache
	service      *speech.Service
}

func newFixture(t *testing.T, operator string, cacheCapacity int) *fixture {
	ctrl := gomock.NewController(t)
	settingsRepo := mock_settings.NewMockRepository(ctrl)
	synthesizer := mock_speech.NewMockSynthesizer(ctrl)
	cache := speech.NewCache(cacheCapacity)

	settingsService := settings.NewService(settingsRepo, mock_inference.NewMockClient(ctrl), operator)
	return &fixture{
		settingsRepo: settingsRepo,
		synthesizer:  synthesizer,
		cache:        cache,
		service:      speech.NewService(settingsService, synthesizer, cache, operator),
	}
}

func TestService_Synthesize(t *testing.T) {
	t.Run("empty text is a client error", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)
		_, err := f.service.Synthesize(context.Background(), "user-1", "   ")
		require.Error(t, err)
		assert.Equal(t, apperror.KindClientInput, apperror.KindOf(err))
	})

	t.Run("no credential", func(t *testing.T) {
		f := newFixture(t, "", 100)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)

		_, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.Error(t, err)
		assert.Equal(t, apperror.KindNoCredential, apperror.KindOf(err))
	})

	t.Run("synthesizes with the user's settings", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)

		stored := settings.Defaults("user-1")
		stored.TTSVoice = "nova"
		stored.TTSSpeed = 1.5
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req speech.SpeechRequest) ([]byte, error) {
				assert.Equal(t, operatorKey, req.APIKey)
				assert.Equal(t, "tts-1", req.Model)
				assert.Equal(t, "nova", req.Voice)
				assert.Equal(t, "valley", req.Input)
				assert.Equal(t, "mp3", req.ResponseFormat)
				assert.Equal(t, 1.5, req.Speed)
				assert.Empty(t, req.Instructions)
				return []byte("mp3 bytes"), nil
			})

		result, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3 bytes"), result.Audio)
		assert.False(t, result.CacheHit)
		assert.Equal(t, "tts-1", result.Model)
		assert.Equal(t, "nova", result.Voice)
		assert.Equal(t, credential.SourceSystem, result.KeyInfo.EffectiveSource)
	})

	t.Run("repeated request hits the cache, provider called once", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)

		stored := settings.Defaults("user-1")
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil).Times(2)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).Return([]byte("audio"), nil).Times(1)

		first, err := f.service.Synthesize(context.Background(), "user-1", "Valley")
		require.NoError(t, err)
		assert.False(t, first.CacheHit)

		// same text modulo case and whitespace
		second, err := f.service.Synthesize(context.Background(), "user-1", "  valley ")
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.Audio, second.Audio)
	})

	t.Run("caching disabled always calls the provider", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)

		stored := settings.Defaults("user-1")
		stored.CacheAudio = false
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil).Times(2)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).Return([]byte("audio"), nil).Times(2)

		_, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.NoError(t, err)
		result, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.NoError(t, err)
		assert.False(t, result.CacheHit)
		assert.Equal(t, 0, f.cache.Size())
	})

	t.Run("full cache refuses new clips but still serves audio", func(t *testing.T) {
		f := newFixture(t, operatorKey, 1)
		f.cache.Set("occupied", []byte("other"))

		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).Return([]byte("audio"), nil)

		result, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.NoError(t, err)
		assert.Equal(t, []byte("audio"), result.Audio)
		assert.Equal(t, 1, f.cache.Size())
	})

	t.Run("long input is truncated", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req speech.SpeechRequest) ([]byte, error) {
				assert.Len(t, req.Input, speech.MaxInputLength)
				return []byte("audio"), nil
			})

		_, err := f.service.Synthesize(context.Background(), "user-1", strings.Repeat("a", speech.MaxInputLength+500))
		require.NoError(t, err)
	})

	t.Run("out-of-range speed is clamped", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)

		stored := settings.Defaults("user-1")
		stored.TTSSpeed = 99
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req speech.SpeechRequest) ([]byte, error) {
				assert.Equal(t, speech.MaxSpeed, req.Speed)
				return []byte("audio"), nil
			})

		_, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.NoError(t, err)
	})

	t.Run("instructable model gets style instructions", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)

		stored := settings.Defaults("user-1")
		stored.TTSModel = settings.InstructableTTSModel
		stored.TTSVoiceStyle = "dramatic"
		stored.TTSCustomInstructions = "whisper the last word"
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req speech.SpeechRequest) ([]byte, error) {
				assert.Contains(t, req.Instructions, "suspenseful")
				assert.Contains(t, req.Instructions, "Additional instructions: whisper the last word")
				return []byte("audio"), nil
			})

		_, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.NoError(t, err)
	})

	t.Run("provider 400 maps to invalid TTS request", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).Return(nil,
			&apperror.ProviderError{StatusCode: 400, Message: "voice not supported"})

		_, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidTTSRequest, apperror.KindOf(err))
	})

	t.Run("provider 401 maps to invalid credential", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
		f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any()).Return(nil,
			&apperror.ProviderError{StatusCode: 401, Message: "Incorrect API key provided"})

		_, err := f.service.Synthesize(context.Background(), "user-1", "valley")
		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidCredential, apperror.KindOf(err))
	})
}

func TestService_ClearCache(t *testing.T) {
	f := newFixture(t, operatorKey, 100)
	f.cache.Set("a", []byte("1"))
	f.cache.Set("b", []byte("2"))

	assert.Equal(t, 2, f.service.ClearCache())
	assert.Equal(t, 0, f.cache.Size())
}

func TestService_ListModels(t *testing.T) {
	t.Run("filters speech models and caps the full list", func(t *testing.T) {
		f := newFixture(t, operatorKey, 100)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)

		ids := []string{
			"gpt-4.1", "gpt-4.1-mini", "tts-1", "tts-1-hd", "gpt-4o-mini-tts",
			"whisper-1", "gpt-4o-realtime-speech", "dall-e-3", "o3-mini",
			"gpt-4o", "gpt-4o-mini", "text-embedding-3-small",
		}
		f.synthesizer.EXPECT().ListModels(gomock.Any(), operatorKey).Return(ids, nil)

		catalog, err := f.service.ListModels(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 12, catalog.TotalModels)
		assert.Equal(t, []string{"tts-1", "tts-1-hd", "gpt-4o-mini-tts", "gpt-4o-realtime-speech"}, catalog.TTSModels)
		assert.Len(t, catalog.AllModels, 10)
		assert.Equal(t, credential.SourceSystem, catalog.KeyInfo.EffectiveSource)
	})

	t.Run("no credential", func(t *testing.T) {
		f := newFixture(t, "", 100)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)

		_, err := f.service.ListModels(context.Background(), "user-1")
		require.Error(t, err)
		assert.Equal(t, apperror.KindNoCredential, apperror.KindOf(err))
	})
}
