package generation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/credential"
	"github.com/lingocards/lingocards/internal/flashcard"
	"github.com/lingocards/lingocards/internal/generation"
	"github.com/lingocards/lingocards/internal/inference"
	mock_flashcard "github.com/lingocards/lingocards/internal/mocks/flashcard"
	mock_inference "github.com/lingocards/lingocards/internal/mocks/inference"
	mock_settings "github.com/lingocards/lingocards/internal/mocks/settings"
	"github.com/lingocards/lingocards/internal/settings"
)

const (
	operatorKey      = "sk-operator"
	defaultChatModel = "gpt-4.1-mini"
	targetLanguage   = "Ukrainian"
)

type fixture struct {
	settingsRepo *mock_settings.MockRepository
	cards        *mock_flashcard.MockRepository
	client       *mock_inference.MockClient
	service      *generation.Service
}

func newFixture(t *testing.T, operator string) *fixture {
	ctrl := gomock.NewController(t)
	settingsRepo := mock_settings.NewMockRepository(ctrl)
	cards := mock_flashcard.NewMockRepository(ctrl)
	client := mock_inference.NewMockClient(ctrl)

	settingsService := settings.NewService(settingsRepo, client, operator)
	return &fixture{
		settingsRepo: settingsRepo,
		cards:        cards,
		client:       client,
		service: generation.NewService(
			settingsService, cards, client, operator, defaultChatModel, targetLanguage),
	}
}

func TestService_Generate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request generation.GenerateRequest
	}{
		{
			name:    "empty text",
			request: generation.GenerateRequest{Text: "   ", EnglishLevel: "B1"},
		},
		{
			name:    "text too long",
			request: generation.GenerateRequest{Text: strings.Repeat("a", 201), EnglishLevel: "B1"},
		},
		{
			name:    "non-ASCII text over the character limit",
			request: generation.GenerateRequest{Text: strings.Repeat("ґ", 201), EnglishLevel: "B1"},
		},
		{
			name:    "missing level",
			request: generation.GenerateRequest{Text: "valley"},
		},
		{
			name:    "unknown level",
			request: generation.GenerateRequest{Text: "valley", EnglishLevel: "Z9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, operatorKey)
			_, err := f.service.Generate(context.Background(), "user-1", tt.request)
			require.Error(t, err)
			assert.Equal(t, apperror.KindClientInput, apperror.KindOf(err))
		})
	}

	t.Run("character limit counts runes, not bytes", func(t *testing.T) {
		f := newFixture(t, operatorKey)

		// 200 Cyrillic characters are 400 bytes; the length check must accept
		// them, so validation proceeds to the missing English level.
		_, err := f.service.Generate(context.Background(), "user-1",
			generation.GenerateRequest{Text: strings.Repeat("ґ", 200)})
		require.Error(t, err)

		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "English level is required", appErr.Message)
	})
}

func TestService_Generate_NoCredential(t *testing.T) {
	f := newFixture(t, "")

	stored := settings.Defaults("user-1")
	f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil)

	_, err := f.service.Generate(context.Background(), "user-1",
		generation.GenerateRequest{Text: "valley", EnglishLevel: "B1"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNoCredential, apperror.KindOf(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	info, ok := appErr.KeyInfo.(credential.Info)
	require.True(t, ok)
	assert.Equal(t, credential.SourceNone, info.EffectiveSource)
}

func TestService_Generate_FullCard(t *testing.T) {
	tests := []struct {
		name        string
		rawResponse string
		wantParsed  bool
		wantMessage string
		check       func(t *testing.T, result generation.GenerateResult)
	}{
		{
			name:        "parsed full card",
			rawResponse: "```json\n" + `{"text":"x","translation":"долина","examples":["a","b","c"]}` + "\n```",
			wantParsed:  true,
			check: func(t *testing.T, result generation.GenerateResult) {
				content, ok := result.Result.(inference.CardContent)
				require.True(t, ok)
				assert.Equal(t, "valley", content.Text)
				assert.Equal(t, []string{"a", "b", "c"}, content.Examples)
			},
		},
		{
			name:        "unparseable response is passed through raw",
			rawResponse: "A valley is a low area between hills.",
			wantParsed:  false,
			wantMessage: "Couldn't parse AI response as JSON",
			check: func(t *testing.T, result generation.GenerateResult) {
				assert.Nil(t, result.Result)
				assert.Equal(t, "A valley is a low area between hills.", result.Raw)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, operatorKey)
			f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
			f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, req inference.CompletionRequest) (inference.CompletionResponse, error) {
					assert.Equal(t, operatorKey, req.APIKey)
					assert.Equal(t, defaultChatModel, req.Model)
					assert.InDelta(t, 0.7, req.Temperature, 0.001)
					assert.Equal(t, 600, req.MaxTokens)
					require.Len(t, req.Messages, 2)
					assert.Equal(t, inference.RoleSystem, req.Messages[0].Role)
					assert.Contains(t, req.Messages[0].Content, targetLanguage)
					return inference.CompletionResponse{Content: tt.rawResponse, Model: defaultChatModel}, nil
				})

			result, err := f.service.Generate(context.Background(), "user-1",
				generation.GenerateRequest{Text: "valley", EnglishLevel: "B1", PromptType: "completeFlashcard"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantParsed, result.Parsed)
			assert.Equal(t, tt.wantMessage, result.Message)
			assert.Equal(t, defaultChatModel, result.ModelUsed)
			assert.Equal(t, credential.SourceSystem, result.KeyInfo.EffectiveSource)
			tt.check(t, result)
		})
	}
}

func TestService_Generate_SingleFieldKindsPassThroughRaw(t *testing.T) {
	f := newFixture(t, operatorKey)
	f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
	f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req inference.CompletionRequest) (inference.CompletionResponse, error) {
			assert.Equal(t, 300, req.MaxTokens)
			return inference.CompletionResponse{Content: "долина"}, nil
		})

	result, err := f.service.Generate(context.Background(), "user-1",
		generation.GenerateRequest{Text: "valley", EnglishLevel: "B1", PromptType: "translateToTarget"})
	require.NoError(t, err)
	assert.False(t, result.Parsed)
	assert.Equal(t, "долина", result.Result)
	assert.Equal(t, "долина", result.Raw)
}

func TestService_Generate_ThreeExamples(t *testing.T) {
	f := newFixture(t, operatorKey)
	f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
	f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(inference.CompletionResponse{Content: "1. First one\n2. Second one"}, nil)

	result, err := f.service.Generate(context.Background(), "user-1",
		generation.GenerateRequest{Text: "valley", EnglishLevel: "B1", PromptType: "threeExamples"})
	require.NoError(t, err)
	assert.True(t, result.Parsed)
	assert.Equal(t, []string{"First one", "Second one"}, result.Result)
}

func TestService_Generate_PersonalKeyPreferred(t *testing.T) {
	f := newFixture(t, operatorKey)

	stored := settings.Defaults("user-1")
	stored.APIKeySource = credential.SourceUser
	stored.OpenAIAPIKey = "sk-personal"
	stored.ChatModel = "gpt-4o"
	f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(stored, nil)
	f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req inference.CompletionRequest) (inference.CompletionResponse, error) {
			assert.Equal(t, "sk-personal", req.APIKey)
			assert.Equal(t, "gpt-4o", req.Model)
			return inference.CompletionResponse{Content: "ok"}, nil
		})

	result, err := f.service.Generate(context.Background(), "user-1",
		generation.GenerateRequest{Text: "valley", EnglishLevel: "B1", PromptType: "definition"})
	require.NoError(t, err)
	assert.Equal(t, credential.SourceUser, result.KeyInfo.EffectiveSource)
	assert.Equal(t, "gpt-4o", result.ModelUsed)
}

func TestService_Generate_ProviderErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind apperror.Kind
	}{
		{
			name:     "401",
			err:      &apperror.ProviderError{StatusCode: 401, Message: "Incorrect API key provided"},
			wantKind: apperror.KindInvalidCredential,
		},
		{
			name:     "429",
			err:      &apperror.ProviderError{StatusCode: 429, Message: "Rate limit reached"},
			wantKind: apperror.KindRateLimited,
		},
		{
			name:     "quota message",
			err:      &apperror.ProviderError{StatusCode: 403, Message: "You exceeded your current quota"},
			wantKind: apperror.KindQuotaExceeded,
		},
		{
			name:     "unclassified",
			err:      &apperror.ProviderError{StatusCode: 500, Message: "The server had an error"},
			wantKind: apperror.KindGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, operatorKey)
			f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
			f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).
				Return(inference.CompletionResponse{}, tt.err)

			_, err := f.service.Generate(context.Background(), "user-1",
				generation.GenerateRequest{Text: "valley", EnglishLevel: "B1"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperror.KindOf(err))
		})
	}
}

func TestService_RegenerateExamples(t *testing.T) {
	existingCard := func() *flashcard.Flashcard {
		return &flashcard.Flashcard{
			ID:       5,
			UserID:   "user-1",
			Text:     "valley",
			Examples: flashcard.ExampleList{"The valley was green."},
		}
	}

	t.Run("replaces the whole example list", func(t *testing.T) {
		f := newFixture(t, operatorKey)
		f.cards.EXPECT().FindByID(gomock.Any(), int64(5), "user-1").Return(existingCard(), nil)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
		f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req inference.CompletionRequest) (inference.CompletionResponse, error) {
				assert.InDelta(t, 0.8, req.Temperature, 0.001)
				assert.Contains(t, req.Messages[1].Content, "The valley was green.")
				return inference.CompletionResponse{Content: `["x","y","z"]`}, nil
			})
		f.cards.EXPECT().UpdateExamples(gomock.Any(), int64(5), "user-1", []string{"x", "y", "z"}).Return(nil)

		result, err := f.service.RegenerateExamples(context.Background(), "user-1", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, result.NewExamples)
		assert.Equal(t, flashcard.ExampleList{"x", "y", "z"}, result.Flashcard.Examples)
		assert.Equal(t, "Examples regenerated successfully", result.Message)
	})

	t.Run("missing card is not found", func(t *testing.T) {
		f := newFixture(t, operatorKey)
		f.cards.EXPECT().FindByID(gomock.Any(), int64(5), "user-1").Return(nil, nil)

		_, err := f.service.RegenerateExamples(context.Background(), "user-1", 5)
		require.Error(t, err)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("empty parse result fails without touching the card", func(t *testing.T) {
		f := newFixture(t, operatorKey)
		f.cards.EXPECT().FindByID(gomock.Any(), int64(5), "user-1").Return(existingCard(), nil)
		f.settingsRepo.EXPECT().FindByUser(gomock.Any(), "user-1").Return(settings.Defaults("user-1"), nil)
		f.client.EXPECT().Complete(gomock.Any(), gomock.Any()).
			Return(inference.CompletionResponse{Content: "   \n  "}, nil)

		_, err := f.service.RegenerateExamples(context.Background(), "user-1", 5)
		require.Error(t, err)
		assert.Equal(t, apperror.KindGenerationFailed, apperror.KindOf(err))
	})
}
