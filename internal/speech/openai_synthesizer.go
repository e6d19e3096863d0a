package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/lingocards/lingocards/internal/apperror"
)

// OpenAISynthesizer implements Synthesizer against the OpenAI audio API. A
// fresh API client is built per call because the key differs per user.
type OpenAISynthesizer struct{}

func NewOpenAISynthesizer() *OpenAISynthesizer {
	return &OpenAISynthesizer{}
}

func (s *OpenAISynthesizer) Speak(ctx context.Context, req SpeechRequest) ([]byte, error) {
	client := openai.NewClient(req.APIKey)

	response, err := client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(req.Model),
		Input:          req.Input,
		Voice:          openai.SpeechVoice(req.Voice),
		ResponseFormat: openai.SpeechResponseFormat(req.ResponseFormat),
		Speed:          req.Speed,
		Instructions:   req.Instructions,
	})
	if err != nil {
		return nil, asProviderError("CreateSpeech", err)
	}
	defer response.Close()

	audio, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll > %w", err)
	}
	return audio, nil
}

func (s *OpenAISynthesizer) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	client := openai.NewClient(apiKey)

	response, err := client.ListModels(ctx)
	if err != nil {
		return nil, asProviderError("ListModels", err)
	}

	ids := make([]string, 0, len(response.Models))
	for _, model := range response.Models {
		ids = append(ids, model.ID)
	}
	return ids, nil
}

// asProviderError converts the SDK error into the neutral provider failure
// shape the classifier understands.
func asProviderError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &apperror.ProviderError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &apperror.ProviderError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Err:        err,
		}
	}
	return fmt.Errorf("%s > %w", op, err)
}
