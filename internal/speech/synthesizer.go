package speech

import "context"

//go:generate mockgen -source=synthesizer.go -destination=../mocks/speech/mock_synthesizer.go -package=mock_speech

// Synthesizer is the text-to-speech capability of the provider. As with chat
// completion, the API key travels with each call.
type Synthesizer interface {
	Speak(ctx context.Context, req SpeechRequest) ([]byte, error)
	// ListModels returns the model IDs available to the key.
	ListModels(ctx context.Context, apiKey string) ([]string, error)
}

// SpeechRequest holds one synthesis call. Instructions is empty for models
// that do not accept delivery instructions.
type SpeechRequest struct {
	APIKey         string
	Model          string
	Voice          string
	Input          string
	ResponseFormat string
	Speed          float64
	Instructions   string
}
