package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/inference"
)

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name              string
		request           inference.CompletionRequest
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantResponse   inference.CompletionResponse
		wantError      bool
		wantStatusCode int
	}{
		{
			name: "Success",
			request: inference.CompletionRequest{
				APIKey: "sk-test-key",
				Model:  "gpt-4.1-mini",
				Messages: []inference.Message{
					{Role: inference.RoleSystem, Content: "You are a helpful assistant."},
					{Role: inference.RoleUser, Content: "Define valley."},
				},
				Temperature: 0.7,
				MaxTokens:   300,
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))

				var reqBody chatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Equal(t, "gpt-4.1-mini", reqBody.Model)
				assert.InDelta(t, 0.7, reqBody.Temperature, 0.001)
				assert.Equal(t, 300, reqBody.MaxTokens)
				assert.Len(t, reqBody.Messages, 2)

				mockResponse := chatCompletionResponse{
					ID:      "chatcmpl-123",
					Object:  "chat.completion",
					Created: 1677652288,
					Model:   "gpt-4.1-mini-2025-04-14",
					Choices: []choice{
						{
							Index: 0,
							Message: choiceMessage{
								Role:    inference.RoleAssistant,
								Content: "A valley is a low area between hills.",
							},
							FinishReason: "stop",
						},
					},
					Usage: usage{PromptTokens: 40, CompletionTokens: 12, TotalTokens: 52},
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(mockResponse))
			},
			wantResponse: inference.CompletionResponse{
				Content: "A valley is a low area between hills.",
				Model:   "gpt-4.1-mini-2025-04-14",
			},
		},
		{
			name: "Unauthorized surfaces the provider status code",
			request: inference.CompletionRequest{
				APIKey:   "sk-bad-key",
				Model:    "gpt-4.1-mini",
				Messages: []inference.Message{{Role: inference.RoleUser, Content: "hi"}},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
			},
			wantError:      true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "Rate limited surfaces the provider status code",
			request: inference.CompletionRequest{
				APIKey:   "sk-test-key",
				Model:    "gpt-4.1-mini",
				Messages: []inference.Message{{Role: inference.RoleUser, Content: "hi"}},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
			},
			wantError:      true,
			wantStatusCode: http.StatusTooManyRequests,
		},
		{
			name: "Empty choices is an error",
			request: inference.CompletionRequest{
				APIKey:   "sk-test-key",
				Model:    "gpt-4.1-mini",
				Messages: []inference.Message{{Role: inference.RoleUser, Content: "hi"}},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"id":"chatcmpl-123","choices":[]}`))
			},
			wantError: true,
		},
		{
			name: "Empty content is an error",
			request: inference.CompletionRequest{
				APIKey:   "sk-test-key",
				Model:    "gpt-4.1-mini",
				Messages: []inference.Message{{Role: inference.RoleUser, Content: "hi"}},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"id":"chatcmpl-123","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClientWithBaseURL(server.URL)
			defer func() {
				assert.NoError(t, client.Close())
			}()

			got, err := client.Complete(context.Background(), tt.request)
			if tt.wantError {
				require.Error(t, err)
				var providerErr *apperror.ProviderError
				require.True(t, errors.As(err, &providerErr))
				if tt.wantStatusCode != 0 {
					assert.Equal(t, tt.wantStatusCode, providerErr.StatusCode)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantResponse, got)
		})
	}
}
