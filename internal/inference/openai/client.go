// Package openai implements the chat-completion client against the OpenAI
// HTTP API.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	"resty.dev/v3"

	"github.com/lingocards/lingocards/internal/apperror"
	"github.com/lingocards/lingocards/internal/inference"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the chat-completions endpoint. The API key is not part of
// the client: it arrives with each request because keys are resolved per user.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Client against the production API.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a Client against an alternate endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &Client{httpClient: client}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []inference.Message `json:"messages"`
	Temperature float32             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int           `json:"index"`
	Message      choiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type choiceMessage struct {
	Role    inference.Role `json:"role"`
	Content string         `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete implements the inference.Client interface.
func (client *Client) Complete(
	ctx context.Context,
	req inference.CompletionRequest,
) (inference.CompletionResponse, error) {
	requestBody := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+req.APIKey).
		SetBody(requestBody).
		SetResult(&chatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.CompletionResponse{}, &apperror.ProviderError{
			Message: "chat completion request failed",
			Err:     fmt.Errorf("httpClient.Post > %w", err),
		}
	}
	if response.IsError() {
		return inference.CompletionResponse{}, &apperror.ProviderError{
			StatusCode: response.StatusCode(),
			Message:    response.String(),
		}
	}

	responseBody := response.Result().(*chatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.CompletionResponse{}, &apperror.ProviderError{
			Message: fmt.Sprintf("empty response body or choices: %s", response.String()),
		}
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.CompletionResponse{}, &apperror.ProviderError{
			Message: fmt.Sprintf("empty response content: %s", response.String()),
		}
	}
	slog.Default().Debug("openai chat completion",
		"model", responseBody.Model,
		"promptTokens", responseBody.Usage.PromptTokens,
		"completionTokens", responseBody.Usage.CompletionTokens,
	)

	return inference.CompletionResponse{
		Content: content,
		Model:   responseBody.Model,
	}, nil
}
