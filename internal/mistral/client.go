// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mistral wraps the Mistral chat-completion API behind a small
// adapter. Mistral's endpoint is OpenAI-compatible, so the client reuses
// the go-openai transport with a custom base URL.
package mistral

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Fixed completion parameters. Deterministic pipeline inputs pair with a
// fixed sampling configuration; there is no per-request tuning surface.
const (
	Model            = "mistral-medium"
	Temperature      = 0.85
	MaxTokens        = 1000
	TopP             = 0.95
	PresencePenalty  = 0.6
	FrequencyPenalty = 0.5
)

// Sentinel errors for upstream failure categories. Callers match with
// errors.Is (or errors.As for *RateLimitError) to pick fallback text and
// HTTP status.
var (
	ErrAuth              = errors.New("mistral: authentication rejected")
	ErrRateLimited       = errors.New("mistral: rate limited")
	ErrTimeout           = errors.New("mistral: request timed out")
	ErrServer            = errors.New("mistral: upstream server error")
	ErrMalformedResponse = errors.New("mistral: malformed completion response")
)

// RateLimitError carries the upstream retry hint alongside ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("mistral: rate limited (retry after %s)", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string
	Content string
}

// Chat roles accepted by the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completion is a successful model response.
type Completion struct {
	Text string
	Raw  openai.ChatCompletionResponse
}

// Client calls the Mistral completion API.
type Client struct {
	client *openai.Client
	logger *zap.Logger
}

// NewClient builds a client for the given endpoint. baseURL must point at
// the OpenAI-compatible API root (e.g. https://api.mistral.ai/v1).
func NewClient(apiKey, baseURL string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
	}, nil
}

// Complete sends the messages and returns the first choice. Failures are
// mapped to the sentinel error categories; there are no retries and no
// timeout beyond what ctx carries.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:            Model,
		Messages:         toOpenAIMessages(messages),
		Temperature:      Temperature,
		MaxTokens:        MaxTokens,
		TopP:             TopP,
		PresencePenalty:  PresencePenalty,
		FrequencyPenalty: FrequencyPenalty,
	}

	c.logger.Debug("Sending completion request",
		zap.String("model", Model),
		zap.Int("message_count", len(messages)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		mapped := c.mapError(err)
		c.logger.Error("Completion request failed",
			zap.Error(err),
			zap.String("category", categoryOf(mapped)),
		)
		return nil, mapped
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("Completion response missing message",
			zap.String("response_id", resp.ID),
			zap.Int("choice_count", len(resp.Choices)),
		)
		return nil, ErrMalformedResponse
	}

	c.logger.Debug("Completion request succeeded",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return &Completion{
		Text: resp.Choices[0].Message.Content,
		Raw:  resp,
	}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// mapError translates transport and API failures into sentinel categories.
func (c *Client) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuth, apiErr.Message)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			// The upstream does not expose a retry hint; advise a fixed
			// one-minute backoff.
			return &RateLimitError{RetryAfter: time.Minute}
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: status %d: %s", ErrServer, apiErr.HTTPStatusCode, apiErr.Message)
		default:
			return fmt.Errorf("mistral: API error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
	}

	return fmt.Errorf("mistral: request failed: %w", err)
}

func categoryOf(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}
