package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxTokens bounds the completion length when a request sets none.
const DefaultMaxTokens = 4096

var (
	// ErrMissingAPIKey is returned when a provider's credential is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyResponse is returned when a provider answers without content.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrUnknownProvider is returned for models no provider serves.
	ErrUnknownProvider = errors.New("unknown model provider")
)

// Client sends a single completion request to one model.
type Client interface {
	// Name identifies provider and model, e.g. "openai:gpt-4-turbo".
	Name() string

	// Complete blocks until the model answers or ctx is done.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single-turn prompt.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the text a model produced.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   Provider
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s: %s", e.Provider, e.Status, e.Body)
}

// maxErrorBody caps the response body kept in an APIError.
const maxErrorBody = 2048

func newAPIError(provider Provider, statusCode int, status string, body []byte) *APIError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Status:     status,
		Body:       strings.TrimSpace(string(body)),
	}
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}
