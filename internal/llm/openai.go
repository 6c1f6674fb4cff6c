package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API. Perplexity
// speaks the same protocol under a different base URL.
type OpenAIClient struct {
	http     *http.Client
	provider Provider
	model    string
	baseURL  string
}

// NewOpenAIClient creates a client for provider (openai or perplexity). The
// API key is sent as a bearer token by an oauth2 transport layered over the
// base client's transport. A nil base uses http.DefaultClient.
func NewOpenAIClient(provider Provider, apiKey, model, baseURL string, base *http.Client) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, strings.Join(provider.APIKeyEnv(), " or "))
	}
	if baseURL == "" {
		baseURL = provider.DefaultBaseURL()
	}
	if base == nil {
		base = http.DefaultClient
	}

	return &OpenAIClient{
		http: &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey}),
				Base:   base.Transport,
			},
			Timeout: base.Timeout,
		},
		provider: provider,
		model:    model,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (c *OpenAIClient) Name() string { return string(c.provider) + ":" + c.model }

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	body := chatRequest{
		Model:     c.model,
		MaxTokens: maxTokens(req),
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, newAPIError(c.provider, resp.StatusCode, resp.Status, data)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", c.provider, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrEmptyResponse)
	}

	model := out.Model
	if model == "" {
		model = c.model
	}

	return &Response{
		Content: out.Choices[0].Message.Content,
		Model:   model,
		Usage: Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		},
	}, nil
}
