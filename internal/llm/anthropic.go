package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AnthropicVersion is sent as the anthropic-version header.
const AnthropicVersion = "2023-06-01"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewAnthropicClient creates a client for model. A nil httpClient uses
// http.DefaultClient.
func NewAnthropicClient(apiKey, model, baseURL string, httpClient *http.Client) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, strings.Join(ProviderAnthropic.APIKeyEnv(), " or "))
	}
	if baseURL == "" {
		baseURL = ProviderAnthropic.DefaultBaseURL()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &AnthropicClient{
		http:    httpClient,
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (c *AnthropicClient) Name() string { return string(ProviderAnthropic) + ":" + c.model }

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	b, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens(req),
		System:    req.System,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, newAPIError(ProviderAnthropic, resp.StatusCode, resp.Status, data)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrEmptyResponse)
	}

	model := out.Model
	if model == "" {
		model = c.model
	}

	return &Response{
		Content: text.String(),
		Model:   model,
		Usage: Usage{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
		},
	}, nil
}
