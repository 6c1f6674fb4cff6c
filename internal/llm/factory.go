package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 120 * time.Second

// Credentials resolves environment variables such as OPENAI_API_KEY.
type Credentials interface {
	Get(key string) string
}

// Factory builds a Client for a model reference.
type Factory interface {
	Client(ctx context.Context, model string) (Client, error)
}

// ProviderFactory creates real provider clients.
type ProviderFactory struct {
	creds    Credentials
	http     *http.Client
	baseURLs map[Provider]string
}

// FactoryOption configures a ProviderFactory.
type FactoryOption func(*ProviderFactory)

// WithHTTPClient sets the HTTP client used for every provider.
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *ProviderFactory) {
		f.http = c
	}
}

// WithBaseURL overrides the API root of one provider.
func WithBaseURL(p Provider, url string) FactoryOption {
	return func(f *ProviderFactory) {
		f.baseURLs[p] = url
	}
}

// NewProviderFactory creates a factory reading API keys from creds.
func NewProviderFactory(creds Credentials, opts ...FactoryOption) *ProviderFactory {
	f := &ProviderFactory{
		creds:    creds,
		http:     &http.Client{Timeout: DefaultTimeout},
		baseURLs: make(map[Provider]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// APIKey returns the first non-empty credential for p.
func (f *ProviderFactory) APIKey(p Provider) string {
	for _, env := range p.APIKeyEnv() {
		if v := f.creds.Get(env); v != "" {
			return v
		}
	}
	return ""
}

// Client returns a client for a model reference (see ParseModel).
func (f *ProviderFactory) Client(ctx context.Context, model string) (Client, error) {
	provider, name, err := ParseModel(model)
	if err != nil {
		return nil, err
	}

	key := f.APIKey(provider)
	baseURL := f.baseURLs[provider]

	var c Client
	switch provider {
	case ProviderOpenAI, ProviderPerplexity:
		c, err = NewOpenAIClient(provider, key, name, baseURL, f.http)
	case ProviderAnthropic:
		c, err = NewAnthropicClient(key, name, baseURL, f.http)
	case ProviderGemini:
		c, err = NewGeminiClient(ctx, key, name, baseURL, f.http)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", model, err)
	}
	return c, nil
}
