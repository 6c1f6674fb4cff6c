package llm

import (
	"fmt"
	"strings"
)

// Provider identifies an LLM vendor.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderPerplexity Provider = "perplexity"
	ProviderGemini     Provider = "gemini"
)

// AllProviders lists the supported providers.
var AllProviders = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderPerplexity, ProviderGemini}

// IsValid checks if the provider is supported
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderPerplexity, ProviderGemini:
		return true
	default:
		return false
	}
}

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// APIKeyEnv returns the environment variables holding the provider's
// credential, in lookup order.
func (p Provider) APIKeyEnv() []string {
	switch p {
	case ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	case ProviderPerplexity:
		return []string{"PERPLEXITY_API_KEY"}
	case ProviderGemini:
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	default:
		return nil
	}
}

// DefaultBaseURL returns the API root used when none is configured. Gemini
// returns "" and lets the SDK pick.
func (p Provider) DefaultBaseURL() string {
	switch p {
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	case ProviderAnthropic:
		return "https://api.anthropic.com"
	case ProviderPerplexity:
		return "https://api.perplexity.ai"
	default:
		return ""
	}
}

var modelPrefixes = []struct {
	prefix   string
	provider Provider
}{
	{"gpt-", ProviderOpenAI},
	{"chatgpt-", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"claude-", ProviderAnthropic},
	{"sonar", ProviderPerplexity},
	{"llama-3.1-sonar", ProviderPerplexity},
	{"r1-1776", ProviderPerplexity},
	{"gemini-", ProviderGemini},
}

// ParseModel resolves a model reference to its provider. A reference is
// either a bare model name recognised by prefix ("claude-3-opus-20240229")
// or an explicit "provider:model" pair ("openai:my-finetune").
func ParseModel(ref string) (Provider, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", fmt.Errorf("%w: empty model name", ErrUnknownProvider)
	}

	if name, model, ok := strings.Cut(ref, ":"); ok {
		p := Provider(strings.ToLower(name))
		if !p.IsValid() {
			return "", "", fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		if model == "" {
			return "", "", fmt.Errorf("%w: missing model after %q", ErrUnknownProvider, name+":")
		}
		return p, model, nil
	}

	lower := strings.ToLower(ref)
	for _, mp := range modelPrefixes {
		if strings.HasPrefix(lower, mp.prefix) {
			return mp.provider, ref, nil
		}
	}

	return "", "", fmt.Errorf("%w: cannot infer provider for model %q (use provider:model)", ErrUnknownProvider, ref)
}
