package llm

import "fmt"

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterAppName = "simtai"
	openRouterReferer        = "https://github.com/simtai/simtai"
)

// OpenRouterProvider talks to OpenRouter through its OpenAI-compatible API.
// Routed models often reject strict schema mode, so requests are sent
// loose and the reply is validated locally.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Requests carry the attribution headers OpenRouter uses for its rankings.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	app := cfg.AppName
	if app == "" {
		app = defaultOpenRouterAppName
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
		Loose:   true,
		Headers: map[string]string{
			"HTTP-Referer": openRouterReferer,
			"X-Title":      app,
		},
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
