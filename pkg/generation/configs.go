package generation

import "fmt"

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Provider selects the LLM backend: "ollama" or "openai".
	Provider string `yaml:"provider" envconfig:"GENERATION_PROVIDER"`

	// Model is the model name for the selected provider.
	Model string `yaml:"model" envconfig:"GENERATION_MODEL"`

	// OllamaBaseURL is the Ollama server URL (ollama provider only).
	OllamaBaseURL string `yaml:"ollama_base_url" envconfig:"GENERATION_OLLAMA_BASE_URL"`

	// OpenAIAPIKey authenticates against OpenAI (openai provider only).
	OpenAIAPIKey string `yaml:"openai_api_key" envconfig:"GENERATION_OPENAI_API_KEY"`

	// Temperature for sampling. Zero keeps answers close to the context.
	Temperature float64 `yaml:"temperature" envconfig:"GENERATION_TEMPERATURE"`

	// MaxTokens caps the answer length. Default 1024.
	MaxTokens int `yaml:"max_tokens" envconfig:"GENERATION_MAX_TOKENS"`

	// TimeoutS bounds each generation call, in seconds. Default 120.
	TimeoutS int `yaml:"timeout_seconds" envconfig:"GENERATION_TIMEOUT_SECONDS"`
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		if c.OllamaBaseURL == "" {
			c.OllamaBaseURL = "http://localhost:11434"
		}
		if c.Model == "" {
			c.Model = "llama3"
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai provider requires an API key")
		}
		if c.Model == "" {
			c.Model = "gpt-4o-mini"
		}
	default:
		return fmt.Errorf("unsupported generation provider: %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1024
	}
	if c.TimeoutS <= 0 {
		c.TimeoutS = 120
	}
	return nil
}
