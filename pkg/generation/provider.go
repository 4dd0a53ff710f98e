package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const systemTemplate = "You are a helpful assistant that answers questions based on the provided context. " +
	"If the context doesn't contain enough information to answer the question, say so. " +
	"Do not use knowledge outside the provided context."

// LLMGenerator implements Generator on top of langchaingo, so the same code
// path serves Ollama and OpenAI backends.
type LLMGenerator struct {
	cfg Config
	llm llms.Model
}

// NewGenerator builds the configured LLM backend.
func NewGenerator(cfg Config) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaBaseURL),
		)
	case ProviderOpenAI:
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s LLM: %w", cfg.Provider, err)
	}

	return &LLMGenerator{cfg: cfg, llm: model}, nil
}

// Generate asks the model for an answer grounded in contextBlock.
func (g *LLMGenerator) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutS)*time.Second)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(question, contextBlock)),
	}

	resp, err := g.llm.GenerateContent(ctx, content,
		llms.WithTemperature(g.cfg.Temperature),
		llms.WithMaxTokens(g.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("generation returned no content")
	}

	return resp.Choices[0].Content, nil
}
