// Package llm wraps the text and image generation collaborators: an
// Ollama or OpenAI chat model for word lists and stories, and the Hugging
// Face inference API for story illustrations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"wordspark-backend/internal/config"
)

// Client is the text-generation contract the services build on. The model
// is asked for JSON; when a schema is supplied the returned document has
// been validated against it.
type Client interface {
	GenerateJSON(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error)
}

// Schema names a JSON Schema the model output must conform to.
type Schema struct {
	Name       string
	Definition map[string]any
}

// NewClient builds the configured provider. Ollama is the default; OpenAI
// is selected with LLM_PROVIDER=openai and OPENAI_API_KEY set.
func NewClient(cfg *config.APIConfig) (Client, error) {
	switch cfg.THIRD_PARTY.LLMProvider {
	case "", "ollama":
		url := cfg.THIRD_PARTY.OllamaURL
		if url == "" {
			url = "http://localhost:11434/api/generate"
		}
		return NewOllamaClient(url, cfg.THIRD_PARTY.OllamaModel), nil
	case "openai":
		return NewOpenAIClient(cfg.THIRD_PARTY.OpenAIKey(), cfg.THIRD_PARTY.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.THIRD_PARTY.LLMProvider)
	}
}
