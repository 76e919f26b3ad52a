package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logger "wordspark-backend/pkg/logging"
)

// OllamaClient talks to a local Ollama instance. Responses may arrive as a
// stream of newline-separated JSON chunks which are aggregated before use.
type OllamaClient struct {
	ollamaURL string
	model     string
	client    *http.Client
}

func NewOllamaClient(url, model string) *OllamaClient {
	if model == "" {
		model = "mistral"
	}
	return &OllamaClient{
		ollamaURL: url,
		model:     model,
		client: &http.Client{
			Timeout: 600 * time.Second, // generation on CPU can be very slow
		},
	}
}

// GenerateJSON asks the model for a JSON document and validates it against
// the schema when one is given.
func (o *OllamaClient) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error) {
	response, err := o.call(ctx, prompt)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(extractJSON(response))
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (o *OllamaClient) call(ctx context.Context, prompt string) (string, error) {
	requestBody, _ := json.Marshal(map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"format": "json",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.ollamaURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	fullBody := string(bodyBytes)

	// Streamed responses are multiple JSON objects separated by newlines;
	// aggregate their response fields into one string.
	if strings.Contains(fullBody, "\n") {
		return AggregateStreamedResponse(fullBody), nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return "", err
	}
	if responseText, ok := result["response"].(string); ok {
		return responseText, nil
	}

	return "", errors.New("invalid response from Ollama")
}

type LLMResponseChunk struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// AggregateStreamedResponse takes the full raw response body (a string with
// multiple JSON objects separated by newlines) and concatenates the
// "response" fields into one final string.
func AggregateStreamedResponse(body string) string {
	lines := strings.Split(body, "\n")
	var builder strings.Builder
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			var chunk LLMResponseChunk
			if err := json.Unmarshal([]byte(trimmed), &chunk); err != nil {
				logger.Warn("skipping malformed stream chunk: %v", err)
				continue
			}
			builder.WriteString(chunk.Response)
		}
	}
	return builder.String()
}

// extractJSON strips the markdown fences smaller models like to wrap JSON
// in, and cuts everything before the first brace and after the last one.
func extractJSON(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// Ping checks that the Ollama endpoint is reachable.
func (o *OllamaClient) Ping(ctx context.Context) error {
	base := strings.TrimSuffix(o.ollamaURL, "/api/generate")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()
	return nil
}
