package llm

import (
	"encoding/json"
	"testing"
)

func TestAggregateStreamedResponse(t *testing.T) {
	body := `{"model":"mistral","response":"{\"title\":","done":false}
{"model":"mistral","response":"\"El Mercado\"}","done":true}`
	got := AggregateStreamedResponse(body)
	want := `{"title":"El Mercado"}`
	if got != want {
		t.Errorf("aggregated %q, want %q", got, want)
	}
}

func TestExtractJSONStripsFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":1} hope that helps", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"[1,2,3]", "[1,2,3]"},
	}
	for _, c := range cases {
		if got := extractJSON(c.in); got != c.want {
			t.Errorf("extractJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateResponse(t *testing.T) {
	schema := &Schema{
		Name: "word-pair-test",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"prompt", "answer"},
			"properties": map[string]any{
				"prompt": map[string]any{"type": "string"},
				"answer": map[string]any{"type": "string"},
			},
		},
	}

	good := json.RawMessage(`{"prompt":"Apple","answer":"Manzana"}`)
	if err := validateResponse(schema, good); err != nil {
		t.Errorf("valid document rejected: %v", err)
	}

	bad := json.RawMessage(`{"prompt":"Apple"}`)
	if err := validateResponse(schema, bad); err == nil {
		t.Error("document missing required field accepted")
	}

	notJSON := json.RawMessage(`not json at all`)
	if err := validateResponse(schema, notJSON); err == nil {
		t.Error("malformed JSON accepted")
	}

	if err := validateResponse(nil, notJSON); err != nil {
		t.Errorf("nil schema must skip validation, got %v", err)
	}
}
