package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("expected anthropic-version header, got %q", r.Header.Get("anthropic-version"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"content":[
			{"type":"text","text":"## 2. Main Themes\n"},
			{"type":"tool_use","id":"x"},
			{"type":"text","text":"- Fees"}
		]}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("claude-test", "sk-test")
	p.URL = srv.URL

	text, err := p.Generate(context.Background(), "be terse", "summarize", 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "## 2. Main Themes\n- Fees" {
		t.Errorf("expected joined text blocks, got %q", text)
	}

	if got["model"] != "claude-test" || got["system"] != "be terse" || got["max_tokens"] != float64(4096) {
		t.Errorf("unexpected request body: %v", got)
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", got["messages"])
	}
	if m := msgs[0].(map[string]any); m["role"] != "user" || m["content"] != "summarize" {
		t.Errorf("unexpected message: %v", m)
	}
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("nope", "sk-test")
	p.URL = srv.URL
	_, err := p.Generate(context.Background(), "", "x", 10)
	if err == nil || !strings.Contains(err.Error(), "bad model") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []map[string]string `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 2 || body.Messages[0]["role"] != "system" {
			t.Errorf("expected system then user message, got %v", body.Messages)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"done"}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("gpt-test", "key")
	p.URL = srv.URL
	text, err := p.Generate(context.Background(), "sys", "user", 100)
	if err != nil || text != "done" {
		t.Errorf("expected 'done', got %q (%v)", text, err)
	}
}

func TestCreateProvider(t *testing.T) {
	if _, err := CreateProvider("anthropic", "m", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if _, err := CreateProvider("mystery", "m", "k"); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err := CreateProvider("", "claude-x", "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*AnthropicProvider); !ok || p.Model() != "claude-x" {
		t.Errorf("expected anthropic default provider, got %T", p)
	}

	p, err = CreateProvider("OpenAI", "gpt", "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Errorf("expected openai provider, got %T", p)
	}
}
