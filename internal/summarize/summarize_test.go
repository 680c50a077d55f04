package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/TobiSchelling/weeklynotes/internal/llm"
	"github.com/TobiSchelling/weeklynotes/internal/notes"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

type mockProvider struct {
	response   string
	err        error
	configured bool
	system     string
	prompt     string
	maxTokens  int
	calls      int
}

func (m *mockProvider) Generate(_ context.Context, system, prompt string, maxTokens int) (string, error) {
	m.calls++
	m.system, m.prompt, m.maxTokens = system, prompt, maxTokens
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return m.configured }

func (m *mockProvider) Model() string { return "mock-model" }

func TestBuildNotesContent(t *testing.T) {
	docs := []notes.Document{
		{
			Title:        "Acme sync",
			CreatedAt:    "2026-02-10T15:00:00Z",
			Content:      json.RawMessage(`"Discussed fees"`),
			Participants: []notes.Participant{{Name: "Ann"}, {Email: "bob@acme.io"}},
			Transcript:   []notes.Utterance{{Source: "Ann", Text: "Fees are high"}},
		},
		{},
	}

	got := BuildNotesContent(docs)
	want := "---\n### Meeting 1: Acme sync\n**Date:** 2026-02-10T15:00:00Z\n**Participants:** Ann, bob@acme.io\n\nDiscussed fees\n" +
		"\n### Transcript Excerpts\n[Ann]: Fees are high\n" +
		"\n" +
		"---\n### Meeting 2: Untitled Meeting\n**Date:** Unknown date\n**Participants:** Not recorded\n\n\n"
	if got != want {
		t.Errorf("unexpected notes content:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildNotesContentSkipsBlankTranscript(t *testing.T) {
	docs := []notes.Document{{Title: "T", Transcript: []notes.Utterance{{Source: "x", Text: "  "}}}}
	if strings.Contains(BuildNotesContent(docs), "Transcript Excerpts") {
		t.Error("expected no transcript section for blank utterances")
	}
}

func TestBuildPrompt(t *testing.T) {
	w, _ := week.Starting("2026-02-09")
	prompt := BuildPrompt([]notes.Document{{Title: "A"}, {Title: "B"}}, w)

	if !strings.Contains(prompt, "week of 2026-02-09 to 2026-02-15") {
		t.Error("expected week range in prompt")
	}
	if !strings.Contains(prompt, "There are 2 meeting notes in total") {
		t.Error("expected note count in prompt")
	}
	for _, section := range []string{"## 2. Main Themes", "## 3. Misunderstandings & Friction Points", "## 6. Content Ideas for This Week"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("expected section %q in prompt", section)
		}
	}
	if !strings.HasSuffix(prompt, "### Meeting 2: B\n**Date:** Unknown date\n**Participants:** Not recorded\n\n\n") {
		t.Error("expected notes content at the end of the prompt")
	}
}

func TestSummarize(t *testing.T) {
	p := &mockProvider{response: "## 1. Executive Summary\nBusy week.", configured: true}
	s := NewSummarizer(p, 0)
	w, _ := week.Starting("2026-02-09")

	summary, err := s.Summarize(context.Background(), []notes.Document{{Title: "A"}}, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != p.response {
		t.Errorf("expected provider response, got %q", summary)
	}
	if p.maxTokens != DefaultMaxTokens {
		t.Errorf("expected default max tokens, got %d", p.maxTokens)
	}
	if !strings.Contains(p.system, "integrator calls") {
		t.Error("expected analyst system prompt")
	}
	if s.Model() != "mock-model" {
		t.Errorf("unexpected model %q", s.Model())
	}
}

func TestSummarizeWithoutKey(t *testing.T) {
	p := &mockProvider{}
	w, _ := week.Starting("2026-02-09")

	_, err := NewSummarizer(p, 100).Summarize(context.Background(), nil, w)
	if !errors.Is(err, llm.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if p.calls != 0 {
		t.Error("expected no provider call without a key")
	}

	if _, err := NewSummarizer(nil, 0).Summarize(context.Background(), nil, w); !errors.Is(err, llm.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey for nil provider, got %v", err)
	}
}

func TestSummarizeProviderError(t *testing.T) {
	p := &mockProvider{configured: true, err: errors.New("overloaded")}
	w, _ := week.Starting("2026-02-09")
	_, err := NewSummarizer(p, 0).Summarize(context.Background(), nil, w)
	if err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}
