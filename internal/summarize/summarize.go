// Package summarize turns a week of meeting notes into one markdown summary.
package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/TobiSchelling/weeklynotes/internal/llm"
	"github.com/TobiSchelling/weeklynotes/internal/notes"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

// DefaultMaxTokens caps the length of the generated summary.
const DefaultMaxTokens = 4096

const systemPrompt = `You are an expert analyst who reads meeting notes from integrator calls (conversations between a protocol team and external integrators/partners who are building on top of or integrating with the protocol).

Your job is to produce a weekly summary that helps the marketing team understand what integrators care about and generate content ideas.

Be specific and cite concrete examples from the notes when possible. Use the integrator/company name when available. Do not fabricate information that isn't in the notes.`

const userPrompt = `Below are the meeting notes from integrator calls during the week of %s to %s. There are %d meeting notes in total.

Please analyze all of them and produce a structured weekly summary with these sections:

## 1. Executive Summary
A 2-3 sentence overview of the week's integrator conversations.

## 2. Main Themes
What are the top recurring themes, topics, or requests that integrators brought up this week? Group related mentions together. For each theme:
- What the theme is
- Which integrators mentioned it (if identifiable)
- How often it came up

## 3. Misunderstandings & Friction Points
What concepts, features, or processes did integrators seem confused about or misunderstand? These are gold mines for educational content. For each:
- What the misunderstanding was
- How it manifested in the conversation
- What the correct understanding should be

## 4. Questions Integrators Are Asking
Specific questions that came up, grouped by topic. These directly map to FAQ content, blog posts, or documentation improvements.

## 5. Feature Requests & Pain Points
What are integrators wishing they had? What's blocking them or slowing them down?

## 6. Content Ideas for This Week
Based on all of the above, suggest 5-8 specific content ideas that the marketing team could produce this week. For each idea:
- Content format (blog post, tweet thread, short video, documentation page, etc.)
- Title/angle
- Which insight from above it addresses
- Why it would resonate with integrators right now

## 7. Notable Quotes
Pull 3-5 direct quotes or paraphrased statements from the notes that capture the sentiment of integrators this week. These can be used in social media or internal presentations.

---

Here are the meeting notes:

%s`

// Summarizer asks an LLM provider for the weekly summary.
type Summarizer struct {
	provider  llm.Provider
	maxTokens int
}

// NewSummarizer creates a summarizer. A non-positive maxTokens selects
// DefaultMaxTokens.
func NewSummarizer(provider llm.Provider, maxTokens int) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Summarizer{provider: provider, maxTokens: maxTokens}
}

// Model reports the model that will write the summary.
func (s *Summarizer) Model() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Model()
}

// Summarize builds the prompt for docs and returns the model's markdown.
func (s *Summarizer) Summarize(ctx context.Context, docs []notes.Document, w week.Window) (string, error) {
	if s.provider == nil || !s.provider.IsConfigured() {
		return "", llm.ErrNoAPIKey
	}

	prompt := BuildPrompt(docs, w)
	log.Printf("Summarizing %d notes (%d prompt chars) with %s", len(docs), len(prompt), s.provider.Model())

	summary, err := s.provider.Generate(ctx, systemPrompt, prompt, s.maxTokens)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return summary, nil
}

// BuildPrompt fills the user prompt for the given window.
func BuildPrompt(docs []notes.Document, w week.Window) string {
	return fmt.Sprintf(userPrompt, w.StartLabel(), w.EndLabel(), len(docs), BuildNotesContent(docs))
}

// BuildNotesContent renders every document as one numbered meeting block.
func BuildNotesContent(docs []notes.Document) string {
	parts := make([]string, 0, len(docs))
	for i := range docs {
		parts = append(parts, meetingBlock(i+1, &docs[i]))
	}
	return strings.Join(parts, "\n")
}

func meetingBlock(n int, d *notes.Document) string {
	created := d.Timestamp()
	if created == "" {
		created = "Unknown date"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "---\n### Meeting %d: %s\n", n, d.DisplayTitle("Untitled Meeting"))
	fmt.Fprintf(&sb, "**Date:** %s\n", created)
	fmt.Fprintf(&sb, "**Participants:** %s\n\n", participantList(d.Participants))
	sb.WriteString(d.Text())
	sb.WriteString("\n")

	if transcript := notes.FormatTranscript(d.Transcript); transcript != "" {
		fmt.Fprintf(&sb, "\n### Transcript Excerpts\n%s\n", transcript)
	}
	return sb.String()
}

func participantList(ps []notes.Participant) string {
	if len(ps) == 0 {
		return "Not recorded"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.DisplayName()
	}
	return strings.Join(names, ", ")
}
