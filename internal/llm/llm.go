package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultAnthropicURL is the Messages API endpoint.
	DefaultAnthropicURL = "https://api.anthropic.com/v1/messages"

	// DefaultOpenAIURL is the chat completions endpoint.
	DefaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

	anthropicVersion = "2023-06-01"
)

// ErrNoAPIKey is returned when the selected provider has no credential.
var ErrNoAPIKey = errors.New("no model API key configured: set ANTHROPIC_API_KEY (or OPENAI_API_KEY for the openai provider)")

// Provider is the interface for LLM providers.
type Provider interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
	Model() string
}

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	ModelName string
	APIKey    string
	URL       string
	client    *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(model, apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		ModelName: model,
		APIKey:    apiKey,
		URL:       DefaultAnthropicURL,
		client:    &http.Client{Timeout: 300 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (a *AnthropicProvider) IsConfigured() bool {
	return a.APIKey != ""
}

// Model returns the model identifier sent with each request.
func (a *AnthropicProvider) Model() string {
	return a.ModelName
}

// Generate sends one user message with a system instruction and joins the
// text blocks of the reply.
func (a *AnthropicProvider) Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if a.APIKey == "" {
		return "", ErrNoAPIKey
	}

	body := map[string]any{
		"model":      a.ModelName,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if system != "" {
		body["system"] = system
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("anthropic API returned %d: %s", resp.StatusCode, string(respBody))
	}
	if result.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s - %s", result.Error.Type, result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// OpenAIProvider is an OpenAI API provider.
type OpenAIProvider struct {
	ModelName string
	APIKey    string
	URL       string
	client    *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(model, apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		ModelName: model,
		APIKey:    apiKey,
		URL:       DefaultOpenAIURL,
		client:    &http.Client{Timeout: 300 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (o *OpenAIProvider) IsConfigured() bool {
	return o.APIKey != ""
}

// Model returns the model identifier sent with each request.
func (o *OpenAIProvider) Model() string {
	return o.ModelName
}

// Generate sends a prompt to OpenAI and returns the response.
func (o *OpenAIProvider) Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if o.APIKey == "" {
		return "", ErrNoAPIKey
	}

	var messages []map[string]string
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body := map[string]any{
		"model":       o.ModelName,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": 0.3,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	return result.Choices[0].Message.Content, nil
}

// CreateProvider creates an LLM provider based on configuration. It fails
// with ErrNoAPIKey when the chosen provider has no key.
func CreateProvider(provider, model, apiKey string) (Provider, error) {
	var p Provider
	switch strings.ToLower(provider) {
	case "", "anthropic":
		p = NewAnthropicProvider(model, apiKey)
	case "openai":
		p = NewOpenAIProvider(model, apiKey)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (supported: anthropic, openai)", provider)
	}

	if !p.IsConfigured() {
		return nil, ErrNoAPIKey
	}
	log.Printf("Using %s with model: %s", strings.ToLower(provider), model)
	return p, nil
}
