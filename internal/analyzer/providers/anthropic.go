// Package providers contains analysis backend implementations.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"feedpulse/internal/analyzer"
)

// BackendError is an analysis backend fault for one sub-operation.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// AnthropicBackend implements analyzer.Backend using Anthropic's Claude API.
type AnthropicBackend struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicBackend creates an Anthropic-backed analysis backend.
func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicBackend{
		client: &client,
		model:  model,
	}
}

// sentimentResponse is the JSON shape requested from the model.
type sentimentResponse struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// ClassifySentiment labels the text as positive, negative, or neutral.
func (b *AnthropicBackend) ClassifySentiment(ctx context.Context, text string) (analyzer.Sentiment, error) {
	prompt := fmt.Sprintf(
		"Classify the sentiment of this social media post as positive, negative, or neutral.\n"+
			"Respond with JSON only: {\"label\": \"...\", \"reason\": \"one sentence\"}\n\nPost:\n%s", text)

	// Prefill "{" so the model continues with valid JSON.
	raw, err := b.complete(ctx, prompt, "{")
	if err != nil {
		return analyzer.Sentiment{}, &BackendError{Op: "classify sentiment", Err: err}
	}

	var resp sentimentResponse
	if err := json.Unmarshal([]byte("{"+raw), &resp); err != nil {
		return analyzer.Sentiment{}, &BackendError{Op: "classify sentiment", Err: fmt.Errorf("parse response: %w", err)}
	}
	if resp.Label == "" {
		return analyzer.Sentiment{}, &BackendError{Op: "classify sentiment", Err: fmt.Errorf("empty label in response")}
	}

	return analyzer.Sentiment{Label: resp.Label, Reason: resp.Reason}, nil
}

// ExtractKeywords returns up to max keywords for the text, ordered by relevance.
func (b *AnthropicBackend) ExtractKeywords(ctx context.Context, text string, max int) ([]string, error) {
	prompt := fmt.Sprintf(
		"Extract at most %d keywords from this social media post, most relevant first.\n"+
			"Respond with a JSON array of strings only.\n\nPost:\n%s", max, text)

	raw, err := b.complete(ctx, prompt, "[")
	if err != nil {
		return nil, &BackendError{Op: "extract keywords", Err: err}
	}

	var keywords []string
	if err := json.Unmarshal([]byte("["+raw), &keywords); err != nil {
		return nil, &BackendError{Op: "extract keywords", Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(keywords) > max {
		keywords = keywords[:max]
	}

	return keywords, nil
}

// Summarize condenses the text to at most maxLen characters.
func (b *AnthropicBackend) Summarize(ctx context.Context, text string, maxLen int) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize this social media post in at most %d characters. "+
			"Respond with the summary text only.\n\nPost:\n%s", maxLen, text)

	raw, err := b.complete(ctx, prompt, "")
	if err != nil {
		return "", &BackendError{Op: "summarize", Err: err}
	}

	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", &BackendError{Op: "summarize", Err: fmt.Errorf("empty summary in response")}
	}

	return summary, nil
}

// complete sends one message to the model and returns the text response.
// If prefill is non-empty it is sent as the start of the assistant turn;
// the caller is responsible for prepending it to the returned text.
func (b *AnthropicBackend) complete(ctx context.Context, prompt, prefill string) (string, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}
	if prefill != "" {
		messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(prefill)))
	}

	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: 1024,
		Messages:  messages,
	})
	if err != nil {
		return "", err
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text block in response")
}
