// Package ai generates human-readable summaries of spec diffs.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/specwatch/specwatch/pkg/types"
)

const systemPrompt = `You are an API change analyst. Given a structured diff ` +
	`between two versions of an HTTP API specification, write a short summary ` +
	`for the engineers who consume the API. Lead with the breaking changes and ` +
	`what callers must do about them. Plain prose, no markdown headings, at ` +
	`most 120 words.`

// Summarizer produces a prose summary for a diff. Summaries are a
// best-effort enrichment: callers treat errors as non-fatal.
type Summarizer interface {
	Summarize(ctx context.Context, specName string, diff types.DiffResult) (string, error)
}

// ClaudeSummarizer summarizes diffs with the Anthropic Messages API.
type ClaudeSummarizer struct {
	client anthropic.Client
	model  string
}

// NewClaudeSummarizer creates a summarizer. The API key is required; the
// model falls back to the configured default when empty.
func NewClaudeSummarizer(apiKey, model string) (*ClaudeSummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &ClaudeSummarizer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Summarize renders the diff as JSON and asks the model for a summary.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, specName string, diff types.DiffResult) (string, error) {
	if len(diff.Changes) == 0 {
		return "", nil
	}

	diffJSON, err := json.MarshalIndent(diff, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode diff: %w", err)
	}

	prompt := fmt.Sprintf("API: %s\n\nDiff:\n%s", specName, diffJSON)

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}

	var out strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(out.String())
	if summary == "" {
		return "", fmt.Errorf("summary response contained no text")
	}
	return summary, nil
}

// NopSummarizer is used when no API key is configured.
type NopSummarizer struct{}

// Summarize returns an empty summary.
func (NopSummarizer) Summarize(context.Context, string, types.DiffResult) (string, error) {
	return "", nil
}
