package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
)

// Client talks to Gemini for both collaborator capabilities. Callers bound
// every call with a context deadline; a hung call must not leak into a later
// conversation turn.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed collaborator client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// candidateSchema constrains the model to a strict JSON array of candidates.
var candidateSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":                 {Type: genai.TypeString},
			"type":                 {Type: genai.TypeString},
			"amount":               {Type: genai.TypeNumber},
			"category":             {Type: genai.TypeString},
			"description":          {Type: genai.TypeString},
			"confidence":           {Type: genai.TypeNumber},
			"needs_clarification":  {Type: genai.TypeBoolean},
			"clarification_reason": {Type: genai.TypeString},
		},
		Required: []string{"date", "type", "amount", "category", "description", "confidence", "needs_clarification"},
	},
}

// Extract turns a free-text message into structured transaction candidates.
// Candidate dates default to today unless the text implies otherwise.
func (c *Client) Extract(ctx context.Context, text string, categories []string, today string) ([]ParseCandidate, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildExtractionPrompt(categories, today), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    candidateSchema,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExternalService, fmt.Errorf("extract: generate content: %w", err))
	}

	raw := resp.Text()
	if raw == "" {
		return nil, apperrors.Wrap(apperrors.ErrExternalService, fmt.Errorf("extract: empty response from model"))
	}

	var candidates []ParseCandidate
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &candidates); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExternalService, fmt.Errorf("extract: unmarshal model JSON: %w", err))
	}

	return candidates, nil
}

// Phrase words the budget feedback for the user. It returns a non-empty
// string or an error; the feedback policy owns the canned fallback.
func (c *Client) Phrase(ctx context.Context, stats FeedbackStats, tone models.Tone, currency models.Currency) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildFeedbackPrompt(stats, tone, currency), genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(feedbackContents), cfg)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrExternalService, fmt.Errorf("phrase: generate content: %w", err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperrors.Wrap(apperrors.ErrExternalService, fmt.Errorf("phrase: empty response from model"))
	}

	return text, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '[' to the last ']' when junk remains.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
