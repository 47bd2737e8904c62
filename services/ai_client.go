package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const analyzePrompt = `You organize short personal notes.
Read the note and reply with a single JSON object, no prose, with these fields:
- tags: up to 5 short lowercase topic tags
- summary: one or two sentences, or null when the note is already short
- tasks: up to 5 concrete action items written as imperative phrases, or []
- sentiment: one of "positive", "neutral", "negative"
The note type is %q.`

const describeImagePrompt = "Describe this image in one or two plain sentences for use as note text."

// AIClient calls the hosted completion service. A client built without an API key
// is disabled and every call returns ErrCompletionUnavailable.
type AIClient struct {
	chat   llms.Model
	vision llms.Model
}

func NewAIClient(conf config.Config) (*AIClient, error) {
	if conf.AIAPIKey == "" {
		config.Logger.Warn("AI_API_KEY not set, enrichment will use the local heuristic")
		return &AIClient{}, nil
	}

	chat, err := openai.New(
		openai.WithToken(conf.AIAPIKey),
		openai.WithBaseURL(conf.AIAPIEndpoint),
		openai.WithModel(conf.AIModel),
		openai.WithResponseFormat(openai.ResponseFormatJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	vision, err := openai.New(
		openai.WithToken(conf.AIAPIKey),
		openai.WithBaseURL(conf.AIAPIEndpoint),
		openai.WithModel(conf.AIVisionModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &AIClient{chat: chat, vision: vision}, nil
}

// NewAIClientWithModels wires already constructed models.
func NewAIClientWithModels(chat, vision llms.Model) *AIClient {
	return &AIClient{chat: chat, vision: vision}
}

func (c *AIClient) Enabled() bool {
	return c != nil && c.chat != nil
}

// Analyze asks the model for tags, summary, tasks and sentiment of content.
func (c *AIClient) Analyze(ctx context.Context, content string, noteType models.NoteType) (*Enrichment, error) {
	if !c.Enabled() {
		return nil, ErrCompletionUnavailable
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, fmt.Sprintf(analyzePrompt, noteType)),
		llms.TextParts(schema.ChatMessageTypeHuman, content),
	}

	resp, err := c.chat.GenerateContent(ctx, messages, llms.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("analyze note: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrMalformedCompletion
	}

	return parseEnrichment(resp.Choices[0].Content)
}

// DescribeImage captions the image at imageURL. Data URIs are accepted.
func (c *AIClient) DescribeImage(ctx context.Context, imageURL string) (string, error) {
	if c == nil || c.vision == nil {
		return "", ErrCompletionUnavailable
	}

	messages := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(describeImagePrompt),
				llms.ImageURLPart(imageURL),
			},
		},
	}

	resp, err := c.vision.GenerateContent(ctx, messages, llms.WithMaxTokens(200))
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrMalformedCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// parseEnrichment decodes a completion, tolerating markdown code fences around the JSON.
func parseEnrichment(raw string) (*Enrichment, error) {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var out Enrichment
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}

	out.Tags = capList(models.NormalizeTags(lowerAll(out.Tags)), maxHeuristicTags)
	out.Tasks = capList(models.NormalizeTags(out.Tasks), maxHeuristicTasks)
	if out.Summary != nil && strings.TrimSpace(*out.Summary) == "" {
		out.Summary = nil
	}
	return &out, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func capList(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
