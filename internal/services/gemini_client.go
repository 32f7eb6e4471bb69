package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/lymphly/vps-ai-bridge/internal/metrics"
)

const (
	modelTemperature     = 0.2
	modelMaxOutputTokens = 4096
)

// ModelClient sends one multimodal prompt and returns the raw text completion.
type ModelClient interface {
	Ask(ctx context.Context, model, systemInstruction, userPrompt string, image []byte, mimeType string) (string, error)
}

// ContentGenerator is the subset of the genai Models service used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// textExtractor pulls completion text out of a provider response.
type textExtractor struct {
	name    string
	extract func(*genai.GenerateContentResponse) string
}

// responseTextExtractors are tried in order; response shapes differ across
// SDK and API versions.
var responseTextExtractors = []textExtractor{
	{name: "text_accessor", extract: directText},
	{name: "candidate_parts", extract: candidateText},
}

// GeminiClient implements ModelClient on the Gemini API.
type GeminiClient struct {
	generator ContentGenerator
	timeout   time.Duration
}

// NewGeminiClient creates a Gemini API client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	// Only show the first characters of the key
	keyPreview := apiKey
	if len(keyPreview) > 6 {
		keyPreview = keyPreview[:6] + "..."
	}
	log.Info().Str("key", keyPreview).Dur("timeout", timeout).Msg("gemini model client: enabled")

	return NewGeminiClientWithGenerator(client.Models, timeout), nil
}

// NewGeminiClientWithGenerator wraps an existing generator.
func NewGeminiClientWithGenerator(gen ContentGenerator, timeout time.Duration) *GeminiClient {
	return &GeminiClient{generator: gen, timeout: timeout}
}

// Ask sends a single-turn request (text + inline image) constrained to JSON
// output. It does not retry.
func (c *GeminiClient) Ask(ctx context.Context, model, systemInstruction, userPrompt string, image []byte, mimeType string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	temperature := float32(modelTemperature)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
		MaxOutputTokens:  modelMaxOutputTokens,
	}

	parts := []*genai.Part{{Text: userPrompt}}
	if len(image) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	start := time.Now()
	resp, err := c.generator.GenerateContent(ctx, model, contents, config)
	latency := time.Since(start)
	metrics.ModelLatency.Observe(latency.Seconds())

	if err != nil {
		reason := "api"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		} else if errors.Is(err, context.Canceled) {
			reason = "canceled"
		}
		metrics.ModelErrorsTotal.WithLabelValues(reason).Inc()
		return "", UpstreamError("model request failed", err)
	}

	text, via := ResponseText(resp)
	if text == "" {
		metrics.ModelErrorsTotal.WithLabelValues("empty").Inc()
		return "", UpstreamError("model returned an empty response", ErrModelEmptyResponse)
	}

	metrics.ModelRequestsTotal.WithLabelValues(model).Inc()
	log.Debug().
		Str("model", model).
		Str("via", via).
		Int("image_bytes", len(image)).
		Int("response_len", len(text)).
		Dur("latency", latency).
		Msg("gemini: response received")

	return text, nil
}

// ResponseText runs the extractors in order and returns the first non-empty
// text with the name of the extractor that produced it.
func ResponseText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil {
		return "", ""
	}
	for _, ex := range responseTextExtractors {
		if text := strings.TrimSpace(ex.extract(resp)); text != "" {
			return text, ex.name
		}
	}
	return "", ""
}

func directText(resp *genai.GenerateContentResponse) string {
	return resp.Text()
}

// candidateText concatenates the non-thought text parts of the first
// candidate that has any.
func candidateText(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
