package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/lymphly/vps-ai-bridge/internal/metrics"
)

var (
	// leading ```json / ```JSON / ``` fence, with optional language tag
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")
	closingFence = regexp.MustCompile("\r?\n?```[ \t]*$")
)

var errNotObject = errors.New("JSON value is not an object")

// extractionTier is one recovery strategy for model output.
type extractionTier struct {
	name  string
	apply func(text string) (map[string]any, error)
}

// extractionTiers run in order; the first success wins.
var extractionTiers = []extractionTier{
	{name: "direct", apply: parseObject},
	{name: "fenced", apply: func(text string) (map[string]any, error) {
		return parseObject(StripCodeFences(text))
	}},
	{name: "embedded", apply: func(text string) (map[string]any, error) {
		return embeddedObject(StripCodeFences(text))
	}},
}

// ExtractJSON converts raw model text into a JSON object using escalating
// recovery: direct parse, fence stripping, then the first {...} span.
// It fails with ErrModelOutputNotJSON when every tier fails.
func ExtractJSON(raw string) (map[string]any, error) {
	obj, _, err := extractJSON(raw)
	return obj, err
}

func extractJSON(raw string) (map[string]any, string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		metrics.JSONExtractionsTotal.WithLabelValues("failed").Inc()
		return nil, "", UpstreamError("model output is not JSON", ErrModelOutputNotJSON)
	}

	var lastErr error
	for _, tier := range extractionTiers {
		obj, err := tier.apply(text)
		if err == nil {
			metrics.JSONExtractionsTotal.WithLabelValues(tier.name).Inc()
			return obj, tier.name, nil
		}
		lastErr = err
	}

	metrics.JSONExtractionsTotal.WithLabelValues("failed").Inc()
	return nil, "", UpstreamError("model output is not JSON", errors.Join(ErrModelOutputNotJSON, lastErr))
}

// StripCodeFences removes a leading and trailing Markdown code fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func parseObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// embeddedObject parses the first balanced {...} span that is a valid object.
// Spans are tried from each "{" in turn, left to right.
func embeddedObject(text string) (map[string]any, error) {
	err := errNotObject
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if span, ok := balancedSpan(text, start); ok {
			obj, perr := parseObject(span)
			if perr == nil {
				return obj, nil
			}
			err = perr
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, err
}

// balancedSpan returns text[start:end] where end closes the brace at start.
// Braces inside JSON string literals are ignored.
func balancedSpan(text string, start int) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
