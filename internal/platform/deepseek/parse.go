package deepseek

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/arcanalab/tarot-api/internal/domain"
)

// fencedJSONPattern extracts a JSON object from a markdown code fence, with
// or without a language tag.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseReadingResult extracts the structured reading from the raw model
// reply. Three shapes are tolerated, tried in order: the whole text as
// JSON, JSON inside a fenced code block, and JSON located via the
// outermost braces in surrounding prose. When none parse, the raw text is
// wrapped as the reading narrative; the second return value reports
// whether the reply conformed to the JSON contract.
func parseReadingResult(raw string) (domain.ReadingResult, bool) {
	text := strings.TrimSpace(raw)

	if result, ok := tryParseJSON(text); ok {
		return result, true
	}

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		if result, ok := tryParseJSON(m[1]); ok {
			return result, true
		}
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if result, ok := tryParseJSON(text[start : end+1]); ok {
			return result, true
		}
	}

	return domain.ReadingResult{ReadingContent: text}, false
}

// tryParseJSON attempts to decode text as a JSON object and lift the four
// expected fields out of it. Missing or non-string fields become empty
// strings rather than failures.
func tryParseJSON(text string) (domain.ReadingResult, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.ReadingResult{}, false
	}

	return domain.ReadingResult{
		ReadingContent: stringField(payload, "reading_content"),
		Analysis:       stringField(payload, "analysis"),
		Quote:          stringField(payload, "quote"),
		Advice:         stringField(payload, "advice"),
	}, true
}

func stringField(payload map[string]json.RawMessage, key string) string {
	raw, ok := payload[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
