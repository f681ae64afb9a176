package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fallbackCategory = "Other"

// ParseClassification decodes a model answer. A surrounding markdown code
// fence is stripped. A missing processed_text falls back to inputText and a
// missing category to "Other".
func ParseClassification(raw, inputText string) (Classification, error) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if body == "" {
		return Classification{}, fmt.Errorf("llm: empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Classification{}, fmt.Errorf("llm: decode response: %w", err)
	}

	out := Classification{
		ProcessedText: inputText,
		Category:      fallbackCategory,
	}
	if v, ok := stringField(fields, "processed_text"); ok {
		out.ProcessedText = v
	}
	if v, ok := stringField(fields, "category"); ok {
		out.Category = v
	}
	if v, ok := stringField(fields, "reasoning"); ok {
		out.Reasoning = v
	}
	return out, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang := strings.TrimSpace(inner[:nl])
		if lang == "" || lang == "json" || lang == "JSON" {
			inner = inner[nl+1:]
		}
	} else {
		inner = strings.TrimPrefix(inner, "json")
	}
	return strings.TrimSpace(inner)
}
