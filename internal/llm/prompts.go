package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/classify_v1.txt
var classifyPromptV1 string

// BuildClassificationPrompt renders the classification prompt for text.
func BuildClassificationPrompt(text string, categories []string) string {
	r := strings.NewReplacer(
		"{{CATEGORIES}}", strings.Join(categories, ", "),
		"{{TEXT}}", text,
	)
	return r.Replace(classifyPromptV1)
}
