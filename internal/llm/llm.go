package llm

import (
	"context"
	"errors"
)

// Classifier cleans up extracted document text and assigns it a category.
type Classifier interface {
	Classify(ctx context.Context, input ClassifyInput) (Classification, error)
}

// ClassifyInput is the text to classify and the categories the model may pick.
type ClassifyInput struct {
	Text       string
	Categories []string
}

// Classification is the structured model answer. Category is not validated
// here; callers check it against their own category set.
type Classification struct {
	ProcessedText string `json:"processed_text"`
	Category      string `json:"category"`
	Reasoning     string `json:"reasoning,omitempty"`
}

// ErrNotConfigured is returned when no classification provider is set up.
var ErrNotConfigured = errors.New("llm: classifier not configured")

// Disabled is the classifier used when LLM_PROVIDER=none.
type Disabled struct{}

// Classify returns ErrNotConfigured.
func (Disabled) Classify(ctx context.Context, _ ClassifyInput) (Classification, error) {
	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}
	return Classification{}, ErrNotConfigured
}
