package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"healthdocs-backend/internal/llm"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Classifier with Gemini structured output.
type Client struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	newModel func(schema *genai.Schema) contentGenerator
}

// NewClient connects to the Gemini API with an API key.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("LLM_MODEL is required for Gemini")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	c := &Client{client: gc, model: model, timeout: timeout}
	c.newModel = func(schema *genai.Schema) contentGenerator {
		m := gc.GenerativeModel(c.model)
		m.SetTemperature(0)
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = schema
		return m
	}
	return c, nil
}

// Close releases the underlying API connections.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Classify asks the model for a JSON answer constrained to the given categories.
func (c *Client) Classify(ctx context.Context, input llm.ClassifyInput) (llm.Classification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.newModel(classificationSchema(input.Categories))
	resp, err := model.GenerateContent(ctx, genai.Text(llm.BuildClassificationPrompt(input.Text, input.Categories)))
	if err != nil {
		return llm.Classification{}, fmt.Errorf("gemini generate: %w", err)
	}
	raw, err := responseText(resp)
	if err != nil {
		return llm.Classification{}, err
	}
	return llm.ParseClassification(raw, input.Text)
}

func classificationSchema(categories []string) *genai.Schema {
	category := &genai.Schema{Type: genai.TypeString}
	if len(categories) > 0 {
		category.Format = "enum"
		category.Enum = categories
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"processed_text": {Type: genai.TypeString, Description: "The cleaned and extracted text."},
			"category":       category,
			"reasoning":      {Type: genai.TypeString, Description: "One sentence explaining the category."},
		},
		Required: []string{"processed_text", "category"},
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("gemini: response has no text")
	}
	return b.String(), nil
}

var _ llm.Classifier = (*Client)(nil)
