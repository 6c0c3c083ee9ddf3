package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/vbonduro/imgprompt/internal/domain"
)

const DefaultModel = "gemini-2.5-flash"

type GeminiDescriber struct {
	client *genai.Client
	model  string
}

// NewGeminiDescriber creates a Gemini API client. baseURL may be empty to use
// the public endpoint.
func NewGeminiDescriber(ctx context.Context, apiKey, model, baseURL string) (*GeminiDescriber, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiDescriber{client: client, model: model}, nil
}

func (d *GeminiDescriber) Name() string { return "gemini" }

func (d *GeminiDescriber) Describe(ctx context.Context, instruction string, img *domain.Image) (string, error) {
	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(img.Data, img.MimeType),
		},
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates returned")
	}

	return resp.Text(), nil
}
