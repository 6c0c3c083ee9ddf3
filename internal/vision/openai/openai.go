package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vbonduro/imgprompt/internal/domain"
)

const DefaultModel = "gpt-4o-mini"

// OpenAIDescriber talks to any OpenAI-compatible chat completions endpoint.
type OpenAIDescriber struct {
	client openai.Client
	model  string
}

func NewOpenAIDescriber(apiKey, model, baseURL string) *OpenAIDescriber {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// One request per generation; the SDK retries by default.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIDescriber{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (d *OpenAIDescriber) Name() string { return "openai" }

func (d *OpenAIDescriber) Describe(ctx context.Context, instruction string, img *domain.Image) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(instruction),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}),
	}

	resp, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    d.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
