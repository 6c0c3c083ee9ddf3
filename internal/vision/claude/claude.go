package claude

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/imgprompt/internal/domain"
)

// maxTokens bounds the reply; a descriptive prompt is a paragraph or two.
const maxTokens = 1024

type ClaudeDescriber struct {
	client *anthropic.Client
	model  string
}

func NewClaudeDescriber(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeDescriber {
	return &ClaudeDescriber{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (d *ClaudeDescriber) Name() string { return "claude" }

// buildMessages constructs the single user turn carrying the image and instruction.
func buildMessages(instruction string, img *domain.Image) []anthropic.Message {
	return []anthropic.Message{{
		Role: anthropic.RoleUser,
		Content: []anthropic.MessageContent{
			anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64,
				normaliseMIME(img.MimeType),
				img.Base64(),
			)),
			anthropic.NewTextMessageContent(instruction),
		},
	}}
}

func (d *ClaudeDescriber) Describe(ctx context.Context, instruction string, img *domain.Image) (string, error) {
	resp, err := d.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(d.model),
		MaxTokens: maxTokens,
		Messages:  buildMessages(instruction, img),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText {
			return blk.GetText(), nil
		}
	}
	return "", nil
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// Unknown types are coerced to jpeg; callers validate before reaching this layer.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
