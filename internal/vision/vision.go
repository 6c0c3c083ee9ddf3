package vision

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vbonduro/imgprompt/internal/domain"
)

// PromptInstruction is the fixed instruction sent alongside every image.
const PromptInstruction = `Analyze this image and generate a highly detailed and creative descriptive prompt that an AI image generator could use to create a similar image. Focus on visual elements like subject, setting, composition, lighting, colors, and overall mood. Do not include any introductory text, just the prompt itself.`

// ErrServiceCommunication is the only error a Client surfaces to callers.
var ErrServiceCommunication = errors.New("failed to communicate with the inference service")

// ErrEmptyResponse is returned by backends when the service produced no text.
var ErrEmptyResponse = errors.New("the service returned an empty response")

// Backend performs one request against a multimodal inference service.
type Backend interface {
	Name() string
	Describe(ctx context.Context, instruction string, img *domain.Image) (string, error)
}

// PromptGenerator turns an image into a prompt.
type PromptGenerator interface {
	GeneratePrompt(ctx context.Context, img *domain.Image) (string, error)
}

// ServiceError hides the cause behind ErrServiceCommunication. The cause is
// kept for logging via Unwrap.
type ServiceError struct {
	Backend string
	Cause   error
}

func (e *ServiceError) Error() string {
	return ErrServiceCommunication.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceCommunication
}

// Client sends the fixed instruction plus one image to a Backend and
// returns the trimmed text. It issues exactly one request per call.
type Client struct {
	backend Backend
	logger  *slog.Logger
}

func NewClient(backend Backend, logger *slog.Logger) *Client {
	return &Client{backend: backend, logger: logger}
}

func (c *Client) GeneratePrompt(ctx context.Context, img *domain.Image) (string, error) {
	c.logger.Debug("prompt generation started",
		"backend", c.backend.Name(), "mime_type", img.MimeType, "bytes", len(img.Data))

	text, err := c.backend.Describe(ctx, PromptInstruction, img)
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = ErrEmptyResponse
		}
	}
	if err != nil {
		c.logger.Error("error generating prompt from image", "backend", c.backend.Name(), "error", err)
		return "", &ServiceError{Backend: c.backend.Name(), Cause: err}
	}

	c.logger.Debug("prompt generation complete", "backend", c.backend.Name(), "chars", len(text))
	return text, nil
}
