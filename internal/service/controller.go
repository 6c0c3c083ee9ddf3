package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/imgprompt/internal/domain"
	"github.com/vbonduro/imgprompt/internal/vision"
)

// User-visible messages.
const (
	MsgInvalidFileType = "Invalid file type. Please upload a PNG, JPG, or WEBP image."
	MsgNoImage         = "Please select an image first."
	MsgGenerateFailed  = "Failed to generate prompt. Please check your API key and try again."
)

// CopyResetDelay is how long the copied indicator stays on.
const CopyResetDelay = 2 * time.Second

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrNoImage         = errors.New("no image selected")
	ErrBusy            = errors.New("prompt generation in progress")
)

// allowedMIMETypes is the set of declared MIME types accepted for selection.
var allowedMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// IsAllowedMIME reports whether mimeType (parameters are ignored) is in the
// allow-list.
func IsAllowedMIME(mimeType string) bool {
	return allowedMIMETypes[normaliseMIME(mimeType)]
}

func normaliseMIME(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Clipboard receives copied prompt text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Controller owns the display state of one session. All mutations go through
// its methods; the lock is never held across the outbound generation call.
type Controller struct {
	mu        sync.Mutex
	state     domain.State
	generator vision.PromptGenerator
	logger    *slog.Logger

	previewPath string
	copyDelay   time.Duration
	copyTimer   *time.Timer
	copySeq     uint64
}

type Option func(*Controller)

// WithCopyResetDelay overrides CopyResetDelay.
func WithCopyResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.copyDelay = d }
}

// WithPreviewPath sets the path the preview reference points at.
func WithPreviewPath(path string) Option {
	return func(c *Controller) { c.previewPath = path }
}

func NewController(generator vision.PromptGenerator, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		generator:   generator,
		logger:      logger,
		previewPath: "/preview",
		copyDelay:   CopyResetDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Preview returns the selected image, or nil.
func (c *Controller) Preview() *domain.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Image
}

// SelectImage validates the declared MIME type and stores the file. A valid
// selection clears any previous prompt and error.
func (c *Controller) SelectImage(name, mimeType string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return ErrBusy
	}

	mt := normaliseMIME(mimeType)
	if !allowedMIMETypes[mt] {
		c.state.Error = MsgInvalidFileType
		c.logger.Info("rejected file selection", "name", name, "mime_type", mimeType)
		return fmt.Errorf("%w: %q", ErrInvalidFileType, mimeType)
	}

	c.cancelCopyResetLocked()
	c.state = domain.State{
		Image:      &domain.Image{Name: name, MimeType: mt, Data: data},
		PreviewURL: c.previewPath + "?v=" + uuid.NewString(),
	}
	c.logger.Info("image selected", "name", name, "mime_type", mt, "bytes", len(data))
	return nil
}

// Generate asks the generator for a prompt for the selected image. It
// returns ErrNoImage without any outbound request when nothing is selected
// and ErrBusy while another generation is pending. Service failures are not
// returned as errors: they produce a failure Outcome and the generic message.
func (c *Controller) Generate(ctx context.Context) (domain.Outcome, error) {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return domain.Outcome{Status: domain.OutcomePending}, ErrBusy
	}
	if c.state.Image == nil {
		c.state.Error = MsgNoImage
		c.mu.Unlock()
		return domain.Outcome{Status: domain.OutcomeFailure, Message: MsgNoImage}, ErrNoImage
	}
	img := c.state.Image
	c.cancelCopyResetLocked()
	c.state.Loading = true
	c.state.Error = ""
	c.state.Prompt = ""
	c.state.Copied = false
	c.mu.Unlock()

	start := time.Now()
	text, err := c.generator.GeneratePrompt(ctx, img)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false

	// The generator has already logged the cause.
	if err != nil {
		c.state.Error = MsgGenerateFailed
		return domain.Outcome{Status: domain.OutcomeFailure, Message: MsgGenerateFailed}, nil
	}

	c.state.Prompt = text
	c.logger.Info("prompt generated", "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
	return domain.Outcome{Status: domain.OutcomeSuccess, Text: text}, nil
}

// Copy writes the current prompt to clip and turns the copied indicator on
// until the reset delay elapses. It reports false when there is nothing to copy.
func (c *Controller) Copy(ctx context.Context, clip Clipboard) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Prompt == "" {
		return false, nil
	}
	if err := clip.WriteText(ctx, c.state.Prompt); err != nil {
		return false, fmt.Errorf("failed to write clipboard: %w", err)
	}

	c.cancelCopyResetLocked()
	c.state.Copied = true
	seq := c.copySeq
	c.copyTimer = time.AfterFunc(c.copyDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.copySeq == seq {
			c.state.Copied = false
			c.copyTimer = nil
		}
	})
	return true, nil
}

// Reset returns every field of the state to its initial value.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return ErrBusy
	}
	c.cancelCopyResetLocked()
	c.state = domain.State{}
	return nil
}

// Close stops any pending timer. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCopyResetLocked()
}

// cancelCopyResetLocked stops a pending indicator revert. Bumping copySeq
// makes a timer that already fired a no-op.
func (c *Controller) cancelCopyResetLocked() {
	if c.copyTimer != nil {
		c.copyTimer.Stop()
		c.copyTimer = nil
	}
	c.copySeq++
}
