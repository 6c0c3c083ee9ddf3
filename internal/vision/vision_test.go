package vision

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/imgprompt/internal/domain"
)

type stubBackend struct {
	text        string
	err         error
	calls       int
	instruction string
	img         *domain.Image
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Describe(_ context.Context, instruction string, img *domain.Image) (string, error) {
	s.calls++
	s.instruction = instruction
	s.img = img
	return s.text, s.err
}

var testImage = &domain.Image{Name: "fox.jpg", MimeType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}}

func TestGeneratePromptTrimsText(t *testing.T) {
	backend := &stubBackend{text: "\n  A red fox in a snowy forest, soft morning light.  \n"}
	client := NewClient(backend, slog.Default())

	text, err := client.GeneratePrompt(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, "A red fox in a snowy forest, soft morning light.", text)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, PromptInstruction, backend.instruction)
	assert.Same(t, testImage, backend.img)
}

func TestGeneratePromptEmptyText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: " \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(&stubBackend{text: tt.text}, slog.Default())

			_, err := client.GeneratePrompt(context.Background(), testImage)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrServiceCommunication)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestGeneratePromptHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:443: connection refused")
	backend := &stubBackend{err: cause}
	client := NewClient(backend, slog.Default())

	_, err := client.GeneratePrompt(context.Background(), testImage)
	require.Error(t, err)
	assert.Equal(t, ErrServiceCommunication.Error(), err.Error())
	assert.NotContains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, backend.calls)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "stub", svcErr.Backend)
}

func TestGeneratePromptLogsCauseOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := NewClient(&stubBackend{err: errors.New("503 service unavailable")}, logger)

	_, err := client.GeneratePrompt(context.Background(), testImage)
	require.Error(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), `"level":"ERROR"`))
	assert.Contains(t, buf.String(), "503 service unavailable")
}

func TestPromptInstructionCoversVisualElements(t *testing.T) {
	for _, word := range []string{"subject", "setting", "composition", "lighting", "colors", "mood", "introductory"} {
		assert.Contains(t, PromptInstruction, word)
	}
}
