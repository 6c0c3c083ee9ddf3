package vision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/imgprompt/internal/config"
	"github.com/vbonduro/imgprompt/internal/vision/claude"
	"github.com/vbonduro/imgprompt/internal/vision/gemini"
	"github.com/vbonduro/imgprompt/internal/vision/ollama"
	"github.com/vbonduro/imgprompt/internal/vision/openai"
)

// NewBackend builds the backend selected by cfg.VisionBackend.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.VisionBackend {
	case "gemini":
		logger.Info("using Gemini vision backend", "model", cfg.GeminiModel)
		d, err := gemini.NewGeminiDescriber(ctx, cfg.APIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claude.NewClaudeDescriber(cfg.APIKey, cfg.ClaudeModel), nil
	case "openai":
		logger.Info("using OpenAI vision backend", "model", cfg.OpenAIModel)
		return openai.NewOpenAIDescriber(cfg.APIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollama.NewOllamaDescriber(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q", cfg.VisionBackend)
	}
}
