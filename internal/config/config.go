package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Load when the selected backend needs a
// credential and API_KEY is unset.
var ErrMissingAPIKey = errors.New("API_KEY is not defined in environment variables")

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":8080"`
	VisionBackend  string        `env:"VISION_BACKEND" envDefault:"gemini"`
	APIKey         string        `env:"API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL  string        `env:"GEMINI_BASE_URL"`
	ClaudeModel    string        `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-5"`
	OpenAIModel    string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	OllamaHost     string        `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel    string        `env:"OLLAMA_MODEL" envDefault:"llava"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string        `env:"LOG_FILE"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file (path from DOTENV_FILE, default ".env")
// and then parses the process environment. Variables already set in the
// environment win over the file.
func Load() (*Config, error) {
	dotenv := os.Getenv("DOTENV_FILE")
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", dotenv, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.VisionBackend {
	case "gemini", "claude", "openai":
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown VISION_BACKEND %q", c.VisionBackend)
	}
	return nil
}
