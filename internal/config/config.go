package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"

	"gradient/internal/segmenter"
)

// Config is the process configuration, loaded once at startup. No other
// process-wide state exists; the segmenter receives its thresholds as an
// explicit value per call site.
type Config struct {
	InputDir  string `env:"INPUT_DIR" envDefault:"./corpus"`
	OutputDir string `env:"OUTPUT_DIR" envDefault:"./out"`

	// Chunk size envelope, in characters.
	TargetChar int `env:"TARGET_CHAR" envDefault:"500"`
	MinChar    int `env:"MIN_CHAR" envDefault:"200"`
	MaxChar    int `env:"MAX_CHAR" envDefault:"800"`

	Workers int `env:"WORKERS" envDefault:"4"`

	// Page estimation for formats without native pages (markdown, html, docx).
	CharsPerPage int `env:"CHARS_PER_PAGE" envDefault:"1800"`

	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`

	// Embedding generation. Empty provider disables the embed phase.
	EmbedProvider  string `env:"EMBED_PROVIDER"`
	EmbedBatchSize int    `env:"EMBED_BATCH_SIZE" envDefault:"16"`
	EmbedCacheSize int    `env:"EMBED_CACHE_SIZE" envDefault:"1024"`
	OllamaURL      string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel    string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAIModel    string `env:"OPENAI_EMBED_MODEL" envDefault:"text-embedding-3-small"`

	// Serve mode.
	Port           string `env:"PORT" envDefault:"8090"`
	APIKey         string `env:"GRADIENT_API_KEY"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"` // 50MB
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration errors before any processing begins.
func (c Config) Validate() error {
	if err := c.Segmenter().Validate(); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.CharsPerPage <= 0 {
		return fmt.Errorf("CHARS_PER_PAGE must be positive, got %d", c.CharsPerPage)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	if c.EmbedCacheSize <= 0 {
		return fmt.Errorf("EMBED_CACHE_SIZE must be positive, got %d", c.EmbedCacheSize)
	}
	switch c.EmbedProvider {
	case "", "ollama":
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBED_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown EMBED_PROVIDER %q", c.EmbedProvider)
	}
	return nil
}

// Segmenter returns the chunk size envelope as a segmenter configuration.
func (c Config) Segmenter() segmenter.Config {
	return segmenter.Config{
		TargetChar: c.TargetChar,
		MinChar:    c.MinChar,
		MaxChar:    c.MaxChar,
	}
}
