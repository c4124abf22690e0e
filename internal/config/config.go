package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Gemini GeminiConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxUploadBytes  int64         `env:"SERVER_MAX_UPLOAD_BYTES" envDefault:"20971520"`
}

type GeminiConfig struct {
	APIKey       string `env:"GEMINI_API_KEY,required,notEmpty"`
	Model        string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-image"`
	AspectRatio  string `env:"GEMINI_ASPECT_RATIO"`
	SystemPrompt string `env:"GEMINI_SYSTEM_PROMPT"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load は .env があれば読み込んだ上で、環境変数から設定を組み立てます。
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")
	return Parse()
}

// Parse は環境変数だけから設定を組み立てます。
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("SERVER_MAX_UPLOAD_BYTES must be positive")
	}
	return cfg, nil
}

// SlogLevel は LOG_LEVEL を slog.Level に変換します。不明な値は Info とみなします。
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
