package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"5173"`
	DemoMode          string `env:"DEMO_MODE" envDefault:"0"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	MeshyAPIKey       string `env:"MESHY_API_KEY"`
	MeshyBaseURL      string `env:"MESHY_BASE_URL" envDefault:"https://api.meshy.ai"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	StorageBucket     string `env:"STORAGE_BUCKET"`
	DownloadDir       string `env:"DOWNLOAD_DIR" envDefault:"downloads"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DemoEnabled interpreta el flag DEMO_MODE (acepta 1/true/on).
func (c *Config) DemoEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.DemoMode)) {
	case "1", "true", "on":
		return true
	}
	return false
}
