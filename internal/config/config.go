package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the desktop client.
type Config struct {
	API     APIConfig
	Audio   AudioConfig
	Session SessionConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	ChunkSize       int
}

type SessionConfig struct {
	DefaultTitle string
}

type LogConfig struct {
	Level string
}

// Load resolves configuration from a .env file (if present), environment
// variables, and sensible defaults.
func Load() (Config, error) {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		API: APIConfig{
			BaseURL: envOrDefault("MEDASSIST_API_BASE", "http://localhost:8000/api"),
			Timeout: time.Duration(envOrDefaultInt("MEDASSIST_API_TIMEOUT_MS", 120000)) * time.Millisecond,
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("MEDASSIST_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("MEDASSIST_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("MEDASSIST_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("MEDASSIST_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("MEDASSIST_CHANNELS", 1),
			ChunkSize:       envOrDefaultInt("MEDASSIST_AUDIO_CHUNK_SIZE", 4096),
		},
		Session: SessionConfig{
			DefaultTitle: envOrDefault("MEDASSIST_DEFAULT_SESSION_TITLE", "New Consultation"),
		},
		Log: LogConfig{
			Level: envOrDefault("MEDASSIST_LOG_LEVEL", "info"),
		},
	}

	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 120 * time.Second
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if strings.TrimSpace(cfg.Session.DefaultTitle) == "" {
		cfg.Session.DefaultTitle = "New Consultation"
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
