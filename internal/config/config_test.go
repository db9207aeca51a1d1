package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"MEDASSIST_API_BASE",
		"MEDASSIST_API_TIMEOUT_MS",
		"MEDASSIST_FFMPEG_COMMAND",
		"MEDASSIST_AUDIO_INPUT_FORMAT",
		"MEDASSIST_AUDIO_INPUT_DEVICE",
		"MEDASSIST_SAMPLE_RATE",
		"MEDASSIST_CHANNELS",
		"MEDASSIST_AUDIO_CHUNK_SIZE",
		"MEDASSIST_DEFAULT_SESSION_TITLE",
		"MEDASSIST_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 120*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.API.Timeout)
	}
	if cfg.Audio.RecorderCommand != "ffmpeg" || cfg.Audio.InputFormat != "pulse" || cfg.Audio.InputDevice != "default" {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 || cfg.Audio.ChunkSize != 4096 {
		t.Fatalf("unexpected audio numbers: %+v", cfg.Audio)
	}
	if cfg.Session.DefaultTitle != "New Consultation" {
		t.Fatalf("unexpected default title: %q", cfg.Session.DefaultTitle)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MEDASSIST_API_BASE", "https://medassist.example.com/api")
	t.Setenv("MEDASSIST_API_TIMEOUT_MS", "5000")
	t.Setenv("MEDASSIST_FFMPEG_COMMAND", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("MEDASSIST_AUDIO_INPUT_FORMAT", "alsa")
	t.Setenv("MEDASSIST_AUDIO_INPUT_DEVICE", "hw:1,0")
	t.Setenv("MEDASSIST_SAMPLE_RATE", "44100")
	t.Setenv("MEDASSIST_CHANNELS", "2")
	t.Setenv("MEDASSIST_AUDIO_CHUNK_SIZE", "8192")
	t.Setenv("MEDASSIST_DEFAULT_SESSION_TITLE", "Walk-in Consultation")
	t.Setenv("MEDASSIST_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://medassist.example.com/api" {
		t.Fatalf("unexpected base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.API.Timeout)
	}
	if cfg.Audio.RecorderCommand != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected recorder command: %q", cfg.Audio.RecorderCommand)
	}
	if cfg.Audio.InputFormat != "alsa" || cfg.Audio.InputDevice != "hw:1,0" {
		t.Fatalf("unexpected audio input: %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 2 || cfg.Audio.ChunkSize != 8192 {
		t.Fatalf("unexpected audio numbers: %+v", cfg.Audio)
	}
	if cfg.Session.DefaultTitle != "Walk-in Consultation" {
		t.Fatalf("unexpected title: %q", cfg.Session.DefaultTitle)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MEDASSIST_API_TIMEOUT_MS", "-1")
	t.Setenv("MEDASSIST_SAMPLE_RATE", "not-a-number")
	t.Setenv("MEDASSIST_CHANNELS", "0")
	t.Setenv("MEDASSIST_AUDIO_CHUNK_SIZE", "64")
	t.Setenv("MEDASSIST_DEFAULT_SESSION_TITLE", "   ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Timeout != 120*time.Second {
		t.Fatalf("expected timeout fallback, got %s", cfg.API.Timeout)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("expected sample rate fallback, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Fatalf("expected channel fallback, got %d", cfg.Audio.Channels)
	}
	if cfg.Audio.ChunkSize != 4096 {
		t.Fatalf("expected chunk size fallback, got %d", cfg.Audio.ChunkSize)
	}
	if cfg.Session.DefaultTitle != "New Consultation" {
		t.Fatalf("expected default title fallback, got %q", cfg.Session.DefaultTitle)
	}
}
