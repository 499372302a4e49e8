package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TextModel != DefaultTextModel {
		t.Errorf("TextModel = %q, want %q", cfg.TextModel, DefaultTextModel)
	}
	if cfg.DocTag != "akakura" {
		t.Errorf("DocTag = %q, want akakura", cfg.DocTag)
	}
	if cfg.SignTTL != time.Hour {
		t.Errorf("SignTTL = %v, want 1h", cfg.SignTTL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "bucket: file-bucket\nport: \"9000\"\ndoc_tag: onsen\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOCAIVER_CONFIG", path)
	t.Setenv("BUCKET_NAME", "env-bucket")

	cfg := Load()

	if cfg.Bucket != "env-bucket" {
		t.Errorf("Bucket = %q, env must win over file", cfg.Bucket)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want file value 9000", cfg.Port)
	}
	if cfg.DocTag != "onsen" {
		t.Errorf("DocTag = %q, want file value onsen", cfg.DocTag)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error with no bucket")
	}

	cfg.Bucket = "b"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error with no API key")
	}

	cfg.GeminiAPIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "BUCKET_NAME", "GEMINI_API_KEY", "LOCAIVER_CONFIG",
		"LOCAIVER_TEXT_MODEL", "LOCAIVER_DOC_TAG", "FFMPEG_PATH",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
