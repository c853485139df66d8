package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.OpenAI.APIBase != "https://api.openai.com/v1" {
		t.Errorf("api base = %q, want OpenAI default", cfg.OpenAI.APIBase)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q, want gpt-3.5-turbo", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 1.0 {
		t.Errorf("temperature = %v, want 1.0", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.BaselineModel == "" {
		t.Error("baseline model should have a default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SLACKWISE_SERVER__PORT", "9000")
	t.Setenv("SLACKWISE_OPENAI__MODEL", "gpt-4o")
	t.Setenv("SLACKWISE_STORAGE__BUCKET", "creds-bucket")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.Storage.Bucket != "creds-bucket" {
		t.Errorf("bucket = %q, want creds-bucket", cfg.Storage.Bucket)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  port: 7070\nopenai:\n  org_id: org-test\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.OpenAI.OrgID != "org-test" {
		t.Errorf("org id = %q, want org-test", cfg.OpenAI.OrgID)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("SLACKWISE_SERVER__PORT", "7071")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7071 {
		t.Errorf("port = %d, want env override 7071", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file should error")
	}
}
