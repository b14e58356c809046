package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvImgurClientID, EnvWebhookURL, EnvDisplayName, EnvAvatarURL, EnvFormat} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if !cfg.UseJPEG {
		t.Error("UseJPEG: got false, want true")
	}
	if cfg.DisplayName != "Discord Bot" {
		t.Errorf("DisplayName: got %q, want %q", cfg.DisplayName, "Discord Bot")
	}
	if cfg.ImgurClientID != "" || cfg.WebhookURL != "" {
		t.Errorf("credentials should be empty by default: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`format: png
imgur_client_id: file-id
webhook_url: https://discord.com/api/webhooks/1/abc
avatar_url: https://example.com/me.png
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UseJPEG {
		t.Error("UseJPEG: got true, want false")
	}
	if cfg.ImgurClientID != "file-id" {
		t.Errorf("ImgurClientID: got %q", cfg.ImgurClientID)
	}
	if cfg.WebhookURL != "https://discord.com/api/webhooks/1/abc" {
		t.Errorf("WebhookURL: got %q", cfg.WebhookURL)
	}
	if cfg.DisplayName != "Discord Bot" {
		t.Errorf("DisplayName: got %q, want default", cfg.DisplayName)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile: got %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("imgur_client_id: file-id\nformat: png\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvImgurClientID, "env-id")
	t.Setenv(EnvFormat, "jpeg")
	t.Setenv(EnvDisplayName, "Snap Bot")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ImgurClientID != "env-id" {
		t.Errorf("ImgurClientID: got %q, want env-id", cfg.ImgurClientID)
	}
	if !cfg.UseJPEG || cfg.Format != "jpg" {
		t.Errorf("format: got UseJPEG=%t Format=%q", cfg.UseJPEG, cfg.Format)
	}
	if cfg.DisplayName != "Snap Bot" {
		t.Errorf("DisplayName: got %q", cfg.DisplayName)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("format: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for invalid yaml")
	}

	t.Setenv(EnvFormat, "gif")
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSetFormat(t *testing.T) {
	cfg := Defaults()
	if err := cfg.SetFormat("PNG"); err != nil || cfg.UseJPEG {
		t.Errorf("SetFormat(PNG): err=%v UseJPEG=%t", err, cfg.UseJPEG)
	}
	if err := cfg.SetFormat("jpeg"); err != nil || !cfg.UseJPEG || cfg.Format != "jpg" {
		t.Errorf("SetFormat(jpeg): err=%v cfg=%+v", err, cfg)
	}
	if err := cfg.SetFormat("bmp"); err == nil {
		t.Error("expected error for bmp")
	}
}
