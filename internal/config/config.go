// Package config loads snapshare settings from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (SNAPSHARE_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order when no path is given:
//  1. .snapshare.yaml in current directory
//  2. ~/.config/snapshare/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvImgurClientID = "SNAPSHARE_IMGUR_CLIENT_ID"
	EnvWebhookURL    = "SNAPSHARE_WEBHOOK_URL"
	EnvDisplayName   = "SNAPSHARE_DISPLAY_NAME"
	EnvAvatarURL     = "SNAPSHARE_AVATAR_URL"
	EnvFormat        = "SNAPSHARE_FORMAT"

	defaultDisplayName = "Discord Bot"
)

// Config holds the share settings for the lifetime of the process. It is
// owned by the caller's goroutine and has no locking.
type Config struct {
	// UseJPEG selects JPEG encoding for screenshots; PNG otherwise.
	UseJPEG bool `yaml:"-"`
	// Format is the file form of UseJPEG: "jpg" or "png".
	Format string `yaml:"format"`

	ImgurClientID string `yaml:"imgur_client_id"`
	WebhookURL    string `yaml:"webhook_url"`
	DisplayName   string `yaml:"display_name"`
	AvatarURL     string `yaml:"avatar_url"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		UseJPEG:     true,
		Format:      "jpg",
		DisplayName: defaultDisplayName,
	}
}

// Load reads configuration from path (or the default search locations when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	file, data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", file, err)
		}
		cfg.ConfigFile = file
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	if err := cfg.SetFormat(cfg.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetFormat sets the screenshot encoding from "jpg", "jpeg" or "png".
func (c *Config) SetFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpg", "jpeg":
		c.UseJPEG = true
		c.Format = "jpg"
	case "png":
		c.UseJPEG = false
		c.Format = "png"
	default:
		return fmt.Errorf("invalid image format %q (want jpg or png)", format)
	}
	return nil
}

func readConfigFile(path string) (string, []byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("read config file: %w", err)
		}
		return path, data, nil
	}

	if data, err := os.ReadFile(".snapshare.yaml"); err == nil {
		return ".snapshare.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "snapshare", "config.yaml")
		if data, err := os.ReadFile(p); err == nil {
			return p, data, nil
		}
	}

	return "", nil, nil
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Format != "" {
		cfg.Format = file.Format
	}
	if file.ImgurClientID != "" {
		cfg.ImgurClientID = file.ImgurClientID
	}
	if file.WebhookURL != "" {
		cfg.WebhookURL = file.WebhookURL
	}
	if file.DisplayName != "" {
		cfg.DisplayName = file.DisplayName
	}
	if file.AvatarURL != "" {
		cfg.AvatarURL = file.AvatarURL
	}
}

func mergeEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		cfg.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvImgurClientID)); v != "" {
		cfg.ImgurClientID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWebhookURL)); v != "" {
		cfg.WebhookURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDisplayName)); v != "" {
		cfg.DisplayName = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAvatarURL)); v != "" {
		cfg.AvatarURL = v
	}
}
