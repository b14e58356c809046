package bluesky

import (
	"errors"
	"testing"

	"github.com/blacktop/snapshare/internal/share"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		base    Config
		wantPDS string
		wantErr bool
	}{
		{
			name:    "defaults pds",
			env:     map[string]string{envHandle: "me.bsky.social", envAppPassword: "pw"},
			wantPDS: DefaultPDSURL,
		},
		{
			name:    "base pds",
			env:     map[string]string{envHandle: "me.bsky.social", envAppPassword: "pw"},
			base:    Config{PDSURL: "https://pds.example.com"},
			wantPDS: "https://pds.example.com",
		},
		{
			name:    "env pds wins",
			env:     map[string]string{envHandle: "me.bsky.social", envAppPassword: "pw", envPDSURL: "https://env.example.com"},
			base:    Config{PDSURL: "https://pds.example.com"},
			wantPDS: "https://env.example.com",
		},
		{
			name:    "missing password",
			env:     map[string]string{envHandle: "me.bsky.social"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{envHandle, envAppPassword, envPDSURL} {
				t.Setenv(k, tt.env[k])
			}
			cfg, err := loadConfig(tt.base)
			if tt.wantErr {
				var missing share.MissingConfigError
				if !errors.As(err, &missing) {
					t.Fatalf("got %v, want MissingConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if cfg.PDSURL != tt.wantPDS {
				t.Errorf("PDSURL: got %q, want %q", cfg.PDSURL, tt.wantPDS)
			}
		})
	}
}

func TestEmbedImage(t *testing.T) {
	embed := embedImage(nil, "screenshot")
	if embed.EmbedImages == nil || len(embed.EmbedImages.Images) != 1 {
		t.Fatalf("embed: got %+v", embed)
	}
	if embed.EmbedImages.Images[0].Alt != "screenshot" {
		t.Errorf("Alt: got %q", embed.EmbedImages.Images[0].Alt)
	}
}
