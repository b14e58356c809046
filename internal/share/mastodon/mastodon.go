package mastodon

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/blacktop/snapshare/internal/encode"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/share"
	mastodonapi "github.com/mattn/go-mastodon"
)

const (
	envServer       = "SNAPSHARE_MASTODON_SERVER"
	envAccessToken  = "SNAPSHARE_MASTODON_ACCESS_TOKEN"
	envClientID     = "SNAPSHARE_MASTODON_CLIENT_ID"
	envClientSecret = "SNAPSHARE_MASTODON_CLIENT_SECRET"

	providerName   = "mastodon"
	requestTimeout = 30 * time.Second
)

// Config contains the settings needed to reach a Mastodon server.
type Config struct {
	Server       string
	AccessToken  string
	ClientID     string
	ClientSecret string
}

// Client wraps the Mastodon API client.
type Client struct {
	client *mastodonapi.Client
}

// New constructs a Mastodon poster based on environment configuration.
func New(ctx context.Context) (share.Poster, error) {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig constructs a Mastodon poster from explicit settings.
func NewWithConfig(cfg Config) *Client {
	mastodonClient := mastodonapi.NewClient(&mastodonapi.Config{
		Server:       cfg.Server,
		AccessToken:  cfg.AccessToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	mastodonClient.Timeout = requestTimeout

	return &Client{client: mastodonClient}
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// Post publishes a new status, attaching the screenshot when present.
func (c *Client) Post(ctx context.Context, req share.Request) error {
	var mediaIDs []mastodonapi.ID
	if req.Image != nil {
		attachment, err := c.uploadMedia(ctx, req.Image, req.ImageAlt)
		if err != nil {
			return err
		}
		mediaIDs = append(mediaIDs, attachment.ID)
	}

	_, err := c.client.PostStatus(ctx, &mastodonapi.Toot{
		Status:   req.Message,
		MediaIDs: mediaIDs,
	})
	if err != nil {
		return fmt.Errorf("post status: %w", err)
	}

	return nil
}

func (c *Client) uploadMedia(ctx context.Context, img *encode.Image, alt string) (*mastodonapi.Attachment, error) {
	if len(img.Data) == 0 {
		return nil, share.ValidationError{Provider: providerName, Reason: "image is empty"}
	}

	logutil.Debugf("uploading media to mastodon: bytes=%d", len(img.Data))
	attachment, err := c.client.UploadMediaFromMedia(ctx, &mastodonapi.Media{
		File:        bytes.NewReader(img.Data),
		Description: alt,
	})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	return attachment, nil
}

func loadConfigFromEnv() (Config, error) {
	env := share.EnvLookup{Provider: providerName}
	cfg := Config{
		Server:       env.Required(envServer),
		AccessToken:  env.Required(envAccessToken),
		ClientID:     env.Optional(envClientID, ""),
		ClientSecret: env.Optional(envClientSecret, ""),
	}
	if err := env.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
