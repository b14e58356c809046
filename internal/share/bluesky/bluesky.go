package bluesky

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/blacktop/snapshare/internal/encode"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/share"
	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
)

const (
	envHandle      = "SNAPSHARE_BLUESKY_HANDLE"
	envAppPassword = "SNAPSHARE_BLUESKY_APP_PASSWORD"
	envPDSURL      = "SNAPSHARE_BLUESKY_PDS_URL"

	providerName   = "bluesky"
	requestTimeout = 30 * time.Second

	// DefaultPDSURL is the public Bluesky PDS.
	DefaultPDSURL = "https://bsky.social"

	postCollection = "app.bsky.feed.post"
)

// Config allows the caller to supply defaults prior to reading environment variables.
type Config struct {
	PDSURL string
}

// Client implements share.Poster for Bluesky.
type Client struct {
	client *xrpc.Client
}

// New logs in to the PDS and returns a Bluesky poster.
func New(ctx context.Context, base Config) (share.Poster, error) {
	cfg, err := loadConfig(base)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	userAgent := "snapshare/1"
	xrpcClient := &xrpc.Client{
		Client:    httpClient,
		Host:      cfg.PDSURL,
		UserAgent: &userAgent,
	}

	session, err := atproto.ServerCreateSession(ctx, xrpcClient, &atproto.ServerCreateSession_Input{
		Identifier: cfg.Handle,
		Password:   cfg.AppPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	xrpcClient.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}
	logutil.Debugf("bluesky session created: handle=%s", session.Handle)

	return &Client{client: xrpcClient}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// Post creates a new Bluesky post with the screenshot embedded when present.
func (c *Client) Post(ctx context.Context, req share.Request) error {
	post := &bsky.FeedPost{
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Text:      req.Message,
	}

	if req.Image != nil {
		blob, err := c.uploadImage(ctx, req.Image)
		if err != nil {
			return err
		}
		post.Embed = embedImage(blob, req.ImageAlt)
	}

	_, err := atproto.RepoCreateRecord(ctx, c.client, &atproto.RepoCreateRecord_Input{
		Collection: postCollection,
		Repo:       c.client.Auth.Did,
		Record: &util.LexiconTypeDecoder{
			Val: post,
		},
	})
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	return nil
}

func embedImage(blob *util.LexBlob, alt string) *bsky.FeedPost_Embed {
	return &bsky.FeedPost_Embed{
		EmbedImages: &bsky.EmbedImages{
			Images: []*bsky.EmbedImages_Image{
				{
					Alt:   alt,
					Image: blob,
				},
			},
		},
	}
}

func (c *Client) uploadImage(ctx context.Context, img *encode.Image) (*util.LexBlob, error) {
	if len(img.Data) == 0 {
		return nil, share.ValidationError{Provider: providerName, Reason: "image is empty"}
	}

	resp, err := atproto.RepoUploadBlob(ctx, c.client, bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	if resp.Blob == nil {
		return nil, fmt.Errorf("upload blob: empty response")
	}

	return resp.Blob, nil
}

// ProviderConfig merges defaults with environment-defined values.
type ProviderConfig struct {
	Handle      string
	AppPassword string
	PDSURL      string
}

func loadConfig(base Config) (ProviderConfig, error) {
	fallback := base.PDSURL
	if fallback == "" {
		fallback = DefaultPDSURL
	}

	env := share.EnvLookup{Provider: providerName}
	cfg := ProviderConfig{
		Handle:      env.Required(envHandle),
		AppPassword: env.Required(envAppPassword),
		PDSURL:      env.Optional(envPDSURL, fallback),
	}
	if err := env.Err(); err != nil {
		return ProviderConfig{}, err
	}
	return cfg, nil
}
