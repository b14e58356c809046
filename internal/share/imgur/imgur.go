// Package imgur uploads encoded screenshots to the Imgur image host.
package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/blacktop/snapshare/internal/encode"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/share"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	providerName = "imgur"

	// DefaultEndpoint is the anonymous image upload API.
	DefaultEndpoint = "https://api.imgur.com/3/image"
)

// uploadResponse is the JSON envelope returned by the upload API.
type uploadResponse struct {
	Status  int   `json:"status"`
	Success bool  `json:"success"`
	Data    *data `json:"data"`
}

type data struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// Client uploads images to Imgur.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithEndpoint overrides the upload endpoint.
func WithEndpoint(endpoint string) Option {
	return func(cl *Client) { cl.endpoint = endpoint }
}

// New returns a Client using a pooled cleanhttp client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: cleanhttp.DefaultPooledClient(),
		endpoint:   DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends img to the image host and returns its public link. It never
// returns an error: every failure is logged and reported as a failed result.
func (c *Client) Upload(ctx context.Context, img *encode.Image, clientID string) share.UploadResult {
	if img == nil {
		return share.UploadResult{}
	}
	if strings.TrimSpace(clientID) == "" {
		logutil.Warnf("%v", share.MissingConfigError{Provider: providerName, Fields: []string{"client id"}})
		return share.UploadResult{}
	}

	link, err := c.upload(ctx, img, clientID)
	if err != nil {
		logutil.Errorf("upload image: %v", err)
		return share.UploadResult{}
	}

	logutil.Debugf("image uploaded: link=%s", link)
	return share.UploadResult{OK: true, URL: link}
}

func (c *Client) upload(ctx context.Context, img *encode.Image, clientID string) (string, error) {
	form := url.Values{}
	form.Set("image", img.Base64())
	form.Set("type", "base64")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Client-ID "+clientID)

	logutil.Debugf("uploading image: format=%s bytes=%d", img.Format, len(img.Data))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", share.TransportError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", share.TransportError{Provider: providerName, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", share.TransportError{Provider: providerName, Status: resp.StatusCode}
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", share.MalformedResponseError{Provider: providerName, Body: string(body), Err: err}
	}
	if parsed.Data == nil {
		return "", share.MalformedResponseError{Provider: providerName, Body: string(body)}
	}

	return parsed.Data.Link, nil
}
