// Package webhook posts messages with optional attachments to a Discord-style chat webhook.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/blacktop/snapshare/internal/encode"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/share"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	providerName = "webhook"

	// DefaultUsername is used when neither the message nor the client supplies one.
	DefaultUsername = "Discord Bot"

	fileField = "files[0]"
)

// Message is a single chat post.
type Message struct {
	Content   string
	Username  string
	AvatarURL string
	Image     *encode.Image
}

// Client posts to chat webhooks.
type Client struct {
	httpClient *http.Client
	username   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithDefaultUsername sets the display name used for messages without one.
func WithDefaultUsername(name string) Option {
	return func(cl *Client) {
		if strings.TrimSpace(name) != "" {
			cl.username = name
		}
	}
}

// New returns a Client using a pooled cleanhttp client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: cleanhttp.DefaultPooledClient(),
		username:   DefaultUsername,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends msg to webhookURL. Failures are logged and reported through the result.
func (c *Client) Post(ctx context.Context, webhookURL string, msg Message) share.PostResult {
	if strings.TrimSpace(webhookURL) == "" {
		logutil.Warnf("%v", share.MissingConfigError{Provider: providerName, Fields: []string{"webhook url"}})
		return share.PostResult{}
	}
	if msg.Username == "" {
		msg.Username = c.username
	}

	if err := c.post(ctx, webhookURL, msg); err != nil {
		logutil.Errorf("post to webhook: %v", err)
		return share.PostResult{}
	}

	logutil.Debugf("webhook post delivered: attachment=%t", msg.Image != nil)
	return share.PostResult{OK: true}
}

func (c *Client) post(ctx context.Context, webhookURL string, msg Message) error {
	body, contentType, err := buildForm(msg)
	if err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return share.TransportError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return share.TransportError{Provider: providerName, Status: resp.StatusCode}
	}
	return nil
}

func buildForm(msg Message) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"username", msg.Username},
		{"content", msg.Content},
		{"avatar_url", msg.AvatarURL},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if msg.Image != nil {
		// CreateFormFile sets Content-Type: application/octet-stream.
		part, err := w.CreateFormFile(fileField, msg.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(msg.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
