// Package pipeline composes capture, encoding, upload and posting into the
// end-to-end share flows.
//
// Every flow runs its steps in order on the calling goroutine and waits at each
// suspension point (frame completion, HTTP round-trip). A Pipeline is not safe
// for concurrent use: concurrent captures against the same screen source
// interleave unpredictably.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/blacktop/snapshare/internal/capture"
	"github.com/blacktop/snapshare/internal/config"
	"github.com/blacktop/snapshare/internal/encode"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/share"
	"github.com/blacktop/snapshare/internal/share/imgur"
	"github.com/blacktop/snapshare/internal/share/intent"
	"github.com/blacktop/snapshare/internal/share/webhook"
)

// Capturer grabs a screen region.
type Capturer interface {
	Capture(ctx context.Context, region capture.Region) (*capture.Image, error)
}

// Uploader publishes an encoded image to an image host.
type Uploader interface {
	Upload(ctx context.Context, img *encode.Image, clientID string) share.UploadResult
}

// ChatPoster sends a message to a chat webhook.
type ChatPoster interface {
	Post(ctx context.Context, webhookURL string, msg webhook.Message) share.PostResult
}

// Pipeline runs the share flows against a single configuration.
type Pipeline struct {
	cfg      *config.Config
	capturer Capturer
	uploader Uploader
	chat     ChatPoster
	opener   intent.Opener
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCapturer overrides the screen capturer.
func WithCapturer(c Capturer) Option { return func(p *Pipeline) { p.capturer = c } }

// WithUploader overrides the image host client.
func WithUploader(u Uploader) Option { return func(p *Pipeline) { p.uploader = u } }

// WithChatPoster overrides the webhook client.
func WithChatPoster(c ChatPoster) Option { return func(p *Pipeline) { p.chat = c } }

// WithOpener overrides how intent URLs are handed to the platform.
func WithOpener(o intent.Opener) Option { return func(p *Pipeline) { p.opener = o } }

// New returns a Pipeline wired to the real screen, Imgur, the chat webhook
// client and the default browser, unless overridden by opts. cfg is read on
// every call, so later changes to it take effect.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		capturer: capture.New(capture.NewScreenSource()),
		uploader: imgur.New(),
		chat:     webhook.New(webhook.WithDefaultUsername(cfg.DisplayName)),
		opener:   intent.BrowserOpener{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the configuration the pipeline reads from.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// TwitterResult describes the outcome of ShareToTwitter.
type TwitterResult struct {
	// URL is the share-intent URL that was built.
	URL string
	// ScreenshotURL is the uploaded image link, empty when no image was shared.
	ScreenshotURL string
	// Opened reports whether the URL was handed to the platform successfully.
	Opened bool
}

// ShareToTwitter optionally captures region, uploads it, and opens a tweet
// intent with text and the screenshot link. A failed capture or upload never
// blocks sharing the text alone.
func (p *Pipeline) ShareToTwitter(ctx context.Context, text string, screenshot bool, region capture.Region) TwitterResult {
	var res TwitterResult
	if screenshot {
		if img := p.Snapshot(ctx, region); img != nil {
			res.ScreenshotURL = p.Upload(ctx, img).URL
		}
	}

	res.URL = intent.BuildURL(text, res.ScreenshotURL)
	if err := p.opener.OpenURL(res.URL); err != nil {
		logutil.Errorf("open intent url: %v", err)
		return res
	}
	res.Opened = true
	return res
}

// ShareToChat optionally captures region and posts text with the raw encoded
// screenshot to the configured webhook.
func (p *Pipeline) ShareToChat(ctx context.Context, text string, screenshot bool, region capture.Region) share.PostResult {
	var img *encode.Image
	if screenshot {
		img = p.Snapshot(ctx, region)
	}
	return p.PostToChat(ctx, text, "", img)
}

// PostToChat posts text and an optional image to the configured webhook. An
// empty username falls back to the configured display name.
func (p *Pipeline) PostToChat(ctx context.Context, text, username string, img *encode.Image) share.PostResult {
	if username == "" {
		username = p.cfg.DisplayName
	}
	return p.chat.Post(ctx, p.cfg.WebhookURL, webhook.Message{
		Content:   text,
		Username:  username,
		AvatarURL: p.cfg.AvatarURL,
		Image:     img,
	})
}

// Upload sends img to the image host with the configured client id.
func (p *Pipeline) Upload(ctx context.Context, img *encode.Image) share.UploadResult {
	return p.uploader.Upload(ctx, img, p.cfg.ImgurClientID)
}

// Snapshot captures region and encodes it in the configured format. The
// capture is released as soon as encoding finishes. It returns nil when
// either step fails; the failure is logged.
func (p *Pipeline) Snapshot(ctx context.Context, region capture.Region) *encode.Image {
	img, err := p.Capture(ctx, region)
	if err != nil {
		logutil.Errorf("capture screenshot: %v", err)
		return nil
	}
	return img
}

// Capture is Snapshot with the error returned instead of logged.
func (p *Pipeline) Capture(ctx context.Context, region capture.Region) (*encode.Image, error) {
	raw, err := p.capturer.Capture(ctx, region)
	if err != nil {
		return nil, err
	}
	defer raw.Release()

	logutil.Debugf("captured region %s", region)
	return encode.Encode(raw, p.cfg.UseJPEG)
}

// Broadcast posts req to every poster in order and joins their errors.
func Broadcast(ctx context.Context, posters []share.Poster, req share.Request, progress func(name string, err error)) error {
	if len(posters) == 0 {
		return errors.New("no targets available")
	}

	var errs []error
	for _, poster := range posters {
		err := poster.Post(ctx, req)
		if err != nil {
			err = fmt.Errorf("%s: %w", poster.Name(), err)
			errs = append(errs, err)
		}
		if progress != nil {
			progress(poster.Name(), err)
		}
	}
	return errors.Join(errs...)
}
