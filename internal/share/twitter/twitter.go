package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blacktop/snapshare/internal/encode"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/share"
	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/media/upload"
	uploadtypes "github.com/michimani/gotwi/media/upload/types"
	"github.com/michimani/gotwi/resources"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
)

const (
	envAPIKey       = "SNAPSHARE_TWITTER_CONSUMER_KEY"
	envAPISecret    = "SNAPSHARE_TWITTER_CONSUMER_SECRET"
	envAccessToken  = "SNAPSHARE_TWITTER_ACCESS_TOKEN"
	envAccessSecret = "SNAPSHARE_TWITTER_ACCESS_TOKEN_SECRET"
	envDebug        = "SNAPSHARE_TWITTER_DEBUG"

	providerName = "twitter"

	metadataEndpoint = "https://upload.twitter.com/1.1/media/metadata/create.json"
)

var httpTimeout = 30 * time.Second

// Config captures the credentials required for OAuth 1.0a user-context requests.
type Config struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Client implements share.Poster for X (Twitter) through the v2 API.
type Client struct {
	api *gotwi.Client
}

// New constructs a Twitter poster using gotwi and OAuth 1.0a credentials.
func New(ctx context.Context) (share.Poster, error) {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: httpTimeout}
	debugEnabled := os.Getenv(envDebug) == "1" || logutil.Verbose()

	client, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           httpClient,
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           cfg.AccessToken,
		OAuthTokenSecret:     cfg.AccessSecret,
		APIKey:               cfg.APIKey,
		APIKeySecret:         cfg.APISecret,
		Debug:                debugEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("create X client: %w", err)
	}

	if !client.IsReady() {
		return nil, fmt.Errorf("twitter client not ready")
	}

	return &Client{api: client}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return providerName }

// Post publishes the message (and optional screenshot) to X.
func (c *Client) Post(ctx context.Context, req share.Request) error {
	var mediaIDs []string
	if req.Image != nil {
		logutil.Debugf("uploading media: format=%s bytes=%d", req.Image.Format, len(req.Image.Data))
		mediaID, err := c.uploadMedia(ctx, req.Image, req.ImageAlt)
		if err != nil {
			return err
		}
		mediaIDs = append(mediaIDs, mediaID)
		logutil.Debugf("media uploaded: media_id=%s", mediaID)
	}

	input := &managetweettypes.CreateInput{
		Text: gotwi.String(req.Message),
	}
	if len(mediaIDs) > 0 {
		input.Media = &managetweettypes.CreateInputMedia{MediaIDs: mediaIDs}
	}

	logutil.Debugf("posting tweet: media_count=%d", len(mediaIDs))
	if _, err := managetweet.Create(ctx, c.api, input); err != nil {
		return fmt.Errorf("post tweet: %w", unwrapGotwiError(err))
	}
	logutil.Debugf("tweet posted successfully")

	return nil
}

func (c *Client) uploadMedia(ctx context.Context, img *encode.Image, altText string) (string, error) {
	data := img.Data
	if len(data) == 0 {
		return "", share.ValidationError{Provider: providerName, Reason: "image is empty"}
	}

	mediaType, category, err := resolveMediaType(img)
	if err != nil {
		return "", err
	}

	logutil.Debugf("initialize upload: media_type=%s bytes=%d", mediaType, len(data))
	initRes, err := upload.Initialize(ctx, c.api, &uploadtypes.InitializeInput{
		MediaType:     mediaType,
		TotalBytes:    len(data),
		MediaCategory: category,
	})
	if err != nil {
		return "", fmt.Errorf("initialize upload: %w", err)
	}
	if err := partialError(initRes.Errors); err != nil {
		return "", fmt.Errorf("initialize upload: %w", err)
	}

	mediaID := initRes.Data.MediaID
	logutil.Debugf("initialize complete: media_id=%s", mediaID)

	appendIn := &uploadtypes.AppendInput{
		MediaID:      mediaID,
		Media:        bytes.NewReader(data),
		SegmentIndex: 0,
	}
	appendIn.GenerateBoundary()

	logutil.Debugf("append upload: media_id=%s segment=0", mediaID)
	appendRes, err := upload.Append(ctx, c.api, appendIn)
	if err != nil {
		return "", fmt.Errorf("append upload: %w", err)
	}
	if err := partialError(appendRes.Errors); err != nil {
		return "", fmt.Errorf("append upload: %w", err)
	}
	logutil.Debugf("append completed")

	finalizeRes, err := upload.Finalize(ctx, c.api, &uploadtypes.FinalizeInput{MediaID: mediaID})
	if err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	if err := partialError(finalizeRes.Errors); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	info := finalizeRes.Data.ProcessingInfo
	if err := waitForProcessing(ctx, string(info.State), int(info.CheckAfterSecs)); err != nil {
		return "", err
	}

	if alt := strings.TrimSpace(altText); alt != "" {
		logutil.Debugf("setting alt text: media_id=%s", mediaID)
		if err := c.setAltText(ctx, mediaID, alt); err != nil {
			return "", err
		}
	}

	return mediaID, nil
}

// waitForProcessing holds off for the server-suggested delay while media is
// still processing. Screenshots are small and normally finish on finalize.
func waitForProcessing(ctx context.Context, state string, checkAfterSecs int) error {
	logutil.Debugf("finalize state=%s", state)
	switch state {
	case "", string(resources.ProcessingInfoStateSucceeded):
		return nil
	case string(resources.ProcessingInfoStateInProgress), string(resources.ProcessingInfoStatePending):
	default:
		return fmt.Errorf("media processing failed: state=%s", state)
	}

	timer := time.NewTimer(time.Duration(checkAfterSecs) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) setAltText(ctx context.Context, mediaID, altText string) error {
	params := &metadataParameters{
		mediaID: mediaID,
		altText: altText,
	}

	ctx = context.WithValue(ctx, "Content-Type", "application/json;charset=UTF-8")

	if err := c.api.CallAPI(ctx, metadataEndpoint, http.MethodPost, params, &metadataResponse{}); err != nil {
		return fmt.Errorf("set alt text: %w", unwrapGotwiError(err))
	}
	logutil.Debugf("alt text set: media_id=%s", mediaID)

	return nil
}

func loadConfigFromEnv() (Config, error) {
	env := share.EnvLookup{Provider: providerName}
	cfg := Config{
		APIKey:       env.Required(envAPIKey),
		APISecret:    env.Required(envAPISecret),
		AccessToken:  env.Required(envAccessToken),
		AccessSecret: env.Required(envAccessSecret),
	}
	if err := env.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveMediaType maps a screenshot to its upload media type. Screenshots
// are only ever JPEG or PNG; the bytes decide when Format is unset.
func resolveMediaType(img *encode.Image) (uploadtypes.MediaType, uploadtypes.MediaCategory, error) {
	format := img.Format
	if format == "" {
		switch http.DetectContentType(img.Data) {
		case "image/jpeg":
			format = encode.FormatJPEG
		case "image/png":
			format = encode.FormatPNG
		}
	}

	switch format {
	case encode.FormatJPEG:
		return uploadtypes.MediaTypeJPEG, uploadtypes.MediaCategoryTweetImage, nil
	case encode.FormatPNG:
		return uploadtypes.MediaTypePNG, uploadtypes.MediaCategoryTweetImage, nil
	}
	return "", "", share.ValidationError{Provider: providerName, Reason: "screenshot is neither jpg nor png"}
}

// partialError folds the API's partial errors into one error, or nil.
func partialError(partials []resources.PartialError) error {
	if len(partials) == 0 {
		return nil
	}
	var msgs []string
	for _, pe := range partials {
		msgs = appendFirst(msgs, deref(pe.Detail), deref(pe.Title))
	}
	return joinMessages(msgs, "unknown error")
}

// unwrapGotwiError replaces gotwi's verbose error with its human-readable parts.
func unwrapGotwiError(err error) error {
	var gwErr *gotwi.GotwiError
	if !errors.As(err, &gwErr) || gwErr == nil {
		return err
	}

	msgs := appendFirst(nil, gwErr.Title)
	msgs = appendFirst(msgs, gwErr.Detail)
	for _, apiErr := range gwErr.APIErrors {
		msgs = appendFirst(msgs, apiErr.Message)
	}
	if len(msgs) == 0 {
		msgs = appendFirst(msgs, gwErr.Error())
	}
	return joinMessages(msgs, "X API request failed")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// appendFirst appends the first non-empty candidate, if any.
func appendFirst(msgs []string, candidates ...string) []string {
	for _, c := range candidates {
		if c != "" {
			return append(msgs, c)
		}
	}
	return msgs
}

func joinMessages(msgs []string, fallback string) error {
	if len(msgs) == 0 {
		return errors.New(fallback)
	}
	return errors.New(strings.Join(msgs, "; "))
}

type metadataParameters struct {
	mediaID     string
	altText     string
	accessToken string
}

func (p *metadataParameters) SetAccessToken(token string) {
	p.accessToken = token
}

func (p *metadataParameters) AccessToken() string {
	return p.accessToken
}

func (p *metadataParameters) ResolveEndpoint(endpointBase string) string {
	return endpointBase
}

func (p *metadataParameters) Body() (io.Reader, error) {
	body := struct {
		MediaID string `json:"media_id"`
		AltText struct {
			Text string `json:"text"`
		} `json:"alt_text"`
	}{}
	body.MediaID = p.mediaID
	body.AltText.Text = p.altText

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}

func (p *metadataParameters) ParameterMap() map[string]string {
	return map[string]string{}
}

type metadataResponse struct{}

func (metadataResponse) HasPartialError() bool { return false }
