package share

import (
	"context"

	"github.com/blacktop/snapshare/internal/encode"
)

// Request defines the message payload shared across all API posters.
type Request struct {
	Message  string
	Image    *encode.Image
	ImageAlt string
}

// Poster abstracts a social network that can publish content through its API.
type Poster interface {
	Name() string
	Post(ctx context.Context, req Request) error
}

// UploadResult reports the outcome of an image host upload.
// URL is empty whenever OK is false.
type UploadResult struct {
	OK  bool
	URL string
}

// PostResult reports whether a chat post went through.
type PostResult struct {
	OK bool
}
