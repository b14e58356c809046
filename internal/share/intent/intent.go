// Package intent builds tweet share-intent URLs.
package intent

import (
	"net/url"
	"strings"

	"github.com/pkg/browser"
)

// BaseURL is the tweet composer web intent.
const BaseURL = "https://twitter.com/intent/tweet?text="

// maxExtensionTail is the longest "." suffix (dot included) treated as a file extension.
const maxExtensionTail = 5

// BuildURL returns an intent URL pre-filled with text and, when set, the
// screenshot link with its file extension removed.
func BuildURL(text, screenshotURL string) string {
	combined := text
	if screenshotURL != "" {
		combined += " " + TrimExtension(screenshotURL)
	}
	return BaseURL + escape(combined)
}

// TrimExtension drops a trailing extension of at most four characters, so
// "https://i.imgur.com/abc.png" becomes "https://i.imgur.com/abc". Only the
// last "." counts; a query string after the extension defeats the rule. A
// string with no "." is returned unchanged.
func TrimExtension(u string) string {
	idx := strings.LastIndex(u, ".")
	if idx < 0 {
		return u
	}
	if len(u)-idx <= maxExtensionTail {
		return u[:idx]
	}
	return u
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Opener hands a URL to the platform.
type Opener interface {
	OpenURL(url string) error
}

// BrowserOpener opens URLs in the default web browser.
type BrowserOpener struct{}

// OpenURL implements Opener.
func (BrowserOpener) OpenURL(u string) error {
	return browser.OpenURL(u)
}
