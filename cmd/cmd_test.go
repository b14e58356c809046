package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/blacktop/snapshare/internal/capture"
	"github.com/blacktop/snapshare/internal/config"
	"github.com/blacktop/snapshare/internal/share"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, k := range []string{config.EnvImgurClientID, config.EnvWebhookURL, config.EnvDisplayName, config.EnvAvatarURL, config.EnvFormat} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	root.SetIn(stdin)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    capture.Region
		wantErr bool
	}{
		{in: "0,0,800,600", want: capture.Region{Width: 800, Height: 600}},
		{in: " 10, 20 ,30,40", want: capture.Region{X: 10, Y: 20, Width: 30, Height: 40}},
		{in: "-5,-5,1,1", want: capture.Region{X: -5, Y: -5, Width: 1, Height: 1}},
		{in: "1,2,3", wantErr: true},
		{in: "a,b,c,d", wantErr: true},
		{in: "0,0,-1,5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseRegion(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRegion(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRegion(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRegion(%q): got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTargets(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{name: "empty means all", in: nil, want: []string{"bluesky", "mastodon", "twitter"}},
		{name: "all keyword", in: []string{"twitter", "ALL"}, want: []string{"bluesky", "mastodon", "twitter"}},
		{name: "dedupe and sort", in: []string{"twitter", " Mastodon ", "twitter"}, want: []string{"mastodon", "twitter"}},
		{name: "unsupported", in: []string{"myspace"}, wantErr: true},
		{name: "blank only", in: []string{" ", ""}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeTargets(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeTargets: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveMessageFromStdin(t *testing.T) {
	isolateConfig(t)
	out, err := run(t, strings.NewReader("  piped text \n"), "twitter", "--no-open")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "text=piped%20text") {
		t.Errorf("output: got %q", out)
	}
}

func TestResolveMessageConflict(t *testing.T) {
	isolateConfig(t)
	if _, err := run(t, nil, "twitter", "--no-open", "-m", "flag", "arg"); err == nil {
		t.Fatal("expected error when message is given twice")
	}
	if _, err := run(t, nil, "twitter", "--no-open"); err == nil {
		t.Fatal("expected error for missing message")
	}
}

func TestTwitterCommandPrintsIntent(t *testing.T) {
	isolateConfig(t)
	out, err := run(t, nil, "twitter", "--no-open", "hello", "world")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "https://twitter.com/intent/tweet?text=hello%20world" {
		t.Errorf("output: got %q", out)
	}
}

func TestChatCommand(t *testing.T) {
	isolateConfig(t)
	var username, content string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		username = r.FormValue("username")
		content = r.FormValue("content")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	t.Setenv(config.EnvWebhookURL, srv.URL)
	t.Setenv(config.EnvDisplayName, "Snap Bot")

	out, err := run(t, nil, "chat", "-m", "gg")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "posted to chat") {
		t.Errorf("output: got %q", out)
	}
	if username != "Snap Bot" || content != "gg" {
		t.Errorf("form: username=%q content=%q", username, content)
	}
}

func TestChatCommandWithoutWebhook(t *testing.T) {
	isolateConfig(t)
	if _, err := run(t, nil, "chat", "-m", "gg"); err == nil {
		t.Fatal("expected error without webhook")
	}
}

func TestInvalidFormatFlag(t *testing.T) {
	isolateConfig(t)
	if _, err := run(t, nil, "--format", "gif", "twitter", "--no-open", "x"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

type stubPoster struct {
	name string
	err  error
	got  *share.Request
}

func (s *stubPoster) Name() string { return s.name }

func (s *stubPoster) Post(ctx context.Context, req share.Request) error {
	s.got = &req
	return s.err
}

func TestPostCommand(t *testing.T) {
	isolateConfig(t)
	mastodon := &stubPoster{name: "mastodon"}
	twitter := &stubPoster{name: "twitter", err: errors.New("unauthorized")}

	orig := posterConstructors
	t.Cleanup(func() { posterConstructors = orig })
	posterConstructors = map[string]func(context.Context) (share.Poster, error){
		"bluesky":  func(context.Context) (share.Poster, error) { return nil, errors.New("not configured") },
		"mastodon": func(context.Context) (share.Poster, error) { return mastodon, nil },
		"twitter":  func(context.Context) (share.Poster, error) { return twitter, nil },
	}

	out, err := run(t, nil, "post", "-m", "release", "--target", "mastodon,twitter")
	if err == nil || !strings.Contains(err.Error(), "twitter: unauthorized") {
		t.Fatalf("err: got %v", err)
	}
	if !strings.Contains(out, "posted to mastodon") {
		t.Errorf("output: got %q", out)
	}
	if mastodon.got == nil || mastodon.got.Message != "release" || mastodon.got.Image != nil {
		t.Errorf("mastodon request: got %+v", mastodon.got)
	}

	if _, err := run(t, nil, "post", "-m", "release", "--target", "bluesky"); err == nil {
		t.Fatal("expected constructor error")
	}
}

func TestPostDryRun(t *testing.T) {
	isolateConfig(t)
	out, err := run(t, nil, "post", "--dry-run", "-m", "hi", "--target", "twitter", "--screenshot", "--region", "0,0,10,10")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, `[dry-run] would post to twitter: "hi"`) {
		t.Errorf("output: got %q", out)
	}
	if !strings.Contains(out, "region 0,0,10,10") {
		t.Errorf("output: got %q", out)
	}
}

func withoutDisplay(t *testing.T) {
	t.Helper()
	orig := primaryBounds
	t.Cleanup(func() { primaryBounds = orig })
	primaryBounds = func() (capture.Region, error) {
		return capture.Region{}, errors.New("no active displays found")
	}
}

func TestTwitterCommandWithoutDisplaySharesText(t *testing.T) {
	isolateConfig(t)
	withoutDisplay(t)

	out, err := run(t, nil, "twitter", "--no-open", "--screenshot", "-m", "hi")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "https://twitter.com/intent/tweet?text=hi\n") {
		t.Errorf("intent URL missing from output: %q", out)
	}
	if !strings.Contains(out, "sharing text only") {
		t.Errorf("output: got %q", out)
	}
}

func TestChatCommandWithoutDisplayPostsText(t *testing.T) {
	isolateConfig(t)
	withoutDisplay(t)

	var content string
	var files int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		content = r.FormValue("content")
		files = len(r.MultipartForm.File)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	t.Setenv(config.EnvWebhookURL, srv.URL)

	out, err := run(t, nil, "chat", "--screenshot", "-m", "gg")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if content != "gg" || files != 0 {
		t.Errorf("form: content=%q files=%d", content, files)
	}
	if !strings.Contains(out, "posting text only") {
		t.Errorf("output: got %q", out)
	}
}

func TestShareCommandMalformedRegion(t *testing.T) {
	isolateConfig(t)
	if _, err := run(t, nil, "twitter", "--no-open", "--screenshot", "--region", "1,2,3", "-m", "hi"); err == nil {
		t.Fatal("expected error for malformed region")
	}
}
