package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/blacktop/snapshare/internal/capture"
	"github.com/blacktop/snapshare/internal/pipeline"
	"github.com/blacktop/snapshare/internal/share"
	"github.com/blacktop/snapshare/internal/share/bluesky"
	"github.com/blacktop/snapshare/internal/share/mastodon"
	"github.com/blacktop/snapshare/internal/share/twitter"
	"github.com/spf13/cobra"
)

var (
	imageAlt    string
	targetsFlag []string
	dryRun      bool
)

var allTargets = []string{"bluesky", "mastodon", "twitter"}

const defaultAltText = "Screenshot shared via snapshare"

// posterConstructors is swapped out in tests.
var posterConstructors = map[string]func(context.Context) (share.Poster, error){
	"bluesky": func(ctx context.Context) (share.Poster, error) {
		return bluesky.New(ctx, bluesky.Config{PDSURL: bluesky.DefaultPDSURL})
	},
	"mastodon": func(ctx context.Context) (share.Poster, error) {
		return mastodon.New(ctx)
	},
	"twitter": func(ctx context.Context) (share.Poster, error) {
		return twitter.New(ctx)
	},
}

func newPostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post [message]",
		Short: "Post directly to X, Mastodon and Bluesky through their APIs",
		Long: "post publishes the message, with an optional screenshot, to each selected network " +
			"using the credentials from SNAPSHARE_TWITTER_*, SNAPSHARE_MASTODON_* and SNAPSHARE_BLUESKY_*.",
		RunE: runPost,
		Example: `  snapshare post -m "hello world" --screenshot
  snapshare post "Ship it!" --target twitter --target mastodon
  echo "Release shipped" | snapshare post --target all`,
	}

	addShareFlags(cmd)
	cmd.Flags().StringVar(&imageAlt, "alt-text", "", "Alternative text to describe the screenshot")
	cmd.Flags().StringSliceVar(&targetsFlag, "target", allTargets, "Targets to post to (twitter, mastodon, bluesky, or all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print actions without posting")
	cmd.Flags().SortFlags = false

	return cmd
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	message, err := resolveMessage(cmd, args, true)
	if err != nil {
		return err
	}

	targets, err := normalizeTargets(targetsFlag)
	if err != nil {
		return err
	}

	req := share.Request{
		Message:  message,
		ImageAlt: strings.TrimSpace(imageAlt),
	}

	var region capture.Region
	if screenshotFlag {
		if region, err = resolveRegion(); err != nil {
			return err
		}
		if req.ImageAlt == "" {
			req.ImageAlt = defaultAltText
		}
	}

	if dryRun {
		printDryRun(cmd.OutOrStdout(), targets, req, screenshotFlag, region)
		return nil
	}

	posters, err := buildPosters(ctx, targets)
	if err != nil {
		return err
	}

	if screenshotFlag {
		img, err := newPipeline(cfg).Capture(ctx, region)
		if err != nil {
			return fmt.Errorf("capture screenshot: %w", err)
		}
		req.Image = img
	}

	out := cmd.OutOrStdout()
	return pipeline.Broadcast(ctx, posters, req, func(name string, err error) {
		if err == nil {
			fmt.Fprintf(out, "posted to %s\n", name)
		}
	})
}

func printDryRun(out io.Writer, targets []string, req share.Request, screenshot bool, region capture.Region) {
	for _, target := range targets {
		fmt.Fprintf(out, "[dry-run] would post to %s: %q\n", target, req.Message)
	}
	if screenshot {
		fmt.Fprintf(out, "[dry-run] screenshot: region %s (alt: %q)\n", region, req.ImageAlt)
	}
}

func normalizeTargets(values []string) ([]string, error) {
	if len(values) == 0 {
		return sortedTargets(allTargets), nil
	}

	result := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, raw := range values {
		raw = strings.TrimSpace(strings.ToLower(raw))
		if raw == "" {
			continue
		}
		if raw == "all" {
			return sortedTargets(allTargets), nil
		}
		if _, ok := posterConstructors[raw]; !ok {
			return nil, fmt.Errorf("unsupported target %q", raw)
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		result = append(result, raw)
	}

	if len(result) == 0 {
		return nil, errors.New("no targets selected")
	}

	return sortedTargets(result), nil
}

func sortedTargets(targets []string) []string {
	out := append([]string(nil), targets...)
	sort.Strings(out)
	return out
}

func buildPosters(ctx context.Context, targets []string) ([]share.Poster, error) {
	posters := make([]share.Poster, 0, len(targets))
	var errs []error
	for _, target := range targets {
		constructor, ok := posterConstructors[target]
		if !ok {
			errs = append(errs, fmt.Errorf("target %q is not implemented", target))
			continue
		}
		poster, err := constructor(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target, err))
			continue
		}
		posters = append(posters, poster)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return posters, nil
}
