package cmd

import (
	"fmt"

	"github.com/blacktop/snapshare/internal/pipeline"
	"github.com/spf13/cobra"
)

var noOpen bool

// printOpener prints intent URLs instead of launching a browser.
type printOpener struct {
	cmd *cobra.Command
}

func (o printOpener) OpenURL(u string) error {
	_, err := fmt.Fprintln(o.cmd.OutOrStdout(), u)
	return err
}

func newTwitterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "twitter [message]",
		Aliases: []string{"tweet", "x"},
		Short:   "Open a pre-filled tweet with an optional screenshot link",
		Long: "Uploads the screenshot to Imgur (when --screenshot is set and an Imgur client id is configured) " +
			"and opens the tweet composer with the message and the image link.",
		RunE: runTwitter,
	}
	addShareFlags(cmd)
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Print the intent URL instead of opening a browser")
	return cmd
}

func runTwitter(cmd *cobra.Command, args []string) error {
	message, err := resolveMessage(cmd, args, !screenshotFlag)
	if err != nil {
		return err
	}

	region, screenshot, err := screenshotRegion()
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if noOpen {
		opts = append(opts, pipeline.WithOpener(printOpener{cmd: cmd}))
	}

	res := newPipeline(cfg, opts...).ShareToTwitter(cmd.Context(), message, screenshot, region)
	if screenshotFlag && res.ScreenshotURL == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "screenshot was not uploaded; sharing text only")
	}
	if !res.Opened {
		return fmt.Errorf("could not open %s", res.URL)
	}
	return nil
}
