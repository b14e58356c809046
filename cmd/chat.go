package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var webhookFlag string

func newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chat [message]",
		Aliases: []string{"discord"},
		Short:   "Post a message and optional screenshot to a chat webhook",
		RunE:    runChat,
	}
	addShareFlags(cmd)
	cmd.Flags().StringVar(&webhookFlag, "webhook", "", "Webhook URL (overrides config)")
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	message, err := resolveMessage(cmd, args, !screenshotFlag)
	if err != nil {
		return err
	}
	if webhookFlag != "" {
		cfg.WebhookURL = webhookFlag
	}

	region, screenshot, err := screenshotRegion()
	if err != nil {
		return err
	}
	if screenshotFlag && !screenshot {
		fmt.Fprintln(cmd.ErrOrStderr(), "screenshot was not captured; posting text only")
	}

	res := newPipeline(cfg).ShareToChat(cmd.Context(), message, screenshot, region)
	if !res.OK {
		return errors.New("chat post failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "posted to chat")
	return nil
}
