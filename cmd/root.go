/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"github.com/blacktop/snapshare/internal/config"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/blacktop/snapshare/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	verbose    bool
	logJSON    bool
	formatFlag string

	// cfg is loaded once per invocation by the root command's pre-run.
	cfg *config.Config
)

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshare",
		Short: "Capture the screen and share it",
		Long: "snapshare captures a region of the screen, uploads it to Imgur and shares it " +
			"to a tweet composer, a chat webhook, or straight to X, Mastodon and Bluesky.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
		Example: `  snapshare twitter -m "new high score" --screenshot
  snapshare chat "gg" --screenshot --region 0,0,800,600
  snapshare post -m "release shipped" --target mastodon --target bluesky`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to config file (default .snapshare.yaml or ~/.config/snapshare/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "V", false, "Enable debug logging")
	flags.BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")
	flags.StringVar(&formatFlag, "format", "", "Screenshot encoding: jpg or png (overrides config)")

	cmd.AddCommand(
		newTwitterCommand(),
		newChatCommand(),
		newPostCommand(),
		newUploadCommand(),
		newCaptureCommand(),
		newCompletionCommand(),
	)

	return cmd
}

func loadConfig(cmd *cobra.Command, args []string) error {
	logutil.SetVerbose(verbose)
	logutil.SetJSON(logJSON)

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if formatFlag != "" {
		if err := loaded.SetFormat(formatFlag); err != nil {
			return err
		}
	}
	if loaded.ConfigFile != "" {
		logutil.Debugf("loaded config file %s", loaded.ConfigFile)
	}

	cfg = loaded
	return nil
}

// newPipeline builds the share pipeline for a command run.
var newPipeline = func(c *config.Config, opts ...pipeline.Option) *pipeline.Pipeline {
	return pipeline.New(c, opts...)
}

