package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var outputPath string

func newCaptureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a screen region to a file",
		Args:  cobra.NoArgs,
		RunE:  runCapture,
	}
	addRegionFlag(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default attachment.jpg or attachment.png)")
	return cmd
}

func runCapture(cmd *cobra.Command, args []string) error {
	region, err := resolveRegion()
	if err != nil {
		return err
	}

	img, err := newPipeline(cfg).Capture(cmd.Context(), region)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}

	path := outputPath
	if path == "" {
		path = img.Filename
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", path, len(img.Data))
	return nil
}

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Capture a screen region and upload it to Imgur",
		Args:  cobra.NoArgs,
		RunE:  runUpload,
	}
	addRegionFlag(cmd)
	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	region, err := resolveRegion()
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	img, err := p.Capture(cmd.Context(), region)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}

	res := p.Upload(cmd.Context(), img)
	if !res.OK {
		return errors.New("upload failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.URL)
	return nil
}
