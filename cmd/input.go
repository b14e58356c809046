package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blacktop/snapshare/internal/capture"
	"github.com/blacktop/snapshare/internal/logutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	messageFlag    string
	screenshotFlag bool
	regionFlag     string
)

func addShareFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Message text to share")
	cmd.Flags().BoolVarP(&screenshotFlag, "screenshot", "s", false, "Attach a screenshot of --region")
	addRegionFlag(cmd)
}

func addRegionFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&regionFlag, "region", "r", "", "Screen region as x,y,width,height (default: primary display)")
}

// resolveMessage picks the message from --message, the arguments, or piped
// stdin. An empty message is an error only when required is set.
func resolveMessage(cmd *cobra.Command, args []string, required bool) (string, error) {
	var message string

	if messageFlag != "" {
		message = messageFlag
	}

	if len(args) > 0 {
		if message != "" {
			return "", errors.New("provide the message either as an argument or with --message, not both")
		}
		message = strings.Join(args, " ")
	}

	if message != "" {
		return strings.TrimSpace(message), nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); !ok || !term.IsTerminal(int(file.Fd())) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		message = strings.TrimSpace(string(data))
	}

	if message == "" && required {
		return "", errors.New("message is required")
	}

	return message, nil
}

// primaryBounds is swapped out in tests.
var primaryBounds = capture.PrimaryBounds

// resolveRegion parses --region, falling back to the primary display.
func resolveRegion() (capture.Region, error) {
	if strings.TrimSpace(regionFlag) == "" {
		return primaryBounds()
	}
	return parseRegion(regionFlag)
}

// screenshotRegion resolves the region for a share flow and reports whether a
// screenshot should be taken. A malformed --region is a usage error; a display
// that cannot be found only drops the screenshot so the text is still shared.
func screenshotRegion() (capture.Region, bool, error) {
	if !screenshotFlag {
		return capture.Region{}, false, nil
	}
	if strings.TrimSpace(regionFlag) != "" {
		region, err := parseRegion(regionFlag)
		if err != nil {
			return capture.Region{}, false, err
		}
		return region, true, nil
	}

	region, err := primaryBounds()
	if err != nil {
		logutil.Errorf("resolve screenshot region: %v", err)
		return capture.Region{}, false, nil
	}
	return region, true, nil
}

func parseRegion(s string) (capture.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return capture.Region{}, fmt.Errorf("invalid region %q: want x,y,width,height", s)
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return capture.Region{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[2] < 0 || vals[3] < 0 {
		return capture.Region{}, fmt.Errorf("invalid region %q: width and height must not be negative", s)
	}

	return capture.Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
