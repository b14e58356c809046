package capture

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/kbinani/screenshot"
)

// DefaultRefreshRate is the display refresh rate assumed by ScreenSource.
const DefaultRefreshRate = 60

// ScreenSource reads pixels from the desktop using kbinani/screenshot.
type ScreenSource struct {
	// RefreshRate in Hz; frames are presented on ticks of 1/RefreshRate.
	RefreshRate int

	epoch time.Time
}

// NewScreenSource returns a ScreenSource at DefaultRefreshRate.
func NewScreenSource() *ScreenSource {
	return &ScreenSource{RefreshRate: DefaultRefreshRate, epoch: time.Now()}
}

// WaitFrame sleeps until the next refresh tick so the read never lands mid-frame.
func (s *ScreenSource) WaitFrame(ctx context.Context) error {
	rate := s.RefreshRate
	if rate <= 0 {
		rate = DefaultRefreshRate
	}
	interval := time.Second / time.Duration(rate)
	wait := interval - time.Since(s.epoch)%interval

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ReadPixels captures r from the screen.
func (s *ScreenSource) ReadPixels(r image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(r)
}

// PrimaryBounds returns the region covering the primary display.
func PrimaryBounds() (Region, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return Region{}, errors.New("no active displays found")
	}
	b := screenshot.GetDisplayBounds(0)
	return Region{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, nil
}
