// Package capture grabs live screen content for verification against a
// template, as an alternative to loading a saved screenshot.
package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// Grab captures the active screen.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("screen capture: %w", err)
	}
	return img, nil
}

// GrabRect captures the given portion of the screen.
func GrabRect(r image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("screen capture of %v: %w", r, err)
	}
	return img, nil
}
