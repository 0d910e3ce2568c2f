//go:build opencv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/mlenz/visual-match-go/domain/match"
)

// OpenCVEngine delegates correlation to OpenCV's TM_CCOEFF_NORMED template
// matcher. Build with -tags opencv against an OpenCV installation; scores
// are interchangeable with NCCEngine's.
type OpenCVEngine struct{}

// Correlate runs gocv.MatchTemplate and copies the 32-bit result matrix
// into a score surface.
func (OpenCVEngine) Correlate(target *image.RGBA, tmpl image.Image) (*match.Surface, error) {
	if target == nil || tmpl == nil {
		return nil, fmt.Errorf("opencv: nil image")
	}
	W, H := target.Bounds().Dx(), target.Bounds().Dy()
	tb := tmpl.Bounds()
	w, h := tb.Dx(), tb.Dy()
	if w == 0 || h == 0 || W == 0 || H == 0 {
		return nil, fmt.Errorf("opencv: empty image")
	}
	if W < w || H < h {
		return nil, fmt.Errorf("opencv: %dx%d template inside %dx%d target: %w",
			w, h, W, H, match.ErrTemplateTooLarge)
	}

	src, err := gocv.ImageToMatRGBA(target)
	if err != nil {
		return nil, fmt.Errorf("opencv: convert target: %w", err)
	}
	defer src.Close()
	tm, err := gocv.ImageToMatRGBA(toRGBA(tmpl))
	if err != nil {
		return nil, fmt.Errorf("opencv: convert template: %w", err)
	}
	defer tm.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(src, tm, &result, gocv.TmCcoeffNormed, mask)

	surf := match.NewSurface(result.Cols(), result.Rows())
	for y := 0; y < result.Rows(); y++ {
		for x := 0; x < result.Cols(); x++ {
			surf.Set(x, y, float64(result.GetFloatAt(y, x)))
		}
	}
	return surf, nil
}
