// Package vision provides the image-processing collaborators of the scale
// sweep: a correlation engine, a scaler, a codec and annotation helpers.
package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/mlenz/visual-match-go/domain/match"
)

const (
	// Windows with less grayscale variance than this cannot be normalized
	// and are left unscored.
	varianceFloor = 1e-6
	// Tolerance for the uniform-template exact-match path. Well above the
	// rounding noise of the integral tables, well below a single gray step.
	uniformTolerance = 0.5
)

// NCCEngine computes normalized cross-correlation over grayscale pixels.
// Summed-area tables give O(1) window mean and variance, leaving only the
// cross term to a per-window scan.
type NCCEngine struct {
	// Stride samples every Nth placement on both axes. 1 scans every
	// placement; larger values trade localization accuracy for speed on
	// big screenshots.
	Stride int
}

// NewNCCEngine returns an engine that scores every placement.
func NewNCCEngine() *NCCEngine { return &NCCEngine{Stride: 1} }

// Correlate returns the NCC score surface for tmpl over target, one cell
// per valid placement. Scores follow the normalized coefficient convention,
// nominally in [-1, 1]. A template that exceeds the target in either
// dimension yields match.ErrTemplateTooLarge.
func (e *NCCEngine) Correlate(target *image.RGBA, tmpl image.Image) (*match.Surface, error) {
	if target == nil || tmpl == nil {
		return nil, fmt.Errorf("ncc: nil image")
	}
	W, H := target.Bounds().Dx(), target.Bounds().Dy()
	tb := tmpl.Bounds()
	w, h := tb.Dx(), tb.Dy()
	if w == 0 || h == 0 || W == 0 || H == 0 {
		return nil, fmt.Errorf("ncc: empty image")
	}
	if W < w || H < h {
		return nil, fmt.Errorf("ncc: %dx%d template inside %dx%d target: %w",
			w, h, W, H, match.ErrTemplateTooLarge)
	}
	stride := e.Stride
	if stride <= 0 {
		stride = 1
	}

	plane := buildGrayPlane(target)
	ts := buildTemplateStats(tmpl)
	surf := match.NewSurface(W-w+1, H-h+1)
	n := float64(w * h)

	if ts.std <= uniformTolerance {
		// A flat template has no variance to normalize against. Score 1
		// wherever the window is that same flat value, leave the rest
		// unscored.
		scanUniform(surf, plane, ts, w, h, stride)
		return surf, nil
	}

	for y := 0; y+h <= H; y += stride {
		for x := 0; x+w <= W; x += stride {
			sumF := plane.windowSum(plane.integral, x, y, w, h)
			sumF2 := plane.windowSum(plane.integralSq, x, y, w, h)
			meanF := sumF / n
			varF := (sumF2 - sumF*sumF/n) / n
			if varF <= varianceFloor {
				continue
			}
			stdF := math.Sqrt(varF)
			var cross float64
			for ty := 0; ty < h; ty++ {
				frow := plane.gray[(y+ty)*plane.w+x : (y+ty)*plane.w+x+w]
				trow := ts.gray[ty*w : (ty+1)*w]
				for i, fv := range frow {
					cross += fv * trow[i]
				}
			}
			denom := n * stdF * ts.std
			if denom <= 0 {
				continue
			}
			surf.Set(x, y, (cross-n*meanF*ts.mean)/denom)
		}
	}
	return surf, nil
}

// scanUniform handles the degenerate flat-template case. Window equality is
// checked through the integral tables: a window whose mean is the reference
// value and whose variance is zero is pixel-for-pixel identical.
func scanUniform(surf *match.Surface, plane *grayPlane, ts *templateStats, w, h, stride int) {
	n := float64(w * h)
	ref := ts.mean
	for y := 0; y+h <= plane.h; y += stride {
		for x := 0; x+w <= plane.w; x += stride {
			sumF := plane.windowSum(plane.integral, x, y, w, h)
			sumF2 := plane.windowSum(plane.integralSq, x, y, w, h)
			meanF := sumF / n
			varF := (sumF2 - sumF*sumF/n) / n
			if varF <= uniformTolerance && math.Abs(meanF-ref) <= uniformTolerance {
				surf.Set(x, y, 1)
			}
		}
	}
}

// grayPlane holds per-pixel grayscale values of a target plus their
// summed-area tables.
type grayPlane struct {
	gray       []float64
	integral   []float64
	integralSq []float64
	w, h       int
}

// luma converts 16-bit RGBA channel values to a 0..255 grayscale value.
// Working on the 8-bit scale keeps the integral tables numerically tame.
func luma(r, g, b uint32) float64 {
	return 0.2126*float64(r>>8) + 0.7152*float64(g>>8) + 0.0722*float64(b>>8)
}

func buildGrayPlane(target *image.RGBA) *grayPlane {
	b := target.Bounds()
	w, h := b.Dx(), b.Dy()
	p := &grayPlane{
		gray:       make([]float64, w*h),
		integral:   make([]float64, w*h),
		integralSq: make([]float64, w*h),
		w:          w,
		h:          h,
	}
	for y := 0; y < h; y++ {
		var rowSum, rowSum2 float64
		for x := 0; x < w; x++ {
			r, g, bl, _ := target.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := luma(r, g, bl)
			off := y*w + x
			p.gray[off] = v
			rowSum += v
			rowSum2 += v * v
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[off-w] + rowSum
				p.integralSq[off] = p.integralSq[off-w] + rowSum2
			}
		}
	}
	return p
}

// windowSum is the inclusive sum of table over the w x h window with
// top-left corner (x, y).
func (p *grayPlane) windowSum(table []float64, x, y, w, h int) float64 {
	x1, y1 := x+w-1, y+h-1
	at := func(xx, yy int) float64 {
		if xx < 0 || yy < 0 {
			return 0
		}
		return table[yy*p.w+xx]
	}
	return at(x1, y1) - at(x-1, y1) - at(x1, y-1) + at(x-1, y-1)
}

// templateStats caches template grayscale pixels and summary statistics.
type templateStats struct {
	gray []float64
	mean float64
	std  float64
}

func buildTemplateStats(tmpl image.Image) *templateStats {
	b := tmpl.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([]float64, w*h)
	var sum, sum2 float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := tmpl.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := luma(r, g, bl)
			gray[y*w+x] = v
			sum += v
			sum2 += v * v
		}
	}
	n := float64(w * h)
	mean := sum / n
	variance := (sum2 - sum*sum/n) / n
	std := 0.0
	if variance > 0 {
		std = math.Sqrt(variance)
	}
	return &templateStats{gray: gray, mean: mean, std: std}
}
