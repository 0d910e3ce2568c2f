package vision

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/mlenz/visual-match-go/domain/match"
)

// fill creates a w x h RGBA image of a single color.
func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// setRect paints a rectangular region of img with a color.
func setRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// patterned creates a w x h grayscale image with enough variance that every
// window is distinct.
func patterned(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*13) % 251)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// crop copies a subregion into a fresh origin-anchored RGBA image.
func crop(img *image.RGBA, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

func TestNCCEngine_ExactSubregionScoresOne(t *testing.T) {
	target := patterned(40, 40)
	tmpl := crop(target, image.Rect(10, 8, 22, 20))

	surf, err := NewNCCEngine().Correlate(target, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, loc := surf.Best()
	if loc != image.Pt(10, 8) {
		t.Fatalf("best placement = %v, want (10,8)", loc)
	}
	if score < 0.999 {
		t.Fatalf("identical subregion should score ~1, got %v", score)
	}
}

func TestNCCEngine_UniformTemplateExactMatchPath(t *testing.T) {
	// A flat template has zero variance, which breaks the NCC
	// normalization; the engine must fall back to exact matching.
	red := color.RGBA{R: 255, A: 255}
	target := fill(300, 300, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	setRect(target, image.Rect(120, 130, 160, 170), red)
	tmpl := fill(40, 40, red)

	surf, err := NewNCCEngine().Correlate(target, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, loc := surf.Best()
	if score != 1 || loc != image.Pt(120, 130) {
		t.Fatalf("best = %v at %v, want 1 at (120,130)", score, loc)
	}
	if !math.IsInf(surf.At(0, 0), -1) {
		t.Fatalf("background placements must stay unscored, got %v", surf.At(0, 0))
	}
}

func TestNCCEngine_SurfaceDimensions(t *testing.T) {
	surf, err := NewNCCEngine().Correlate(patterned(50, 30), patterned(20, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if surf.W != 31 || surf.H != 21 {
		t.Fatalf("surface %dx%d, want 31x21", surf.W, surf.H)
	}
}

func TestNCCEngine_TemplateTooLarge(t *testing.T) {
	_, err := NewNCCEngine().Correlate(patterned(30, 30), patterned(40, 10))
	if !errors.Is(err, match.ErrTemplateTooLarge) {
		t.Fatalf("expected ErrTemplateTooLarge, got %v", err)
	}
}

func TestNCCEngine_MismatchScoresBelowPerfect(t *testing.T) {
	target := patterned(40, 40)
	// Invert the template so no placement correlates positively.
	tmpl := image.NewRGBA(image.Rect(0, 0, 12, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			v := uint8(255 - (x*7+y*13)%251)
			tmpl.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	surf, err := NewNCCEngine().Correlate(target, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score, _ := surf.Best(); score > 0.5 {
		t.Fatalf("inverted template should correlate poorly, got %v", score)
	}
}
