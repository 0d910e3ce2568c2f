package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// ResizeScaler resizes images by a uniform factor with bilinear filtering.
type ResizeScaler struct{}

// Scale returns img resized to round(width*factor) x round(height*factor).
func (ResizeScaler) Scale(img *image.RGBA, factor float64) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("scale: nil image")
	}
	if factor <= 0 {
		return nil, fmt.Errorf("scale: factor %v out of range", factor)
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("scale: %dx%d collapses at factor %v", b.Dx(), b.Dy(), factor)
	}
	return toRGBA(imaging.Resize(img, w, h, imaging.Linear)), nil
}

// toRGBA normalizes a decoded or resized image into an *image.RGBA anchored
// at the origin.
func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst
}
