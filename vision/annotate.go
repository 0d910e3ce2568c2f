package vision

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// strokeWidth and strokeColor match the diagnostic rectangles the tool has
// always produced.
const strokeWidth = 10

var strokeColor = color.RGBA{B: 255, A: 255}

// Annotate returns a copy of img with r outlined, for persisting as a
// diagnostic artifact. The input image is left untouched; the stroke is
// clipped to the image bounds.
func Annotate(img *image.RGBA, r image.Rectangle) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(out, image.Point{}, img, b, xdraw.Src, nil)

	bands := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+strokeWidth), // top
		image.Rect(r.Min.X, r.Max.Y-strokeWidth, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+strokeWidth, r.Max.Y), // left
		image.Rect(r.Max.X-strokeWidth, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	src := image.NewUniform(strokeColor)
	for _, band := range bands {
		draw.Draw(out, band.Intersect(out.Bounds()), src, image.Point{}, draw.Src)
	}
	return out
}
