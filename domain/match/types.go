package match

import (
	"errors"
	"image"
	"math"
)

// ErrTemplateTooLarge reports that the template does not fit inside the
// target at the attempted scale. The sweep treats such a scale as
// non-matchable and moves on instead of failing the whole call.
var ErrTemplateTooLarge = errors.New("template larger than target")

// Surface is the correlation score grid produced by an Engine: one cell per
// valid top-left placement of the template inside the target, laid out in
// row-major order. Cells never written keep the initial minimum score.
type Surface struct {
	Scores []float64
	W, H   int
}

// NewSurface allocates a w x h surface with every cell below any attainable
// correlation score.
func NewSurface(w, h int) *Surface {
	s := &Surface{Scores: make([]float64, w*h), W: w, H: h}
	for i := range s.Scores {
		s.Scores[i] = math.Inf(-1)
	}
	return s
}

// Set records the score for the placement with top-left corner (x, y).
func (s *Surface) Set(x, y int, score float64) {
	s.Scores[y*s.W+x] = score
}

// At returns the score for the placement with top-left corner (x, y).
func (s *Surface) At(x, y int) float64 {
	return s.Scores[y*s.W+x]
}

// Best returns the highest score on the surface and the placement where it
// occurs. Ties resolve to the first placement in row-major order.
func (s *Surface) Best() (float64, image.Point) {
	best := math.Inf(-1)
	var loc image.Point
	for y := 0; y < s.H; y++ {
		row := s.Scores[y*s.W : (y+1)*s.W]
		for x, v := range row {
			if v > best {
				best = v
				loc = image.Pt(x, y)
			}
		}
	}
	return best, loc
}

// Engine computes a single-scale correlation surface for a template over a
// target. Implementations must be deterministic for identical inputs and
// return ErrTemplateTooLarge (possibly wrapped) when the template exceeds
// the target in either dimension.
type Engine interface {
	Correlate(target *image.RGBA, tmpl image.Image) (*Surface, error)
}

// Scaler resizes an image by a uniform factor in both dimensions.
type Scaler interface {
	Scale(img *image.RGBA, factor float64) (*image.RGBA, error)
}

// Result is the outcome of one Match call.
type Result struct {
	Found bool
	// Center is the pixel at which the matched template instance is
	// centered, in coordinates of the target at the winning scale.
	Center image.Point
	Score  float64
	// Scale is the target scale factor at which the winning score was
	// recorded (1.0 means the original size).
	Scale float64
	// Rounds counts engine invocations across both phases.
	Rounds int
	// Image is the target at the winning scale and Region the matched
	// template placement within it, kept so callers can produce an
	// annotated diagnostic copy. Both are zero when Found is false.
	Image  *image.RGBA
	Region image.Rectangle
}
