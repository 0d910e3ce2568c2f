package match

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
)

// Default scale-sweep bounds. Matching is never attempted on a target
// narrower than the floor or wider than the ceiling.
const (
	DefaultMinWidth      = 320
	DefaultMaxWidth      = 2048
	DefaultDownscaleStep = 0.9
	DefaultUpscaleStep   = 1.1
)

// Options bound the scale sweep. The width limits and step factors are
// policy knobs; normalize clamps unusable values back to the defaults.
type Options struct {
	MinWidth      int
	MaxWidth      int
	DownscaleStep float64
	UpscaleStep   float64
}

// DefaultOptions returns the standard sweep bounds.
func DefaultOptions() Options {
	return Options{
		MinWidth:      DefaultMinWidth,
		MaxWidth:      DefaultMaxWidth,
		DownscaleStep: DefaultDownscaleStep,
		UpscaleStep:   DefaultUpscaleStep,
	}
}

func (o *Options) normalize() {
	if o.MinWidth <= 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.MaxWidth <= o.MinWidth {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.DownscaleStep <= 0 || o.DownscaleStep >= 1 {
		o.DownscaleStep = DefaultDownscaleStep
	}
	if o.UpscaleStep <= 1 {
		o.UpscaleStep = DefaultUpscaleStep
	}
}

// Matcher walks a target image through a two-phase scale sweep looking for
// the first placement of the template that reaches the threshold. The
// template itself is never resized; only the target changes size, so the
// sweep really varies the size ratio between the two.
type Matcher struct {
	engine Engine
	scaler Scaler
	opts   Options
	logger *slog.Logger
}

// New builds a Matcher around a correlation engine and a scaler. A nil
// logger discards all output.
func New(engine Engine, scaler Scaler, opts Options, logger *slog.Logger) *Matcher {
	opts.normalize()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Matcher{engine: engine, scaler: scaler, opts: opts, logger: logger}
}

// best is the highest-scoring observation so far within one Match call,
// together with the scale and image it was recorded at. It only ever moves
// upward.
type best struct {
	score float64
	loc   image.Point
	scale float64
	img   *image.RGBA
}

// Match searches for tmpl inside target at some unknown scale.
//
// Phase 1 correlates the target at its original size, then repeatedly
// shrinks it by DownscaleStep while its width stays above MinWidth,
// stopping as soon as the running best reaches the threshold. Phase 2
// resets to the original target and grows it by UpscaleStep while its width
// stays below MaxWidth; there the stopping check is against the current
// round's own score, not the running best. That asymmetry is kept from the
// original behavior on purpose: a best recorded before the reset never
// triggers the upscale-phase stop on its own.
//
// The first acceptable match wins; this is not a search for the globally
// best scale. Engine and scaler failures abort the call, except the
// template-too-large case, which marks a single scale as non-matchable.
func (m *Matcher) Match(target *image.RGBA, tmpl image.Image, threshold float64) (Result, error) {
	if target == nil || tmpl == nil {
		return Result{}, errors.New("match: nil target or template")
	}
	tb := tmpl.Bounds()
	if target.Bounds().Empty() || tb.Empty() {
		return Result{}, errors.New("match: empty target or template")
	}

	bm := best{score: math.Inf(-1), scale: 1}
	rounds := 0

	// Phase 1: walk the target down from its original size.
	img := target
	scale := 1.0
	for img.Bounds().Dx() > m.opts.MinWidth {
		score, loc, err := m.round(img, tmpl)
		rounds++
		if err != nil {
			if errors.Is(err, ErrTemplateTooLarge) {
				// Shrinking the target cannot make the template fit;
				// the upscale phase may still succeed.
				break
			}
			return Result{}, err
		}
		if score > bm.score {
			bm = best{score: score, loc: loc, scale: scale, img: img}
		}
		if bm.score >= threshold {
			break
		}
		next, err := m.scaler.Scale(img, m.opts.DownscaleStep)
		if err != nil {
			return Result{}, fmt.Errorf("downscale at %.4f: %w", scale, err)
		}
		img = next
		scale *= m.opts.DownscaleStep
	}

	// Phase 2: restart from the unscaled original and walk upward.
	if bm.score < threshold {
		img = target
		scale = 1.0
		for bm.score < threshold && img.Bounds().Dx() < m.opts.MaxWidth {
			score, loc, err := m.round(img, tmpl)
			rounds++
			fits := true
			if err != nil {
				if !errors.Is(err, ErrTemplateTooLarge) {
					return Result{}, err
				}
				fits = false
			}
			if fits {
				if score > bm.score {
					bm = best{score: score, loc: loc, scale: scale, img: img}
				}
				if score >= threshold {
					break
				}
			}
			next, err := m.scaler.Scale(img, m.opts.UpscaleStep)
			if err != nil {
				return Result{}, fmt.Errorf("upscale at %.4f: %w", scale, err)
			}
			img = next
			scale *= m.opts.UpscaleStep
		}
	}

	if bm.score >= threshold {
		tw, th := tb.Dx(), tb.Dy()
		center := image.Pt(bm.loc.X+tw/2, bm.loc.Y+th/2)
		m.logger.Debug("template found",
			"score", bm.score, "scale", bm.scale, "x", center.X, "y", center.Y, "rounds", rounds)
		return Result{
			Found:  true,
			Center: center,
			Score:  bm.score,
			Scale:  bm.scale,
			Rounds: rounds,
			Image:  bm.img,
			Region: image.Rect(bm.loc.X, bm.loc.Y, bm.loc.X+tw, bm.loc.Y+th),
		}, nil
	}
	score := bm.score
	if math.IsInf(score, -1) {
		// No scale produced a scorable placement.
		score = -1
	}
	m.logger.Debug("template not found", "bestScore", score, "rounds", rounds)
	return Result{Found: false, Score: score, Rounds: rounds}, nil
}

// round correlates one scaled target against the template and reduces the
// surface to its best placement.
func (m *Matcher) round(img *image.RGBA, tmpl image.Image) (float64, image.Point, error) {
	surf, err := m.engine.Correlate(img, tmpl)
	if err != nil {
		return 0, image.Point{}, err
	}
	score, loc := surf.Best()
	return score, loc, nil
}
