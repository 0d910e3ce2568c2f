// Package verify ties the feature gate, image loading, the scale-sweep
// matcher and artifact persistence into a single verification service.
package verify

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/corona10/goimagehash"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mlenz/visual-match-go/capture"
	"github.com/mlenz/visual-match-go/config"
	"github.com/mlenz/visual-match-go/domain/match"
	"github.com/mlenz/visual-match-go/vision"
)

// ErrMatchingDisabled is returned when visual matching is switched off in
// the configuration. No image I/O happens in that case.
var ErrMatchingDisabled = errors.New("visual matching is disabled; set enabled=true in the config file")

// Loader resolves a path into an RGBA bitmap.
type Loader func(path string) (*image.RGBA, error)

// Verifier answers whether a template image appears inside a target image
// and persists an annotated artifact of each successful match.
type Verifier struct {
	cfg     *config.Config
	matcher *match.Matcher
	load    Loader
	sink    ArtifactSink
	logger  *slog.Logger
	cache   *lru.Cache[cacheKey, match.Result]
}

// cacheKey identifies a verification by perception hashes of both images
// plus the threshold.
type cacheKey struct {
	target    uint64
	template  uint64
	threshold float64
}

// New builds a Verifier with the pure-Go correlation engine, the bilinear
// scaler and a PNG artifact writer, all parameterized from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Verifier {
	_ = cfg.Validate()
	engine := vision.NewNCCEngine()
	engine.Stride = cfg.Stride
	m := match.New(engine, vision.ResizeScaler{}, match.Options{
		MinWidth:      cfg.MinWidth,
		MaxWidth:      cfg.MaxWidth,
		DownscaleStep: cfg.DownscaleStep,
		UpscaleStep:   cfg.UpscaleStep,
	}, logger)
	return newVerifier(cfg, logger, m, vision.Load, Writer{Dir: cfg.ArtifactDir})
}

func newVerifier(cfg *config.Config, logger *slog.Logger, m *match.Matcher, load Loader, sink ArtifactSink) *Verifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v := &Verifier{cfg: cfg, matcher: m, load: load, sink: sink, logger: logger}
	if cfg.CacheSize > 0 {
		if c, err := lru.New[cacheKey, match.Result](cfg.CacheSize); err == nil {
			v.cache = c
		}
	}
	return v
}

// Verify checks whether the template image appears anywhere within the
// target image. On success an annotated copy of the target at the winning
// scale is written to the artifact sink; a failed write is logged and does
// not affect the result.
func (v *Verifier) Verify(targetPath, templatePath string, threshold float64, description string) (match.Result, error) {
	if !v.cfg.Enabled {
		return match.Result{}, ErrMatchingDisabled
	}
	target, err := v.load(targetPath)
	if err != nil {
		return match.Result{}, err
	}
	tmpl, err := v.load(templatePath)
	if err != nil {
		return match.Result{}, err
	}
	return v.verify(target, tmpl, threshold, description)
}

// VerifyScreen runs the same check against a live capture of the screen
// instead of a stored target image.
func (v *Verifier) VerifyScreen(templatePath string, threshold float64, description string) (match.Result, error) {
	if !v.cfg.Enabled {
		return match.Result{}, ErrMatchingDisabled
	}
	tmpl, err := v.load(templatePath)
	if err != nil {
		return match.Result{}, err
	}
	target, err := capture.Grab()
	if err != nil {
		return match.Result{}, fmt.Errorf("capture target: %w", err)
	}
	return v.verify(target, tmpl, threshold, description)
}

func (v *Verifier) verify(target, tmpl *image.RGBA, threshold float64, description string) (match.Result, error) {
	key, keyed := v.key(target, tmpl, threshold)
	if keyed {
		if res, ok := v.cache.Get(key); ok {
			v.logger.Debug("verification served from cache", "description", description)
			return res, nil
		}
	}

	res, err := v.matcher.Match(target, tmpl, threshold)
	if err != nil {
		return match.Result{}, err
	}
	if keyed {
		v.cache.Add(key, res)
	}

	if res.Found {
		v.logger.Info("template found",
			"description", description, "score", res.Score, "scale", res.Scale,
			"x", res.Center.X, "y", res.Center.Y)
		annotated := vision.Annotate(res.Image, res.Region)
		if path, err := v.sink.Save(annotated, description); err != nil {
			v.logger.Warn("failed to write match artifact", "description", description, "error", err)
		} else {
			v.logger.Info("match artifact written", "path", path)
		}
	} else {
		v.logger.Info("template not found", "description", description, "bestScore", res.Score)
	}
	return res, nil
}

// key hashes both images into a cache key. Hashing failures just disable
// memoization for this call.
func (v *Verifier) key(target, tmpl image.Image, threshold float64) (cacheKey, bool) {
	if v.cache == nil {
		return cacheKey{}, false
	}
	th, err := goimagehash.PerceptionHash(target)
	if err != nil {
		return cacheKey{}, false
	}
	ph, err := goimagehash.PerceptionHash(tmpl)
	if err != nil {
		return cacheKey{}, false
	}
	return cacheKey{target: th.GetHash(), template: ph.GetHash(), threshold: threshold}, true
}
