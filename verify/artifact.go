package verify

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// timestampPattern names artifacts of checks that carry no description.
const timestampPattern = "2006-01-02 15.04.05"

var unsafeNameChars = regexp.MustCompile(`[^\w .()-]+`)

// ArtifactSink persists annotated match images. Save returns the path the
// artifact was written to.
type ArtifactSink interface {
	Save(img image.Image, description string) (string, error)
}

// Writer writes PNG artifacts into a directory, one file per check.
type Writer struct {
	Dir string
}

// Save writes img under a name derived from description. A short random id
// keeps repeated checks with the same description from clobbering each
// other.
func (w Writer) Save(img image.Image, description string) (string, error) {
	if description == "" {
		description = time.Now().Format(timestampPattern)
	}
	name := unsafeNameChars.ReplaceAllString(description, "_")
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact dir %s: %w", w.Dir, err)
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("%s-%s.png", name, uuid.NewString()[:8]))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode artifact %s: %w", path, err)
	}
	return path, nil
}
