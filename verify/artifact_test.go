package verify

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 40, G: 80, B: 120, A: 255}), image.Point{}, draw.Src)
	return img
}

func TestWriter_SaveUsesDescription(t *testing.T) {
	dir := t.TempDir()
	path, err := Writer{Dir: dir}.Save(testImage(), "login button")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("artifact written to %s, want dir %s", path, dir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "login button-") || !strings.HasSuffix(base, ".png") {
		t.Fatalf("unexpected artifact name %q", base)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestWriter_SaveDefaultsToTimestamp(t *testing.T) {
	path, err := Writer{Dir: t.TempDir()}.Save(testImage(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestWriter_SaveSanitizesName(t *testing.T) {
	path, err := Writer{Dir: t.TempDir()}.Save(testImage(), "check: home/screen?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := filepath.Base(path)
	if strings.ContainsAny(base, ":/?") {
		t.Fatalf("name not sanitized: %q", base)
	}
}

func TestWriter_RepeatedSavesDoNotClobber(t *testing.T) {
	w := Writer{Dir: t.TempDir()}
	p1, err := w.Save(testImage(), "same check")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := w.Save(testImage(), "same check")
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Fatalf("repeated saves must get distinct paths, both %s", p1)
	}
}
