package atlaskit

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Image returns a copy of the canvas as an *image.RGBA. A released canvas is
// composed into the copy from the entries; the atlas itself is not touched.
func (a *TextureAtlas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, a.width, a.height))
	if a.pixels != nil {
		copy(img.Pix, a.pixels)
	} else {
		a.compose(img.Pix)
	}
	return img
}

// EncodePNG writes the canvas to w as a PNG.
func (a *TextureAtlas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, a.Image()); err != nil {
		return fmt.Errorf("atlaskit: encode %q: %w", a.name, err)
	}
	return nil
}

// WritePNG dumps the canvas to dir/<label>.png, creating dir when missing.
// The label is sanitized for use as a file name; an empty label falls back to
// the atlas name. Returns the written path.
func (a *TextureAtlas) WritePNG(dir, label string) (string, error) {
	if label == "" {
		label = a.name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("atlaskit: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, sanitizeLabel(label)+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("atlaskit: create %s: %w", path, err)
	}
	if err := a.EncodePNG(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
