// Package software is a CPU rendering backend. Its "GPU resource" is a
// private *image.RGBA copy of the atlas canvas, and batches are drawn with
// golang.org/x/image/draw.
//
// It needs no graphics context, which makes it the reference backend for
// headless rendering and tests.
package software

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/phanxgames/atlaskit"
	"golang.org/x/image/draw"
)

// Name is the backend identifier.
const Name = "software"

var errNoCanvas = errors.New("software: atlas canvas not materialized")

// uploader copies the canvas into a standalone image.
type uploader struct{}

func (uploader) Create(a *atlaskit.TextureAtlas) (*image.RGBA, error) {
	pix, ok := a.Pixels()
	if !ok {
		return nil, errNoCanvas
	}
	img := image.NewRGBA(image.Rect(0, 0, a.Width(), a.Height()))
	copy(img.Pix, pix)
	return img, nil
}

// Destroy has nothing to release; the image is garbage collected.
func (uploader) Destroy(*image.RGBA) {}

// Options configures a software Backend.
type Options struct {
	// Interpolator scales sprites. Default draw.NearestNeighbor.
	Interpolator draw.Interpolator
}

// Backend implements atlaskit.Backend on the CPU.
type Backend struct {
	cache  *atlaskit.UploadCache[*image.RGBA]
	interp draw.Interpolator
}

// New creates a software backend.
func New(opts Options) *Backend {
	interp := opts.Interpolator
	if interp == nil {
		interp = draw.NearestNeighbor
	}
	return &Backend{
		cache:  atlaskit.NewUploadCache[*image.RGBA](Name, uploader{}),
		interp: interp,
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// EnsureUploaded refreshes the cached copy of atlas when it is stale.
func (b *Backend) EnsureUploaded(a *atlaskit.TextureAtlas) error {
	_, err := b.cache.EnsureUploaded(a)
	return err
}

// Texture returns the cached copy of atlas, uploading if needed.
func (b *Backend) Texture(a *atlaskit.TextureAtlas) (*image.RGBA, error) {
	return b.cache.EnsureUploaded(a)
}

// Forget drops the cached copy of a dropped atlas.
func (b *Backend) Forget(a *atlaskit.TextureAtlas) {
	if a != nil {
		b.cache.Forget(a.ID())
	}
}

// Invalidate marks every cached copy stale.
func (b *Backend) Invalidate() { b.cache.Invalidate() }

// Close drops every cached copy.
func (b *Backend) Close() { b.cache.Clear() }

// Cache exposes the upload cache for stats and state queries.
func (b *Backend) Cache() *atlaskit.UploadCache[*image.RGBA] { return b.cache }

// DrawBatches composites every quad onto dst with source-over blending and
// returns the number of quads drawn. Only the alpha of a quad's tint is
// applied. Batches whose atlas fails to upload are skipped.
func (b *Backend) DrawBatches(dst draw.Image, batches []atlaskit.Batch) int {
	drawn := 0
	for _, batch := range batches {
		tex, err := b.cache.EnsureUploaded(batch.Atlas)
		if err != nil {
			continue
		}
		for i := range batch.Quads {
			b.drawQuad(dst, tex, &batch.Quads[i])
			drawn++
		}
	}
	return drawn
}

func (b *Backend) drawQuad(dst draw.Image, tex *image.RGBA, q *atlaskit.Quad) {
	dr := image.Rect(
		int(math.Round(q.Dst.X)),
		int(math.Round(q.Dst.Y)),
		int(math.Round(q.Dst.X+q.Dst.Width)),
		int(math.Round(q.Dst.Y+q.Dst.Height)),
	)
	if dr.Empty() {
		return
	}
	sr := q.Region.Rect()

	var opts *draw.Options
	if a := q.Color.A; a < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(math.Max(0, a) * 255)})}
	}
	b.interp.Scale(dst, dr, tex, sr, draw.Over, opts)
}
