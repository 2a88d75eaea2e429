// Package ebitenbackend renders atlaskit batches with Ebitengine. Each atlas
// is uploaded as one *ebiten.Image; sprites are drawn as sub-images of it, so
// Ebitengine merges consecutive draws from one atlas into a single call.
package ebitenbackend

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/atlaskit"
)

// Name is the backend identifier.
const Name = "ebiten"

var errNoCanvas = errors.New("ebitenbackend: atlas canvas not materialized")

type uploader struct{}

func (uploader) Create(a *atlaskit.TextureAtlas) (*ebiten.Image, error) {
	pix, ok := a.Pixels()
	if !ok {
		return nil, errNoCanvas
	}
	img := ebiten.NewImage(a.Width(), a.Height())
	img.WritePixels(pix)
	return img, nil
}

func (uploader) Destroy(img *ebiten.Image) {
	if img != nil {
		img.Deallocate()
	}
}

// Options configures an Ebitengine Backend. The zero Blend is source-over
// and the zero Filter is nearest.
type Options struct {
	Blend  ebiten.Blend
	Filter ebiten.Filter
}

// Backend implements atlaskit.Backend on Ebitengine.
type Backend struct {
	cache *atlaskit.UploadCache[*ebiten.Image]
	opts  Options
	op    ebiten.DrawImageOptions
}

// New creates an Ebitengine backend.
func New(opts Options) *Backend {
	return &Backend{
		cache: atlaskit.NewUploadCache[*ebiten.Image](Name, uploader{}),
		opts:  opts,
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// EnsureUploaded refreshes the atlas image when it is stale.
func (b *Backend) EnsureUploaded(a *atlaskit.TextureAtlas) error {
	_, err := b.cache.EnsureUploaded(a)
	return err
}

// Image returns the current atlas image, uploading if needed.
func (b *Backend) Image(a *atlaskit.TextureAtlas) (*ebiten.Image, error) {
	return b.cache.EnsureUploaded(a)
}

// Forget deallocates the image of a dropped atlas.
func (b *Backend) Forget(a *atlaskit.TextureAtlas) {
	if a != nil {
		b.cache.Forget(a.ID())
	}
}

// Invalidate marks every atlas image stale.
func (b *Backend) Invalidate() { b.cache.Invalidate() }

// Close deallocates every atlas image.
func (b *Backend) Close() { b.cache.Clear() }

// Cache exposes the upload cache for stats and state queries.
func (b *Backend) Cache() *atlaskit.UploadCache[*ebiten.Image] { return b.cache }

// DrawBatches draws every quad onto target and returns the number drawn.
// Batches whose atlas fails to upload are skipped.
func (b *Backend) DrawBatches(target *ebiten.Image, batches []atlaskit.Batch) int {
	drawn := 0
	for _, batch := range batches {
		page, err := b.cache.EnsureUploaded(batch.Atlas)
		if err != nil {
			continue
		}
		for i := range batch.Quads {
			b.drawQuad(target, page, &batch.Quads[i])
			drawn++
		}
	}
	return drawn
}

func (b *Backend) drawQuad(target, page *ebiten.Image, q *atlaskit.Quad) {
	r := q.Region
	if r.Width == 0 || r.Height == 0 {
		return
	}
	sub := page.SubImage(r.Rect()).(*ebiten.Image)

	op := &b.op
	op.GeoM.Reset()
	op.GeoM.Scale(q.Dst.Width/float64(r.Width), q.Dst.Height/float64(r.Height))
	op.GeoM.Translate(q.Dst.X, q.Dst.Y)

	// Apply premultiplied color scale.
	op.ColorScale.Reset()
	a := float32(q.Color.A)
	op.ColorScale.Scale(float32(q.Color.R)*a, float32(q.Color.G)*a, float32(q.Color.B)*a, a)

	op.Blend = b.opts.Blend
	op.Filter = b.opts.Filter
	target.DrawImage(sub, op)
}
