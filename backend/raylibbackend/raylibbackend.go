// Package raylibbackend uploads atlases as raylib textures and draws batches
// with DrawTexturePro. Use it from the thread that called rl.InitWindow.
package raylibbackend

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/phanxgames/atlaskit"
)

// Name is the backend identifier.
const Name = "raylib"

type uploader struct{}

func (uploader) Create(a *atlaskit.TextureAtlas) (rl.Texture2D, error) {
	pix, ok := a.Pixels()
	if !ok {
		return rl.Texture2D{}, fmt.Errorf("raylibbackend: atlas %q canvas not materialized", a.Name())
	}
	img := rl.NewImage(pix, int32(a.Width()), int32(a.Height()), 1, rl.UncompressedR8g8b8a8)
	tex := rl.LoadTextureFromImage(img)
	if tex.ID == 0 {
		return rl.Texture2D{}, fmt.Errorf("raylibbackend: LoadTextureFromImage %q failed", a.Name())
	}
	if a.HasMipmaps() {
		rl.GenTextureMipmaps(&tex)
		rl.SetTextureFilter(tex, rl.FilterTrilinear)
	}
	rl.SetTextureWrap(tex, rl.WrapClamp)
	return tex, nil
}

func (uploader) Destroy(tex rl.Texture2D) {
	if tex.ID != 0 {
		rl.UnloadTexture(tex)
	}
}

// Backend implements atlaskit.Backend on raylib.
type Backend struct {
	cache *atlaskit.UploadCache[rl.Texture2D]
}

// New creates a raylib backend.
func New() *Backend {
	return &Backend{cache: atlaskit.NewUploadCache[rl.Texture2D](Name, uploader{})}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// EnsureUploaded refreshes the atlas texture when it is stale.
func (b *Backend) EnsureUploaded(a *atlaskit.TextureAtlas) error {
	_, err := b.cache.EnsureUploaded(a)
	return err
}

// Texture returns the current texture of atlas, uploading if needed.
func (b *Backend) Texture(a *atlaskit.TextureAtlas) (rl.Texture2D, error) {
	return b.cache.EnsureUploaded(a)
}

// Forget unloads the texture of a dropped atlas.
func (b *Backend) Forget(a *atlaskit.TextureAtlas) {
	if a != nil {
		b.cache.Forget(a.ID())
	}
}

// Invalidate marks every texture stale.
func (b *Backend) Invalidate() { b.cache.Invalidate() }

// Close unloads every texture. Call it before rl.CloseWindow.
func (b *Backend) Close() { b.cache.Clear() }

// Cache exposes the upload cache for stats and state queries.
func (b *Backend) Cache() *atlaskit.UploadCache[rl.Texture2D] { return b.cache }

// DrawBatches draws every quad between rl.BeginDrawing and rl.EndDrawing and
// returns the number drawn. Batches whose atlas fails to upload are skipped.
func (b *Backend) DrawBatches(batches []atlaskit.Batch) int {
	drawn := 0
	for _, batch := range batches {
		tex, err := b.cache.EnsureUploaded(batch.Atlas)
		if err != nil {
			continue
		}
		for i := range batch.Quads {
			q := &batch.Quads[i]
			r := q.Region
			src := rl.NewRectangle(float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height))
			dst := rl.NewRectangle(float32(q.Dst.X), float32(q.Dst.Y), float32(q.Dst.Width), float32(q.Dst.Height))
			rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, tint(q.Color))
			drawn++
		}
	}
	return drawn
}

// tint converts a straight-alpha color to raylib's 8-bit tint.
func tint(c atlaskit.Color) rl.Color {
	return rl.NewColor(channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
