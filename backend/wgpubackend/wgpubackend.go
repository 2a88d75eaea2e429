// Package wgpubackend uploads atlases as WebGPU textures.
//
// The backend owns only textures and their views. Pipelines, bind groups,
// and render passes belong to the caller, who binds View(atlas) for each
// batch and streams the vertices produced by atlaskit.AppendBatchVertices.
//
// Atlases with mipmaps get a full chain built on the CPU by atlaskit.MipChain.
//
// WebGPU texture coordinates start at the top-left while region UVs start at
// the bottom-left, so the fragment shader samples at vec2(uv.x, 1.0 - uv.y).
package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/phanxgames/atlaskit"
)

// Name is the backend identifier.
const Name = "webgpu"

// Texture is an uploaded atlas page.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// Release frees the view and then the texture.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

type uploader struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	format wgpu.TextureFormat
}

func (u *uploader) Create(a *atlaskit.TextureAtlas) (*Texture, error) {
	pix, ok := a.Pixels()
	if !ok {
		return nil, fmt.Errorf("wgpubackend: atlas %q canvas not materialized", a.Name())
	}
	levels := []atlaskit.MipLevel{{Width: a.Width(), Height: a.Height(), Pix: pix}}
	if a.HasMipmaps() {
		levels = atlaskit.MipChain(pix, a.Width(), a.Height())
	}
	size := wgpu.Extent3D{Width: uint32(a.Width()), Height: uint32(a.Height()), DepthOrArrayLayers: 1}

	tex, err := u.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         a.Name() + " Atlas",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        u.format,
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	// WebGPU has no mipmap generator; every level is written from the CPU.
	for i, l := range levels {
		extent := wgpu.Extent3D{Width: uint32(l.Width), Height: uint32(l.Height), DepthOrArrayLayers: 1}
		u.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(i),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			l.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(l.Width) * 4,
				RowsPerImage: uint32(l.Height),
			},
			&extent,
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &Texture{Texture: tex, View: view}, nil
}

func (u *uploader) Destroy(t *Texture) { t.Release() }

// Options configures a WebGPU Backend.
type Options struct {
	// Format of the atlas textures. Default TextureFormatRGBA8UnormSrgb.
	Format wgpu.TextureFormat
}

// Backend implements atlaskit.Backend on WebGPU.
type Backend struct {
	cache *atlaskit.UploadCache[*Texture]
}

// New creates a WebGPU backend uploading through queue.
func New(device *wgpu.Device, queue *wgpu.Queue, opts Options) *Backend {
	format := opts.Format
	if format == wgpu.TextureFormatUndefined {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	up := &uploader{device: device, queue: queue, format: format}
	return &Backend{cache: atlaskit.NewUploadCache[*Texture](Name, up)}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// EnsureUploaded refreshes the atlas texture when it is stale.
func (b *Backend) EnsureUploaded(a *atlaskit.TextureAtlas) error {
	_, err := b.cache.EnsureUploaded(a)
	return err
}

// View returns the texture view of atlas for binding, uploading if needed.
func (b *Backend) View(a *atlaskit.TextureAtlas) (*wgpu.TextureView, error) {
	t, err := b.cache.EnsureUploaded(a)
	if err != nil {
		return nil, err
	}
	return t.View, nil
}

// Forget releases the texture of a dropped atlas.
func (b *Backend) Forget(a *atlaskit.TextureAtlas) {
	if a != nil {
		b.cache.Forget(a.ID())
	}
}

// Invalidate marks every texture stale, e.g. after device loss.
func (b *Backend) Invalidate() { b.cache.Invalidate() }

// Close releases every texture.
func (b *Backend) Close() { b.cache.Clear() }

// Cache exposes the upload cache for stats and state queries.
func (b *Backend) Cache() *atlaskit.UploadCache[*Texture] { return b.cache }
