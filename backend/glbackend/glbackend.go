// Package glbackend uploads atlases as OpenGL 3.3 core textures and streams
// batches as interleaved triangles.
//
// Context creation and shader compilation are the caller's job: the backend
// is handed a linked program, a VAO, and a VBO, and must only be used on the
// goroutine that owns the GL context.
//
// Canvas rows are uploaded top row first, so texture t == 0 is the top of
// the atlas while region UVs use a bottom-left origin. The bound program is
// expected to sample at vec2(uv.x, 1.0 - uv.y).
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/phanxgames/atlaskit"
)

// Name is the backend identifier.
const Name = "opengl"

// Vertex attribute locations used by ConfigureVertexLayout.
const (
	AttribPosition = 0
	AttribUV       = 1
	AttribColor    = 2
)

type uploader struct{}

func (uploader) Create(a *atlaskit.TextureAtlas) (uint32, error) {
	pix, ok := a.Pixels()
	if !ok || len(pix) == 0 {
		return 0, fmt.Errorf("glbackend: atlas %q canvas not materialized", a.Name())
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, fmt.Errorf("glbackend: glGenTextures returned 0")
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(a.Width()), int32(a.Height()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))

	if a.HasMipmaps() {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("glbackend: upload %q: gl error 0x%x", a.Name(), e)
	}
	return tex, nil
}

func (uploader) Destroy(tex uint32) {
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

// Options carries the GL objects the caller created for drawing.
type Options struct {
	Program uint32
	VAO     uint32
	VBO     uint32
}

// Backend implements atlaskit.Backend on OpenGL.
type Backend struct {
	cache    *atlaskit.UploadCache[uint32]
	opts     Options
	vertices []float32
}

// New creates an OpenGL backend. Call it with the GL context current.
func New(opts Options) *Backend {
	return &Backend{
		cache:    atlaskit.NewUploadCache[uint32](Name, uploader{}),
		opts:     opts,
		vertices: make([]float32, 0, 1024),
	}
}

// ConfigureVertexLayout binds the atlaskit vertex layout (position, UV,
// premultiplied color) to vao/vbo at the Attrib* locations.
func ConfigureVertexLayout(vao, vbo uint32) {
	stride := int32(atlaskit.FloatsPerVertex * 4)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	gl.EnableVertexAttribArray(AttribPosition)
	gl.VertexAttribPointer(AttribPosition, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(AttribUV)
	gl.VertexAttribPointer(AttribUV, 2, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(AttribColor)
	gl.VertexAttribPointer(AttribColor, 4, gl.FLOAT, false, stride, gl.PtrOffset(4*4))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// EnsureUploaded refreshes the atlas texture when it is stale.
func (b *Backend) EnsureUploaded(a *atlaskit.TextureAtlas) error {
	_, err := b.cache.EnsureUploaded(a)
	return err
}

// Texture returns the current GL texture name of atlas, uploading if needed.
func (b *Backend) Texture(a *atlaskit.TextureAtlas) (uint32, error) {
	return b.cache.EnsureUploaded(a)
}

// Forget deletes the texture of a dropped atlas.
func (b *Backend) Forget(a *atlaskit.TextureAtlas) {
	if a != nil {
		b.cache.Forget(a.ID())
	}
}

// Invalidate marks every texture stale, e.g. after the context was lost.
func (b *Backend) Invalidate() { b.cache.Invalidate() }

// Close deletes every texture.
func (b *Backend) Close() { b.cache.Clear() }

// Cache exposes the upload cache for stats and state queries.
func (b *Backend) Cache() *atlaskit.UploadCache[uint32] { return b.cache }

// DrawBatches issues one glDrawArrays per batch and returns the number of
// quads drawn. Batches whose atlas fails to upload are skipped.
func (b *Backend) DrawBatches(batches []atlaskit.Batch) int {
	if len(batches) == 0 {
		return 0
	}
	gl.UseProgram(b.opts.Program)
	gl.BindVertexArray(b.opts.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.opts.VBO)
	gl.ActiveTexture(gl.TEXTURE0)

	drawn := 0
	for _, batch := range batches {
		tex, err := b.cache.EnsureUploaded(batch.Atlas)
		if err != nil || len(batch.Quads) == 0 {
			continue
		}
		b.vertices = atlaskit.AppendBatchVertices(b.vertices[:0], batch)

		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.BufferData(gl.ARRAY_BUFFER, len(b.vertices)*4, gl.Ptr(b.vertices), gl.DYNAMIC_DRAW)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(b.vertices)/atlaskit.FloatsPerVertex))
		drawn += len(batch.Quads)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
	return drawn
}
