// Package atlaskit packs independently sized sprites into texture atlases and
// keeps each rendering backend's GPU copy of an atlas in sync with its CPU
// canvas.
//
// # Quick start
//
// Build a [Library] at load time, pack images into it, and keep the handles:
//
//	lib, _ := atlaskit.NewLibrary(atlaskit.DefaultLibraryConfig())
//	hero, err := lib.AddImage("hero", heroImg)
//	if err != nil {
//		// ErrDuplicateID, ErrEmptyTexture, ErrInvalidSize or ErrFull
//	}
//
// Each frame, make sure every backend holds the current atlas contents and
// draw through a [DrawList]:
//
//	_ = registry.EnsureAll(lib.Atlases())
//	list.Reset()
//	list.Push(atlaskit.DrawCommand{Sprite: hero, X: 100, Y: 50})
//	batches := list.Build(lib.Atlases())
//	backend.DrawBatches(screen, batches)
//
// # Atlases
//
// A [TextureAtlas] owns an RGBA8 canvas, an occupancy grid, and its entries.
// [TextureAtlas.AddEntry] places images with a deterministic first-fit
// scanline search and copies them into the canvas; [TextureAtlas.AddSliceEntry]
// describes rectangles of a canvas that was composited elsewhere, such as a
// TexturePacker sheet loaded with [LoadSheet]. Every successful mutation
// bumps [TextureAtlas.Version] by one; failed ones change nothing.
//
// # Sprite handles
//
// A [SpriteHandle] is a plain value naming an atlas index and an entry index.
// [Resolve] looks it up in the caller's atlas list and reports a miss instead
// of failing, so a missing sprite is simply not drawn.
//
// # Upload caches
//
// [UploadCache] implements the version check every backend shares: a backend
// supplies an [Uploader] that creates and destroys its native resource, and
// EnsureUploaded re-creates it only when the atlas version moved. Backends for
// software rendering, Ebitengine, OpenGL, WebGPU, and raylib live under
// backend/. A [Registry] owned by the application holds them.
//
// Frame sequences are played with [FrameAnimation], which uses [gween] tweens.
//
// [gween]: https://github.com/tanema/gween
package atlaskit
