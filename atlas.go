package atlaskit

import (
	"fmt"
	"image"
	"slices"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// AtlasID is the process-unique identity of a TextureAtlas. Upload caches
// key on it, never on the atlas address or contents.
type AtlasID uint64

// nextAtlasID hands out AtlasIDs. Zero is never issued.
var nextAtlasID atomic.Uint64

// TextureAtlas is one RGBA8 canvas plus the entries packed into it.
//
// Mutation (AddEntry, AddImage, AddSliceEntry, RebuildPixels, ReleasePixels)
// is single-threaded and happens during loading, before any concurrent reads.
// Once loading completes the atlas may be read from many goroutines,
// including several render threads each running their own backend.
//
// Every successful AddEntry, AddSliceEntry, and RebuildPixels increments
// Version by exactly one. Failed calls change nothing.
type TextureAtlas struct {
	id      AtlasID
	name    string
	index   int
	width   int
	height  int
	mipmaps bool
	version uint64

	// pixels is the materialized canvas, nil after ReleasePixels.
	pixels []byte
	// base is the layer rebuilds start from: nil means transparent black,
	// otherwise the sheet image the atlas was created from.
	base []byte

	entries    []AtlasEntry
	lookup     map[string]int // name -> entry index
	packer     *packer
	sliceCount int // slice entries, invisible to the packer
}

// NewTextureAtlas creates an empty atlas with a zero-filled canvas of
// Width*Height*4 bytes and version 0.
func NewTextureAtlas(cfg AtlasConfig) (*TextureAtlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TextureAtlas{
		id:      AtlasID(nextAtlasID.Add(1)),
		name:    cfg.Name,
		index:   cfg.Index,
		width:   cfg.Width,
		height:  cfg.Height,
		mipmaps: cfg.Mipmaps,
		pixels:  make([]byte, cfg.Width*cfg.Height*4),
		lookup:  make(map[string]int),
		packer:  newPacker(cfg.Width, cfg.Height),
	}, nil
}

// NewTextureAtlasFromImage creates an atlas whose canvas starts as a copy of
// an externally composited sheet. Describe its sprites with AddSliceEntry.
// A zero Width or Height in cfg is taken from the image bounds; otherwise
// the image is copied into the top-left corner and clipped.
func NewTextureAtlasFromImage(cfg AtlasConfig, sheet image.Image) (*TextureAtlas, error) {
	if sheet == nil {
		return nil, fmt.Errorf("atlaskit: new atlas %q: nil sheet image: %w", cfg.Name, ErrEmptyTexture)
	}
	b := sheet.Bounds()
	if cfg.Width == 0 {
		cfg.Width = b.Dx()
	}
	if cfg.Height == 0 {
		cfg.Height = b.Dy()
	}
	a, err := NewTextureAtlas(cfg)
	if err != nil {
		return nil, err
	}
	dst := &image.RGBA{Pix: a.pixels, Stride: a.width * 4, Rect: image.Rect(0, 0, a.width, a.height)}
	draw.Draw(dst, dst.Rect, sheet, b.Min, draw.Src)
	a.base = make([]byte, len(a.pixels))
	copy(a.base, a.pixels)
	return a, nil
}

// ID returns the atlas identity used by upload caches.
func (a *TextureAtlas) ID() AtlasID { return a.id }

// Name returns the atlas label.
func (a *TextureAtlas) Name() string { return a.name }

// Index returns the atlas position among its siblings. Sprite handles carry
// it as AtlasIndex.
func (a *TextureAtlas) Index() int { return a.index }

// Width returns the canvas width in pixels.
func (a *TextureAtlas) Width() int { return a.width }

// Height returns the canvas height in pixels.
func (a *TextureAtlas) Height() int { return a.height }

// HasMipmaps reports whether backends should generate mipmaps on upload.
func (a *TextureAtlas) HasMipmaps() bool { return a.mipmaps }

// Version returns the mutation counter. It never decreases.
func (a *TextureAtlas) Version() uint64 { return a.version }

// EntryCount returns the number of entries.
func (a *TextureAtlas) EntryCount() int { return len(a.entries) }

// Entries returns the entry list in index order. The returned slice MUST NOT
// be mutated.
func (a *TextureAtlas) Entries() []AtlasEntry { return a.entries }

// Entry returns the entry with the given local index.
func (a *TextureAtlas) Entry(i int) (AtlasEntry, bool) {
	if i < 0 || i >= len(a.entries) {
		return AtlasEntry{}, false
	}
	return a.entries[i], true
}

// EntryIndex returns the local index of the named entry.
func (a *TextureAtlas) EntryIndex(name string) (int, bool) {
	i, ok := a.lookup[name]
	return i, ok
}

// Region returns a copy of the named entry's region.
func (a *TextureAtlas) Region(name string) (AtlasRegion, bool) {
	i, ok := a.lookup[name]
	if !ok {
		return AtlasRegion{}, false
	}
	return a.entries[i].Region, true
}

// Handle returns a sprite handle addressing the named entry. The handle's
// liveness slot is 0; consumers that recycle handles should use HandleIssuer.
func (a *TextureAtlas) Handle(name string) (SpriteHandle, bool) {
	i, ok := a.lookup[name]
	if !ok {
		return InvalidHandle, false
	}
	return SpriteHandle{AtlasIndex: uint32(a.index), LocalIndex: uint32(i)}, true
}

// Utilization returns the fraction of the canvas covered by packed entries.
// Slice entries are not counted.
func (a *TextureAtlas) Utilization() float64 {
	return a.packer.utilization()
}

// AddEntry packs a w×h RGBA8 image into the atlas. The pixels are copied
// into a private buffer the atlas keeps for rebuilds and into the canvas at
// the placement offset (row by row, not flipped). The returned entry carries
// its own copy, so writing to it never reaches the atlas.
//
// Fails without modifying the atlas on a zero size or empty buffer
// (ErrEmptyTexture), a buffer shorter than w*h*4 (ErrInvalidSize), a reused
// name (ErrDuplicateID), or when no free w×h window exists (ErrFull).
func (a *TextureAtlas) AddEntry(name string, pixels []byte, w, h int) (AtlasEntry, error) {
	if w <= 0 || h <= 0 || len(pixels) == 0 {
		return AtlasEntry{}, fmt.Errorf("atlaskit: add %q (%dx%d): %w", name, w, h, ErrEmptyTexture)
	}
	size := w * h * 4
	if len(pixels) < size {
		return AtlasEntry{}, fmt.Errorf("atlaskit: add %q: %d bytes for %dx%d: %w", name, len(pixels), w, h, ErrInvalidSize)
	}
	if _, dup := a.lookup[name]; dup {
		return AtlasEntry{}, fmt.Errorf("atlaskit: add %q to %q: %w", name, a.name, ErrDuplicateID)
	}

	x, y, ok := a.packer.find(w, h)
	if !ok {
		return AtlasEntry{}, fmt.Errorf("atlaskit: add %q (%dx%d) to %q: %w", name, w, h, a.name, ErrFull)
	}

	owned := make([]byte, size)
	copy(owned, pixels[:size])

	a.packer.mark(x, y, w, h)
	if a.pixels != nil {
		blit(a.pixels, a.width, x, y, w, h, owned)
	}

	e := a.insert(AtlasEntry{
		Name:      name,
		Region:    newRegion(x, y, w, h, a.width, a.height),
		Pixels:    owned,
		TexWidth:  w,
		TexHeight: h,
	})
	// The atlas keeps owned for rebuilds; the caller gets its own bytes.
	e.Pixels = slices.Clone(owned)
	return e, nil
}

// AddImage converts img to RGBA8 and packs it with AddEntry.
func (a *TextureAtlas) AddImage(name string, img image.Image) (AtlasEntry, error) {
	if img == nil {
		return AtlasEntry{}, fmt.Errorf("atlaskit: add %q: nil image: %w", name, ErrEmptyTexture)
	}
	rgba := toRGBA(img)
	return a.AddEntry(name, rgba.Pix, rgba.Rect.Dx(), rgba.Rect.Dy())
}

// AddSliceEntry describes a w×h rectangle at (x, y) whose pixels already
// exist in the canvas. Neither the canvas nor the occupancy grid is touched.
//
// No overlap check is performed: callers guarantee that slices do not
// overlap each other or packed entries. The rectangle must be non-empty and
// inside the canvas (ErrInvalidSize) and the name unique (ErrDuplicateID).
func (a *TextureAtlas) AddSliceEntry(name string, x, y, w, h int) (AtlasEntry, error) {
	if w <= 0 || h <= 0 {
		return AtlasEntry{}, fmt.Errorf("atlaskit: slice %q (%dx%d): %w", name, w, h, ErrInvalidSize)
	}
	if x < 0 || y < 0 || x+w > a.width || y+h > a.height {
		return AtlasEntry{}, fmt.Errorf("atlaskit: slice %q (%d,%d %dx%d) outside %dx%d canvas: %w",
			name, x, y, w, h, a.width, a.height, ErrInvalidSize)
	}
	if _, dup := a.lookup[name]; dup {
		return AtlasEntry{}, fmt.Errorf("atlaskit: slice %q in %q: %w", name, a.name, ErrDuplicateID)
	}

	e := a.insert(AtlasEntry{
		Name:      name,
		Region:    newRegion(x, y, w, h, a.width, a.height),
		TexWidth:  w,
		TexHeight: h,
	})
	a.sliceCount++
	return e, nil
}

// Packable reports whether AddEntry can place sprites without landing on
// pixels the packer does not know about. Atlases built from a sheet image or
// holding slice entries are not packable: their occupied areas are not in
// the occupancy grid. AddEntry itself still works on them; Library.Add skips
// them.
func (a *TextureAtlas) Packable() bool {
	return a.base == nil && a.sliceCount == 0
}

// insert appends a validated entry, indexes it, and bumps the version.
func (a *TextureAtlas) insert(e AtlasEntry) AtlasEntry {
	e.Index = len(a.entries)
	a.entries = append(a.entries, e)
	a.lookup[e.Name] = e.Index
	a.version++
	return e
}

// Pixels returns the canvas and whether it is materialized. A released
// canvas returns (nil, false) until RebuildPixels runs or an upload cache
// restores it. The returned slice MUST NOT be mutated.
func (a *TextureAtlas) Pixels() ([]byte, bool) {
	return a.pixels, a.pixels != nil
}

// CanvasValid reports whether the canvas is materialized.
func (a *TextureAtlas) CanvasValid() bool {
	return a.pixels != nil
}

// ReleasePixels drops the CPU canvas, typically once every backend holds an
// upload. Entries keep their pixels, so RebuildPixels can restore it. The
// version is unchanged: the atlas contents are the same.
func (a *TextureAtlas) ReleasePixels() {
	a.pixels = nil
}

// RebuildPixels recomputes the canvas from the base layer and every data
// entry, in index order. Slice entries are skipped since their pixels are
// part of the base layer. The version is always incremented, even when the
// bytes come out identical.
func (a *TextureAtlas) RebuildPixels() {
	if a.pixels == nil {
		a.pixels = make([]byte, a.width*a.height*4)
	}
	a.compose(a.pixels)

	a.version++
	Logger().Debug("atlaskit: rebuilt canvas",
		"atlas", a.name, "id", a.id, "entries", len(a.entries), "version", a.version)
}

// restorePixels materializes a released canvas without touching the version.
// The bytes equal what the current version held before ReleasePixels, so
// uploads made at this version stay valid. It reports whether it did work.
func (a *TextureAtlas) restorePixels() bool {
	if a.pixels != nil {
		return false
	}
	a.pixels = make([]byte, a.width*a.height*4)
	a.compose(a.pixels)
	Logger().Debug("atlaskit: restored released canvas",
		"atlas", a.name, "id", a.id, "version", a.version)
	return true
}

// compose writes the base layer plus every data entry into dst, which must
// hold Width*Height*4 bytes.
func (a *TextureAtlas) compose(dst []byte) {
	if a.base != nil {
		copy(dst, a.base)
	} else {
		clear(dst)
	}
	for i := range a.entries {
		e := &a.entries[i]
		if e.IsSlice() {
			continue
		}
		r := e.Region
		blit(dst, a.width, r.X, r.Y, e.TexWidth, e.TexHeight, e.Pixels)
	}
}

// setIndex is used by Library when it adopts or swaps atlases.
func (a *TextureAtlas) setIndex(i int) {
	a.index = i
}

// blit copies a w×h RGBA8 image into dst (dstW pixels wide) at (x, y).
func blit(dst []byte, dstW, x, y, w, h int, src []byte) {
	rowBytes := w * 4
	for row := 0; row < h; row++ {
		dstOff := ((y+row)*dstW + x) * 4
		srcOff := row * rowBytes
		copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
	}
}

// toRGBA returns img as a tightly packed *image.RGBA with a zero origin,
// converting only when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}
