package atlaskit

import (
	"fmt"
	"math"
)

// Uploader is the backend-specific half of an UploadCache: how to turn an
// atlas canvas into a GPU resource of type H, and how to free one.
//
// Create is only called with a materialized canvas. A failed Create must not
// leave a resource behind.
type Uploader[H any] interface {
	Create(atlas *TextureAtlas) (H, error)
	Destroy(handle H)
}

// CacheState is the upload state of one atlas in one cache.
type CacheState uint8

const (
	CacheAbsent  CacheState = iota // never uploaded, forgotten, or first upload failed
	CacheStale                     // uploaded, but the atlas version moved on
	CacheCurrent                   // uploaded resource matches the atlas version
)

func (s CacheState) String() string {
	switch s {
	case CacheAbsent:
		return "absent"
	case CacheStale:
		return "stale"
	case CacheCurrent:
		return "current"
	default:
		return fmt.Sprintf("CacheState(%d)", uint8(s))
	}
}

// versionNone is an atlas version that can never occur. Entries carrying it
// are stale no matter what the atlas reports.
const versionNone = math.MaxUint64

type cacheEntry[H any] struct {
	handle  H
	version uint64
	width   int
	height  int
}

// CacheStats counts uploader calls and cache outcomes since creation.
type CacheStats struct {
	Hits         uint64 // EnsureUploaded calls that did no GPU work
	Creations    uint64 // successful Uploader.Create calls
	Destructions uint64 // Uploader.Destroy calls
	Failures     uint64 // failed Uploader.Create calls
	Rebuilds     uint64 // canvases materialized before an upload
}

// UploadCache keeps one backend's GPU copies of atlases in sync with their
// CPU canvases by comparing versions.
//
// One cache belongs to one backend execution context and is not safe for
// concurrent use; callers serialize EnsureUploaded per backend. The cache is
// the sole owner of every handle it stores.
type UploadCache[H any] struct {
	name       string
	uploader   Uploader[H]
	entries    map[AtlasID]*cacheEntry[H]
	generation uint64
	stats      CacheStats
}

// NewUploadCache creates an empty cache. name labels log output, usually
// the backend name.
func NewUploadCache[H any](name string, uploader Uploader[H]) *UploadCache[H] {
	return &UploadCache[H]{
		name:     name,
		uploader: uploader,
		entries:  make(map[AtlasID]*cacheEntry[H]),
	}
}

// EnsureUploaded returns the backend resource holding the atlas' current
// contents, uploading only when the cached version differs. It is meant to
// be called every frame before drawing from the atlas.
//
// On a stale entry the replacement is created first; the old handle is
// destroyed only once creation succeeded and right before it is overwritten.
// A failed creation installs nothing: the entry stays absent or stale and the
// next call retries.
//
// A released canvas is restored before upload. Restoring keeps the version,
// so other backends already holding this version stay current.
func (c *UploadCache[H]) EnsureUploaded(atlas *TextureAtlas) (H, error) {
	var zero H
	if atlas == nil {
		return zero, ErrNilAtlas
	}

	prev, ok := c.entries[atlas.id]
	if ok && prev.version == atlas.version {
		c.stats.Hits++
		return prev.handle, nil
	}

	if atlas.restorePixels() {
		c.stats.Rebuilds++
	}

	handle, err := c.uploader.Create(atlas)
	if err != nil {
		c.stats.Failures++
		Logger().Warn("atlaskit: upload failed",
			"backend", c.name, "atlas", atlas.name, "id", atlas.id, "err", err)
		return zero, fmt.Errorf("atlaskit: %s upload %q: %w", c.name, atlas.name, err)
	}
	c.stats.Creations++

	if ok {
		c.uploader.Destroy(prev.handle)
		c.stats.Destructions++
	}
	c.entries[atlas.id] = &cacheEntry[H]{
		handle:  handle,
		version: atlas.version,
		width:   atlas.width,
		height:  atlas.height,
	}

	Logger().Debug("atlaskit: uploaded atlas",
		"backend", c.name, "atlas", atlas.name, "id", atlas.id,
		"version", atlas.version, "replaced", ok)
	return handle, nil
}

// State reports the cache state of the atlas without changing anything.
func (c *UploadCache[H]) State(atlas *TextureAtlas) CacheState {
	if atlas == nil {
		return CacheAbsent
	}
	e, ok := c.entries[atlas.id]
	switch {
	case !ok:
		return CacheAbsent
	case e.version != atlas.version:
		return CacheStale
	default:
		return CacheCurrent
	}
}

// Handle returns the cached resource for id, current or not.
func (c *UploadCache[H]) Handle(id AtlasID) (H, bool) {
	e, ok := c.entries[id]
	if !ok {
		var zero H
		return zero, false
	}
	return e.handle, true
}

// Size returns the dimensions the cached resource for id was created with.
func (c *UploadCache[H]) Size(id AtlasID) (w, h int, ok bool) {
	e, ok := c.entries[id]
	if !ok {
		return 0, 0, false
	}
	return e.width, e.height, true
}

// Forget destroys and removes the resource of a dropped atlas.
// Returns false if nothing was cached.
func (c *UploadCache[H]) Forget(id AtlasID) bool {
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	c.uploader.Destroy(e.handle)
	c.stats.Destructions++
	delete(c.entries, id)
	return true
}

// Invalidate bumps the cache generation, e.g. after device loss. Every entry
// turns stale, so the next EnsureUploaded re-creates it and releases the
// previous handle through the uploader.
func (c *UploadCache[H]) Invalidate() {
	c.generation++
	for _, e := range c.entries {
		e.version = versionNone
	}
	Logger().Debug("atlaskit: upload cache invalidated",
		"backend", c.name, "generation", c.generation, "entries", len(c.entries))
}

// Clear destroys every cached resource.
func (c *UploadCache[H]) Clear() {
	for id, e := range c.entries {
		c.uploader.Destroy(e.handle)
		c.stats.Destructions++
		delete(c.entries, id)
	}
}

// Len returns the number of cached resources.
func (c *UploadCache[H]) Len() int {
	return len(c.entries)
}

// Generation returns how many times Invalidate was called.
func (c *UploadCache[H]) Generation() uint64 {
	return c.generation
}

// Stats returns a snapshot of the cache counters.
func (c *UploadCache[H]) Stats() CacheStats {
	return c.stats
}

// Name returns the label given at construction.
func (c *UploadCache[H]) Name() string {
	return c.name
}
