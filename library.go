package atlaskit

import (
	"errors"
	"fmt"
	"image"
)

// Library owns an ordered list of sibling atlases. Its position i is the
// AtlasIndex of handles into atlas i, and Atlases() is the list handed to
// Resolve and DrawList.Build.
//
// A Library is created by the composition root and passed to whatever
// needs it. Like TextureAtlas, it is mutated during loading only.
type Library struct {
	cfg     LibraryConfig
	atlases []*TextureAtlas
}

// NewLibrary validates cfg and returns an empty library.
func NewLibrary(cfg LibraryConfig) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Library{cfg: cfg}, nil
}

// Config returns the validated library configuration.
func (l *Library) Config() LibraryConfig {
	return l.cfg
}

// NewAtlas creates an atlas at the next index.
func (l *Library) NewAtlas(cfg AtlasConfig) (*TextureAtlas, error) {
	cfg.Index = len(l.atlases)
	a, err := NewTextureAtlas(cfg)
	if err != nil {
		return nil, err
	}
	l.atlases = append(l.atlases, a)
	return a, nil
}

// Adopt appends existing atlases, re-indexing them to their new positions.
func (l *Library) Adopt(atlases ...*TextureAtlas) {
	for _, a := range atlases {
		if a == nil {
			continue
		}
		a.setIndex(len(l.atlases))
		l.atlases = append(l.atlases, a)
	}
}

// LoadSheet loads a TexturePacker sheet (see LoadSheet) and adopts every page.
func (l *Library) LoadSheet(cfg AtlasConfig, jsonData []byte, pages []image.Image) ([]*TextureAtlas, error) {
	cfg.Index = len(l.atlases)
	atlases, err := LoadSheet(cfg, jsonData, pages)
	if err != nil {
		return nil, err
	}
	l.atlases = append(l.atlases, atlases...)
	return atlases, nil
}

// Atlases returns the ordered atlas list. Dropped slots are nil. The returned
// slice MUST NOT be mutated.
func (l *Library) Atlases() []*TextureAtlas {
	return l.atlases
}

// Atlas returns the atlas at index i, or nil.
func (l *Library) Atlas(i int) *TextureAtlas {
	if i < 0 || i >= len(l.atlases) {
		return nil
	}
	return l.atlases[i]
}

// Len returns the number of atlas slots, including dropped ones.
func (l *Library) Len() int {
	return len(l.atlases)
}

// Replace hot-swaps the atlas at index i and returns the previous one.
// Handles keep their AtlasIndex; whether their LocalIndex still resolves
// depends on the new atlas' entries.
func (l *Library) Replace(i int, atlas *TextureAtlas) (*TextureAtlas, error) {
	if i < 0 || i >= len(l.atlases) {
		return nil, fmt.Errorf("atlaskit: replace atlas %d of %d: index out of range", i, len(l.atlases))
	}
	if atlas == nil {
		return nil, fmt.Errorf("atlaskit: replace atlas %d: %w", i, ErrNilAtlas)
	}
	prev := l.atlases[i]
	atlas.setIndex(i)
	l.atlases[i] = atlas
	return prev, nil
}

// Drop empties slot i and returns the atlas that was there. Handles into it
// stop resolving. Callers should also Forget the atlas in every backend.
func (l *Library) Drop(i int) *TextureAtlas {
	if i < 0 || i >= len(l.atlases) {
		return nil
	}
	prev := l.atlases[i]
	l.atlases[i] = nil
	return prev
}

// Add packs an RGBA8 image into the first packable atlas with room, creating
// overflow atlases from the configured template up to MaxAtlases. Sheet
// atlases and atlases holding slice entries are never packed into, since
// the packer cannot see their sprites. ErrFull is only returned when no
// existing or new atlas can hold it; a failed Add leaves the library
// unchanged.
func (l *Library) Add(name string, pixels []byte, w, h int) (SpriteHandle, error) {
	for _, a := range l.atlases {
		if a == nil || !a.Packable() {
			continue
		}
		e, err := a.AddEntry(name, pixels, w, h)
		if err == nil {
			return SpriteHandle{AtlasIndex: uint32(a.index), LocalIndex: uint32(e.Index)}, nil
		}
		if !errors.Is(err, ErrFull) {
			return InvalidHandle, err
		}
	}

	tmpl := l.cfg.Atlas
	if w > tmpl.Width || h > tmpl.Height {
		return InvalidHandle, fmt.Errorf("atlaskit: add %q (%dx%d) exceeds %dx%d atlas: %w",
			name, w, h, tmpl.Width, tmpl.Height, ErrFull)
	}
	if len(l.atlases) >= l.cfg.MaxAtlases {
		return InvalidHandle, fmt.Errorf("atlaskit: add %q: all %d atlases are full: %w",
			name, l.cfg.MaxAtlases, ErrFull)
	}

	tmpl.Name = fmt.Sprintf("%s-%d", l.cfg.Atlas.Name, len(l.atlases))
	tmpl.Index = len(l.atlases)
	a, err := NewTextureAtlas(tmpl)
	if err != nil {
		return InvalidHandle, err
	}
	e, err := a.AddEntry(name, pixels, w, h)
	if err != nil {
		return InvalidHandle, err
	}
	l.atlases = append(l.atlases, a)
	Logger().Info("atlaskit: created overflow atlas", "atlas", a.name, "index", a.index)
	return SpriteHandle{AtlasIndex: uint32(a.index), LocalIndex: uint32(e.Index)}, nil
}

// AddImage converts img to RGBA8 and packs it with Add.
func (l *Library) AddImage(name string, img image.Image) (SpriteHandle, error) {
	if img == nil {
		return InvalidHandle, fmt.Errorf("atlaskit: add %q: nil image: %w", name, ErrEmptyTexture)
	}
	rgba := toRGBA(img)
	return l.Add(name, rgba.Pix, rgba.Rect.Dx(), rgba.Rect.Dy())
}

// Lookup returns a handle for the first entry named name, searching atlases
// in index order.
func (l *Library) Lookup(name string) (SpriteHandle, bool) {
	for _, a := range l.atlases {
		if a == nil {
			continue
		}
		if h, ok := a.Handle(name); ok {
			return h, true
		}
	}
	return InvalidHandle, false
}

// Resolve resolves h against the library's atlas list.
func (l *Library) Resolve(h SpriteHandle) (*TextureAtlas, AtlasEntry, bool) {
	return Resolve(h, l.atlases)
}

// RegionOf returns the region h points at, or ErrUnresolvedHandle when h
// does not resolve.
func (l *Library) RegionOf(h SpriteHandle) (AtlasRegion, error) {
	r, ok := ResolveRegion(h, l.atlases)
	if !ok {
		return AtlasRegion{}, fmt.Errorf("atlaskit: region of %s: %w", h, ErrUnresolvedHandle)
	}
	return r, nil
}
