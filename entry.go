package atlaskit

// AtlasEntry is the bookkeeping record of one named sub-image.
//
// A data entry owns a private RGBA8 copy of its pixels, used to rebuild the
// canvas. A slice entry has nil Pixels and only describes a rectangle that
// already exists in the canvas.
type AtlasEntry struct {
	// Index is the entry's position in the atlas entry list at insertion
	// time. It never changes and is the LocalIndex of sprite handles.
	Index int

	// Name is unique within the owning atlas.
	Name string

	Region AtlasRegion

	// Pixels is the owned RGBA8 copy, row-major, TexWidth*TexHeight*4 bytes.
	// Nil for slice entries. Must not be modified.
	Pixels []byte

	TexWidth  int
	TexHeight int
}

// IsSlice reports whether the entry references canvas pixels instead of
// owning a copy.
func (e *AtlasEntry) IsSlice() bool {
	return e.Pixels == nil
}
