package atlaskit

import (
	"fmt"
	"image"
)

// AtlasRegion describes a packed rectangle in pixel space and in normalized
// UV space. Value type, immutable once built.
//
// Pixel coordinates use a top-left origin. UVs use a bottom-left origin, so
// V1 is the bottom edge of the sprite and V2 (the larger value) its top edge.
type AtlasRegion struct {
	X, Y          int // top-left corner in atlas pixels
	Width, Height int // size in pixels

	U1, V1 float32 // left, bottom
	U2, V2 float32 // right, top
}

// newRegion builds the region for a w×h rectangle at (x, y) inside an
// atlasW×atlasH canvas.
func newRegion(x, y, w, h, atlasW, atlasH int) AtlasRegion {
	fw := float32(atlasW)
	fh := float32(atlasH)
	return AtlasRegion{
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		U1:     float32(x) / fw,
		U2:     float32(x+w) / fw,
		V1:     1 - float32(y+h)/fh,
		V2:     1 - float32(y)/fh,
	}
}

// Rect returns the pixel rectangle as an image.Rectangle.
func (r AtlasRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns the pixel area of the region.
func (r AtlasRegion) Area() int {
	return r.Width * r.Height
}

// Contains reports whether the pixel (x, y) is inside the region.
func (r AtlasRegion) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Overlaps reports whether two regions share at least one pixel.
// Regions that only touch along an edge do not overlap.
func (r AtlasRegion) Overlaps(other AtlasRegion) bool {
	return r.X < other.X+other.Width &&
		other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height &&
		other.Y < r.Y+r.Height
}

func (r AtlasRegion) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}
