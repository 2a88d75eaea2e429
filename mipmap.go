package atlaskit

import (
	"image"

	"golang.org/x/image/draw"
)

// MipLevel is one level of a mipmap chain in RGBA8.
type MipLevel struct {
	Width, Height int
	Pix           []byte
}

// MipLevelCount returns the number of levels in a full chain for a w×h
// canvas, down to 1×1.
func MipLevelCount(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		n++
	}
	return n
}

// MipChain builds the full mipmap chain for a w×h RGBA8 canvas. Level 0
// shares pix; every further level halves the previous one with a bilinear
// filter. For backends whose API has no mipmap generator.
func MipChain(pix []byte, w, h int) []MipLevel {
	levels := make([]MipLevel, 0, MipLevelCount(w, h))
	levels = append(levels, MipLevel{Width: w, Height: h, Pix: pix})

	src := &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	for src.Rect.Dx() > 1 || src.Rect.Dy() > 1 {
		dw, dh := max(src.Rect.Dx()/2, 1), max(src.Rect.Dy()/2, 1)
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
		levels = append(levels, MipLevel{Width: dw, Height: dh, Pix: dst.Pix})
		src = dst
	}
	return levels
}
