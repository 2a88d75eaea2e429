package atlaskit

// packer tracks per-pixel occupancy of one atlas canvas and places new
// rectangles with a first-fit scanline search.
//
// Placement is deterministic: candidate top-left corners are tried in
// row-major order (y outer, x inner) and the first free w×h window wins.
// Density is not optimised. The worst case is O(width*height) per find,
// which is fine for load-time packing.
type packer struct {
	width    int
	height   int
	occupied []bool // row-major, width*height cells
	used     int    // number of occupied cells
}

func newPacker(width, height int) *packer {
	return &packer{
		width:    width,
		height:   height,
		occupied: make([]bool, width*height),
	}
}

// find returns the first free position for a w×h rectangle. It never
// mutates the grid, so callers can abandon the placement at no cost.
func (p *packer) find(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 || w > p.width || h > p.height {
		return 0, 0, false
	}
	for y = 0; y <= p.height-h; y++ {
		for x = 0; x <= p.width-w; {
			blocked := p.firstBlocked(x, y, w, h)
			if blocked < 0 {
				return x, y, true
			}
			// Every candidate up to the blocked column overlaps it too.
			x = blocked + 1
		}
	}
	return 0, 0, false
}

// firstBlocked returns the rightmost occupied column found in the window at
// (x, y), or -1 when the whole window is free.
func (p *packer) firstBlocked(x, y, w, h int) int {
	blocked := -1
	for row := y; row < y+h; row++ {
		base := row * p.width
		for col := x + w - 1; col >= x; col-- {
			if p.occupied[base+col] {
				if col > blocked {
					blocked = col
				}
				break
			}
		}
		if blocked == x+w-1 {
			return blocked
		}
	}
	return blocked
}

// mark flags every cell of the window as occupied.
func (p *packer) mark(x, y, w, h int) {
	for row := y; row < y+h; row++ {
		base := row * p.width
		for col := x; col < x+w; col++ {
			if !p.occupied[base+col] {
				p.occupied[base+col] = true
				p.used++
			}
		}
	}
}

// isOccupied reports whether the pixel (x, y) is covered.
func (p *packer) isOccupied(x, y int) bool {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return false
	}
	return p.occupied[y*p.width+x]
}

// utilization returns the fraction of occupied cells (0.0 to 1.0).
func (p *packer) utilization() float64 {
	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.used) / float64(total)
}
