package atlaskit

import "slices"

// DrawCommand asks for one sprite to be drawn at a screen position.
type DrawCommand struct {
	Sprite SpriteHandle

	// X and Y place the sprite's top-left corner in screen pixels.
	X, Y float64

	// ScaleX and ScaleY scale the sprite's pixel size. Zero means 1.
	ScaleX, ScaleY float64

	// Color tints the sprite. The zero value draws untinted.
	Color Color

	// Layer orders commands; lower layers draw first. Within a layer,
	// commands are grouped by atlas and otherwise keep submission order.
	Layer int
}

// Quad is a resolved command: the source region and the destination rect.
type Quad struct {
	Region AtlasRegion
	Dst    Rect
	Color  Color
}

// Batch is a run of quads that sample the same atlas, so a backend can bind
// one texture for all of them.
type Batch struct {
	Atlas *TextureAtlas
	Quads []Quad
}

// batchKey groups commands that can share a texture binding.
type batchKey struct {
	layer int
	atlas uint32
}

func commandBatchKey(cmd *DrawCommand) batchKey {
	return batchKey{layer: cmd.Layer, atlas: cmd.Sprite.AtlasIndex}
}

// DrawList collects draw commands for one frame and turns them into
// per-atlas batches. Reuse one DrawList across frames; after warmup Build
// does not allocate.
type DrawList struct {
	commands  []DrawCommand
	order     []int
	quads     []Quad
	quadAtlas []*TextureAtlas
	batches   []Batch
	skipped   int
}

// Push queues a command.
func (d *DrawList) Push(cmd DrawCommand) {
	d.commands = append(d.commands, cmd)
}

// Len returns the number of queued commands.
func (d *DrawList) Len() int {
	return len(d.commands)
}

// Skipped returns how many commands the last Build dropped because their
// handle did not resolve.
func (d *DrawList) Skipped() int {
	return d.skipped
}

// Reset clears queued commands and the last build, keeping capacity.
func (d *DrawList) Reset() {
	d.commands = d.commands[:0]
	d.order = d.order[:0]
	d.quads = d.quads[:0]
	d.quadAtlas = d.quadAtlas[:0]
	d.batches = d.batches[:0]
	d.skipped = 0
}

// Build resolves every queued command against atlases and groups the
// results into batches ordered by layer, then atlas index. Commands whose
// handle does not resolve are skipped: a missing sprite is not drawn.
//
// The returned batches alias DrawList memory and stay valid until the next
// Build or Reset.
func (d *DrawList) Build(atlases []*TextureAtlas) []Batch {
	d.order = d.order[:0]
	for i := range d.commands {
		d.order = append(d.order, i)
	}
	slices.SortStableFunc(d.order, func(a, b int) int {
		ka := commandBatchKey(&d.commands[a])
		kb := commandBatchKey(&d.commands[b])
		if ka.layer != kb.layer {
			return ka.layer - kb.layer
		}
		switch {
		case ka.atlas < kb.atlas:
			return -1
		case ka.atlas > kb.atlas:
			return 1
		}
		return 0
	})

	d.quads = d.quads[:0]
	d.quadAtlas = d.quadAtlas[:0]
	d.skipped = 0
	for _, i := range d.order {
		cmd := &d.commands[i]
		atlas, entry, ok := Resolve(cmd.Sprite, atlases)
		if !ok {
			d.skipped++
			continue
		}
		d.quads = append(d.quads, commandQuad(cmd, entry.Region))
		d.quadAtlas = append(d.quadAtlas, atlas)
	}

	d.batches = d.batches[:0]
	start := 0
	for i := 1; i <= len(d.quads); i++ {
		if i == len(d.quads) || d.quadAtlas[i] != d.quadAtlas[start] {
			d.batches = append(d.batches, Batch{Atlas: d.quadAtlas[start], Quads: d.quads[start:i]})
			start = i
		}
	}

	if d.skipped > 0 && DebugMode() {
		Logger().Debug("atlaskit: skipped unresolved sprites",
			"skipped", d.skipped, "commands", len(d.commands))
	}
	return d.batches
}

func commandQuad(cmd *DrawCommand, r AtlasRegion) Quad {
	sx, sy := cmd.ScaleX, cmd.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return Quad{
		Region: r,
		Dst: Rect{
			X:      cmd.X,
			Y:      cmd.Y,
			Width:  float64(r.Width) * sx,
			Height: float64(r.Height) * sy,
		},
		Color: cmd.Color.orWhite(),
	}
}

// CountBatches counts contiguous groups of commands sharing a batch key.
// This reports how many texture binds the commands need in their current
// order, before Build sorts them.
func CountBatches(commands []DrawCommand) int {
	if len(commands) == 0 {
		return 0
	}
	count := 1
	prev := commandBatchKey(&commands[0])
	for i := 1; i < len(commands); i++ {
		cur := commandBatchKey(&commands[i])
		if cur != prev {
			count++
			prev = cur
		}
	}
	return count
}
