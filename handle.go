package atlaskit

import (
	"fmt"
	"math"
	"sync"
)

// InvalidHandleID is the ID of a handle that addresses nothing.
const InvalidHandleID = math.MaxUint32

// InvalidHandle is the zero-information handle. Resolve always misses it.
var InvalidHandle = SpriteHandle{ID: InvalidHandleID}

// SpriteHandle is an opaque, comparable reference to one entry of one atlas.
// It holds no pointer: resolving it needs the caller's current atlas list,
// and it never pins atlas memory.
//
// ID and Generation belong to the issuer's slot-recycling scheme (see
// HandleIssuer); Resolve only checks that ID is not InvalidHandleID.
type SpriteHandle struct {
	ID         uint32
	Generation uint32
	AtlasIndex uint32
	LocalIndex uint32
}

// Valid reports whether the handle's ID is not the sentinel.
func (h SpriteHandle) Valid() bool {
	return h.ID != InvalidHandleID
}

func (h SpriteHandle) String() string {
	if !h.Valid() {
		return "SpriteHandle(invalid)"
	}
	return fmt.Sprintf("SpriteHandle(%d:%d atlas=%d entry=%d)", h.ID, h.Generation, h.AtlasIndex, h.LocalIndex)
}

// Resolve looks a handle up in an ordered atlas list. It reports ok == false
// for an invalid handle, an AtlasIndex past the list, a nil atlas slot, or a
// LocalIndex past the atlas entries. A miss means "nothing to draw": atlases
// may be hot-swapped or partially loaded between frames.
func Resolve(h SpriteHandle, atlases []*TextureAtlas) (*TextureAtlas, AtlasEntry, bool) {
	if !h.Valid() {
		return nil, AtlasEntry{}, false
	}
	if uint64(h.AtlasIndex) >= uint64(len(atlases)) {
		return nil, AtlasEntry{}, false
	}
	a := atlases[h.AtlasIndex]
	if a == nil {
		return nil, AtlasEntry{}, false
	}
	if uint64(h.LocalIndex) >= uint64(len(a.entries)) {
		return nil, AtlasEntry{}, false
	}
	return a, a.entries[h.LocalIndex], true
}

// ResolveRegion is Resolve reduced to the entry's region.
func ResolveRegion(h SpriteHandle, atlases []*TextureAtlas) (AtlasRegion, bool) {
	_, e, ok := Resolve(h, atlases)
	return e.Region, ok
}

// HandleIssuer hands out sprite handles with recyclable liveness slots.
// Releasing a handle bumps its slot generation, so stale copies held
// elsewhere stop being Live. Safe for concurrent use.
type HandleIssuer struct {
	mu          sync.Mutex
	generations []uint32
	free        []uint32
	alive       int
}

// NewHandleIssuer constructs an empty issuer.
func NewHandleIssuer() *HandleIssuer {
	return &HandleIssuer{}
}

// Issue returns a live handle for the given atlas and entry, recycling a
// released slot when one is available.
func (r *HandleIssuer) Issue(atlasIndex, localIndex uint32) SpriteHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id uint32
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = uint32(len(r.generations))
		r.generations = append(r.generations, 0)
	}

	r.generations[id]++
	r.alive++
	return SpriteHandle{
		ID:         id,
		Generation: r.generations[id],
		AtlasIndex: atlasIndex,
		LocalIndex: localIndex,
	}
}

// IssueFor issues a live handle for the named entry of atlas.
func (r *HandleIssuer) IssueFor(atlas *TextureAtlas, name string) (SpriteHandle, bool) {
	if atlas == nil {
		return InvalidHandle, false
	}
	i, ok := atlas.EntryIndex(name)
	if !ok {
		return InvalidHandle, false
	}
	return r.Issue(uint32(atlas.Index()), uint32(i)), true
}

// Release frees the handle's slot. Returns false if it was not live.
func (r *HandleIssuer) Release(h SpriteHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.liveLocked(h) {
		return false
	}
	r.alive--
	r.generations[h.ID]++
	r.free = append(r.free, h.ID)
	return true
}

// Live reports whether the handle's slot still carries its generation.
func (r *HandleIssuer) Live(h SpriteHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked(h)
}

// Count returns the number of live handles.
func (r *HandleIssuer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alive
}

func (r *HandleIssuer) liveLocked(h SpriteHandle) bool {
	if !h.Valid() || int(h.ID) >= len(r.generations) {
		return false
	}
	return r.generations[h.ID] == h.Generation
}
