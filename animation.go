package atlaskit

import (
	"slices"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FrameAnimation steps through a sequence of sprite handles. A gween tween
// drives the frame position from 0 to len(frames) over len(frames)/fps
// seconds, so easing functions shape the playback speed.
//
// There is no global animation manager: callers call Update themselves,
// typically once per game tick.
type FrameAnimation struct {
	frames  []SpriteHandle
	tween   *gween.Tween
	current int

	// Loop restarts playback after the last frame instead of finishing.
	Loop bool
	// Done is set once a non-looping animation shows its last frame.
	Done bool
}

// NewFrameAnimation creates an animation over frames at fps frames per
// second. A nil fn plays linearly. An empty frame list or non-positive fps
// yields an animation that is already Done.
func NewFrameAnimation(frames []SpriteHandle, fps float32, fn ease.TweenFunc) *FrameAnimation {
	a := &FrameAnimation{frames: frames}
	if len(frames) == 0 || fps <= 0 {
		a.Done = true
		return a
	}
	if fn == nil {
		fn = ease.Linear
	}
	duration := float32(len(frames)) / fps
	a.tween = gween.New(0, float32(len(frames)), duration, fn)
	return a
}

// Update advances the animation by dt seconds and returns the frame to draw.
func (a *FrameAnimation) Update(dt float32) SpriteHandle {
	if a.Done || a.tween == nil {
		return a.Frame()
	}

	val, finished := a.tween.Update(dt)
	a.current = min(max(int(val), 0), len(a.frames)-1)

	if finished {
		if a.Loop {
			a.tween.Reset()
			a.current = 0
		} else {
			a.current = len(a.frames) - 1
			a.Done = true
		}
	}
	return a.Frame()
}

// Frame returns the current frame, or InvalidHandle for an empty animation.
func (a *FrameAnimation) Frame() SpriteHandle {
	if len(a.frames) == 0 {
		return InvalidHandle
	}
	return a.frames[a.current]
}

// FrameIndex returns the position of the current frame.
func (a *FrameAnimation) FrameIndex() int {
	return a.current
}

// Len returns the number of frames.
func (a *FrameAnimation) Len() int {
	return len(a.frames)
}

// Reset rewinds to the first frame and clears Done.
func (a *FrameAnimation) Reset() {
	a.current = 0
	if a.tween != nil {
		a.tween.Reset()
		a.Done = false
	}
}

// FramesWithPrefix returns handles for every entry of atlas whose name
// starts with prefix, sorted by name. Use zero-padded frame numbers
// ("walk_01", "walk_02", ...) so name order is playback order.
func FramesWithPrefix(atlas *TextureAtlas, prefix string) []SpriteHandle {
	if atlas == nil {
		return nil
	}
	var names []string
	for i := range atlas.entries {
		if strings.HasPrefix(atlas.entries[i].Name, prefix) {
			names = append(names, atlas.entries[i].Name)
		}
	}
	slices.Sort(names)

	frames := make([]SpriteHandle, 0, len(names))
	for _, name := range names {
		h, _ := atlas.Handle(name)
		frames = append(frames, h)
	}
	return frames
}
