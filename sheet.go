package atlaskit

import (
	"encoding/json"
	"fmt"
	"image"
	"maps"
	"slices"
)

// LoadSheet builds atlases from TexturePacker JSON and the already-decoded
// page images it describes. Supports both the hash format (single "frames"
// object, one page) and the array format ("textures" array with per-page
// frame lists).
//
// Each page becomes one atlas created with NewTextureAtlasFromImage; its
// frames are added as slice entries in sorted name order, so entry indices
// are stable across loads. Page i gets Index cfg.Index+i, and is named
// "<cfg.Name>-<i>" when the sheet has more than one page. Rotated frames are
// described by their stored (rotated) rectangle.
func LoadSheet(cfg AtlasConfig, jsonData []byte, pages []image.Image) ([]*TextureAtlas, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("atlaskit: parse sheet JSON: %w", err)
	}

	var framesPerPage []map[string]jsonFrame
	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("atlaskit: parse sheet textures array: %w", err)
		}
		for _, tex := range textures {
			framesPerPage = append(framesPerPage, tex.Frames)
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("atlaskit: parse sheet frames: %w", err)
		}
		framesPerPage = append(framesPerPage, frames)
	default:
		return nil, fmt.Errorf("atlaskit: sheet JSON has neither \"frames\" nor \"textures\" key")
	}

	if len(pages) < len(framesPerPage) {
		return nil, fmt.Errorf("atlaskit: sheet describes %d pages, got %d images", len(framesPerPage), len(pages))
	}

	atlases := make([]*TextureAtlas, 0, len(framesPerPage))
	for i, frames := range framesPerPage {
		pageCfg := cfg
		pageCfg.Index = cfg.Index + i
		if len(framesPerPage) > 1 {
			pageCfg.Name = fmt.Sprintf("%s-%d", cfg.Name, i)
		}
		a, err := NewTextureAtlasFromImage(pageCfg, pages[i])
		if err != nil {
			return nil, fmt.Errorf("atlaskit: sheet page %d: %w", i, err)
		}
		for _, name := range slices.Sorted(maps.Keys(frames)) {
			x, y, w, h := frames[name].storedRect()
			if _, err := a.AddSliceEntry(name, x, y, w, h); err != nil {
				return nil, fmt.Errorf("atlaskit: sheet page %d: %w", i, err)
			}
		}
		atlases = append(atlases, a)
	}
	return atlases, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// storedRect returns the rectangle the frame occupies on the page. Rotated
// frames are stored 90 degrees clockwise, so width and height swap.
func (f jsonFrame) storedRect() (x, y, w, h int) {
	if f.Rotated {
		return f.Frame.X, f.Frame.Y, f.Frame.H, f.Frame.W
	}
	return f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H
}
