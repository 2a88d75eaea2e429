package atlaskit

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// MaxAtlasSize is the largest accepted atlas dimension in pixels.
const MaxAtlasSize = 16384

// AtlasConfig holds the creation parameters of one TextureAtlas.
type AtlasConfig struct {
	// Name labels the atlas in logs and debug dumps.
	Name string `json:"name"`

	// Width and Height are the canvas dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Mipmaps asks backends to generate a mip chain on upload.
	Mipmaps bool `json:"mipmaps"`

	// Index is the atlas position among its siblings. Library overwrites it.
	Index int `json:"index,omitempty"`
}

// DefaultAtlasConfig returns a 1024×1024 atlas without mipmaps.
func DefaultAtlasConfig() AtlasConfig {
	return AtlasConfig{
		Name:   "atlas",
		Width:  1024,
		Height: 1024,
	}
}

// Validate checks if the configuration is valid.
func (c *AtlasConfig) Validate() error {
	if c.Width < 1 {
		return &AtlasConfigError{Field: "Width", Reason: "must be at least 1"}
	}
	if c.Width > MaxAtlasSize {
		return &AtlasConfigError{Field: "Width", Reason: fmt.Sprintf("must be at most %d", MaxAtlasSize)}
	}
	if c.Height < 1 {
		return &AtlasConfigError{Field: "Height", Reason: "must be at least 1"}
	}
	if c.Height > MaxAtlasSize {
		return &AtlasConfigError{Field: "Height", Reason: fmt.Sprintf("must be at most %d", MaxAtlasSize)}
	}
	if c.Index < 0 || c.Index >= math.MaxUint32 {
		return &AtlasConfigError{Field: "Index", Reason: "out of range"}
	}
	return nil
}

// LibraryConfig configures a Library and the backend selection of the
// composition root that owns it.
type LibraryConfig struct {
	// Atlas is the template for atlases the Library creates on overflow.
	Atlas AtlasConfig `json:"atlas"`

	// MaxAtlases limits how many atlases Library.Add may create. 0 = default.
	MaxAtlases int `json:"max_atlases"`

	// Backends lists backend names in selection priority order.
	Backends []string `json:"backends,omitempty"`
}

// DefaultMaxAtlases is the overflow limit applied when MaxAtlases is zero.
const DefaultMaxAtlases = 8

// DefaultLibraryConfig returns a configuration with DefaultAtlasConfig pages.
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		Atlas:      DefaultAtlasConfig(),
		MaxAtlases: DefaultMaxAtlases,
	}
}

// Validate checks the configuration and fills in defaults.
func (c *LibraryConfig) Validate() error {
	if c.MaxAtlases == 0 {
		c.MaxAtlases = DefaultMaxAtlases
	}
	if c.MaxAtlases < 0 {
		return &AtlasConfigError{Field: "MaxAtlases", Reason: "must be non-negative"}
	}
	if c.Atlas.Name == "" {
		c.Atlas.Name = "atlas"
	}
	return c.Atlas.Validate()
}

// LoadLibraryConfig reads and validates a JSON library configuration.
func LoadLibraryConfig(path string) (LibraryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LibraryConfig{}, fmt.Errorf("atlaskit: read config %s: %w", path, err)
	}

	cfg := DefaultLibraryConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return LibraryConfig{}, fmt.Errorf("atlaskit: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return LibraryConfig{}, err
	}
	return cfg, nil
}

// SaveLibraryConfig writes the configuration as indented JSON.
func SaveLibraryConfig(path string, cfg LibraryConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("atlaskit: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("atlaskit: write config %s: %w", path, err)
	}
	return nil
}
