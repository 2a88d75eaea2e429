package atlaskit

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefaultLibraryConfig_Valid(t *testing.T) {
	cfg := DefaultLibraryConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Atlas.Width != 1024 || cfg.Atlas.Height != 1024 || cfg.MaxAtlases != DefaultMaxAtlases {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLibraryConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := LibraryConfig{Atlas: AtlasConfig{Width: 64, Height: 64}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxAtlases != DefaultMaxAtlases {
		t.Errorf("MaxAtlases = %d, want %d", cfg.MaxAtlases, DefaultMaxAtlases)
	}
	if cfg.Atlas.Name != "atlas" {
		t.Errorf("Atlas.Name = %q, want atlas", cfg.Atlas.Name)
	}
}

func TestAtlasConfigError_Message(t *testing.T) {
	cfg := AtlasConfig{Width: 4, Height: MaxAtlasSize + 1}
	err := cfg.Validate()
	var cfgErr *AtlasConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *AtlasConfigError", err)
	}
	if got := err.Error(); got != "atlaskit: invalid atlas config.Height: must be at most 16384" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSaveLoadLibraryConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlaskit.json")
	want := LibraryConfig{
		Atlas:      AtlasConfig{Name: "sprites", Width: 512, Height: 256, Mipmaps: true},
		MaxAtlases: 3,
		Backends:   []string{"webgpu", "opengl"},
	}
	if err := SaveLibraryConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadLibraryConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Atlas != want.Atlas || got.MaxAtlases != want.MaxAtlases || !slices.Equal(got.Backends, want.Backends) {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}

func TestLoadLibraryConfig_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"max_atlases": 2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadLibraryConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxAtlases != 2 || cfg.Atlas.Width != 1024 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadLibraryConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "nope.json"), "read config"},
		{"bad JSON", write("bad.json", `{`), "parse config"},
		{"invalid size", write("size.json", `{"atlas": {"width": 0, "height": 8}}`), "Width"},
		{"negative max", write("max.json", `{"max_atlases": -1}`), "MaxAtlases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLibraryConfig(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
