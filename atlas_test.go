package atlaskit

import (
	"errors"
	"image"
	"image/color"
	"math"
	"slices"
	"testing"
)

// --- helpers ---

// solidPixels returns a w×h RGBA8 buffer filled with (v, v, v, 255).
func solidPixels(w, h int, v byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
	}
	return pix
}

func newTestAtlas(t testing.TB, w, h int) *TextureAtlas {
	t.Helper()
	a, err := NewTextureAtlas(AtlasConfig{Name: "test", Width: w, Height: h})
	if err != nil {
		t.Fatalf("NewTextureAtlas(%d, %d): %v", w, h, err)
	}
	return a
}

// pixelAt returns the RGBA bytes of canvas pixel (x, y).
func pixelAt(t *testing.T, a *TextureAtlas, x, y int) [4]byte {
	t.Helper()
	pix, ok := a.Pixels()
	if !ok {
		t.Fatal("canvas not materialized")
	}
	off := (y*a.Width() + x) * 4
	return [4]byte{pix[off], pix[off+1], pix[off+2], pix[off+3]}
}

// snapshot captures everything a failed mutation must leave untouched.
type snapshot struct {
	version  uint64
	entries  int
	lookup   map[string]int
	occupied []bool
	pixels   []byte
}

func takeSnapshot(a *TextureAtlas) snapshot {
	lookup := make(map[string]int, len(a.lookup))
	for k, v := range a.lookup {
		lookup[k] = v
	}
	return snapshot{
		version:  a.version,
		entries:  len(a.entries),
		lookup:   lookup,
		occupied: slices.Clone(a.packer.occupied),
		pixels:   slices.Clone(a.pixels),
	}
}

func assertUnchanged(t *testing.T, a *TextureAtlas, before snapshot) {
	t.Helper()
	after := takeSnapshot(a)
	if after.version != before.version {
		t.Errorf("version = %d, want %d", after.version, before.version)
	}
	if after.entries != before.entries {
		t.Errorf("entries = %d, want %d", after.entries, before.entries)
	}
	if len(after.lookup) != len(before.lookup) {
		t.Errorf("lookup size = %d, want %d", len(after.lookup), len(before.lookup))
	}
	for k, v := range before.lookup {
		if after.lookup[k] != v {
			t.Errorf("lookup[%q] = %d, want %d", k, after.lookup[k], v)
		}
	}
	if !slices.Equal(after.occupied, before.occupied) {
		t.Error("occupancy grid changed")
	}
	if !slices.Equal(after.pixels, before.pixels) {
		t.Error("canvas changed")
	}
}

// --- construction ---

func TestNewTextureAtlas_ZeroCanvas(t *testing.T) {
	a := newTestAtlas(t, 16, 8)
	pix, ok := a.Pixels()
	if !ok {
		t.Fatal("new atlas canvas should be materialized")
	}
	if len(pix) != 16*8*4 {
		t.Fatalf("len(pixels) = %d, want %d", len(pix), 16*8*4)
	}
	for i, b := range pix {
		if b != 0 {
			t.Fatalf("pixels[%d] = %d, want 0", i, b)
		}
	}
	if a.Version() != 0 {
		t.Errorf("Version = %d, want 0", a.Version())
	}
	if a.EntryCount() != 0 {
		t.Errorf("EntryCount = %d, want 0", a.EntryCount())
	}
}

func TestNewTextureAtlas_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   AtlasConfig
		field string
	}{
		{"zero width", AtlasConfig{Width: 0, Height: 4}, "Width"},
		{"zero height", AtlasConfig{Width: 4, Height: 0}, "Height"},
		{"too wide", AtlasConfig{Width: MaxAtlasSize + 1, Height: 4}, "Width"},
		{"negative index", AtlasConfig{Width: 4, Height: 4, Index: -1}, "Index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTextureAtlas(tt.cfg)
			var cfgErr *AtlasConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *AtlasConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestNewTextureAtlas_UniqueIDs(t *testing.T) {
	a := newTestAtlas(t, 4, 4)
	b := newTestAtlas(t, 4, 4)
	if a.ID() == 0 || b.ID() == 0 {
		t.Fatal("AtlasID 0 must never be issued")
	}
	if a.ID() == b.ID() {
		t.Errorf("two atlases share ID %d", a.ID())
	}
}

// --- AddEntry ---

func TestAddEntry_FillScenario(t *testing.T) {
	a := newTestAtlas(t, 256, 256)

	e, err := a.AddEntry("a", solidPixels(64, 64, 1), 64, 64)
	if err != nil {
		t.Fatalf("AddEntry(a): %v", err)
	}
	if e.Region.X != 0 || e.Region.Y != 0 || e.Region.Width != 64 || e.Region.Height != 64 {
		t.Errorf("region = %v, want (0,0 64x64)", e.Region)
	}
	if a.Version() != 1 {
		t.Errorf("Version = %d, want 1", a.Version())
	}

	if _, err := a.AddEntry("a", solidPixels(64, 64, 1), 64, 64); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate AddEntry err = %v, want ErrDuplicateID", err)
	}
	if a.Version() != 1 {
		t.Errorf("Version after duplicate = %d, want 1", a.Version())
	}

	// A 256×256 canvas holds exactly 16 tiles of 64×64.
	for i := 1; i < 16; i++ {
		if _, err := a.AddEntry(string(rune('a'+i)), solidPixels(64, 64, byte(i)), 64, 64); err != nil {
			t.Fatalf("AddEntry #%d: %v", i, err)
		}
	}
	if a.Version() != 16 {
		t.Errorf("Version after fill = %d, want 16", a.Version())
	}
	if a.Utilization() != 1 {
		t.Errorf("Utilization = %v, want 1", a.Utilization())
	}

	if _, err := a.AddEntry("overflow", solidPixels(64, 64, 0), 64, 64); !errors.Is(err, ErrFull) {
		t.Errorf("AddEntry on full atlas err = %v, want ErrFull", err)
	}
	if a.Version() != 16 {
		t.Errorf("Version after Full = %d, want 16", a.Version())
	}
}

func TestAddEntry_RowMajorPlacement(t *testing.T) {
	a := newTestAtlas(t, 256, 256)
	want := [][2]int{{0, 0}, {64, 0}, {128, 0}, {192, 0}, {0, 64}, {64, 64}}
	for i, w := range want {
		e, err := a.AddEntry(string(rune('a'+i)), solidPixels(64, 64, 9), 64, 64)
		if err != nil {
			t.Fatalf("AddEntry #%d: %v", i, err)
		}
		if e.Region.X != w[0] || e.Region.Y != w[1] {
			t.Errorf("entry %d at (%d,%d), want (%d,%d)", i, e.Region.X, e.Region.Y, w[0], w[1])
		}
		if e.Index != i {
			t.Errorf("entry %d Index = %d", i, e.Index)
		}
	}
}

func TestAddEntry_FailuresAreAtomic(t *testing.T) {
	a := newTestAtlas(t, 32, 32)
	if _, err := a.AddEntry("base", solidPixels(16, 16, 7), 16, 16); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		id     string
		pixels []byte
		w, h   int
		want   error
	}{
		{"zero width", "z", solidPixels(1, 1, 1), 0, 4, ErrEmptyTexture},
		{"zero height", "z", solidPixels(1, 1, 1), 4, 0, ErrEmptyTexture},
		{"empty buffer", "z", nil, 4, 4, ErrEmptyTexture},
		{"short buffer", "z", make([]byte, 4*4*4-1), 4, 4, ErrInvalidSize},
		{"duplicate", "base", solidPixels(4, 4, 1), 4, 4, ErrDuplicateID},
		{"too large", "big", solidPixels(33, 8, 1), 33, 8, ErrFull},
		{"no room", "wide", solidPixels(32, 32, 1), 32, 32, ErrFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := takeSnapshot(a)
			_, err := a.AddEntry(tt.id, tt.pixels, tt.w, tt.h)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			assertUnchanged(t, a, before)
		})
	}
}

func TestAddEntry_CopiesPixels(t *testing.T) {
	a := newTestAtlas(t, 8, 8)
	src := solidPixels(2, 2, 200)
	if _, err := a.AddEntry("px", src, 2, 2); err != nil {
		t.Fatal(err)
	}
	src[0] = 1 // caller buffer is not retained

	e, _ := a.Entry(0)
	if e.Pixels[0] != 200 {
		t.Errorf("entry pixel = %d, want 200", e.Pixels[0])
	}
	if got := pixelAt(t, a, 1, 1); got != [4]byte{200, 200, 200, 255} {
		t.Errorf("canvas (1,1) = %v", got)
	}
	if got := pixelAt(t, a, 2, 0); got != [4]byte{} {
		t.Errorf("canvas (2,0) = %v, want transparent", got)
	}
}

func TestAddEntry_ExtraBytesIgnored(t *testing.T) {
	a := newTestAtlas(t, 8, 8)
	pix := append(solidPixels(2, 2, 5), 1, 2, 3, 4)
	e, err := a.AddEntry("long", pix, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Pixels) != 2*2*4 {
		t.Errorf("len(entry.Pixels) = %d, want 16", len(e.Pixels))
	}
}

func TestAddEntry_UVs(t *testing.T) {
	a := newTestAtlas(t, 256, 128)
	if _, err := a.AddEntry("pad", solidPixels(32, 16, 1), 32, 16); err != nil {
		t.Fatal(err)
	}
	e, err := a.AddEntry("sprite", solidPixels(64, 32, 1), 64, 32)
	if err != nil {
		t.Fatal(err)
	}
	r := e.Region
	if r.X != 32 || r.Y != 0 {
		t.Fatalf("placed at (%d,%d), want (32,0)", r.X, r.Y)
	}

	const eps = 1e-6
	check := func(name string, got float32, want float64) {
		t.Helper()
		if math.Abs(float64(got)-want) > eps {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	check("U1", r.U1, 32.0/256)
	check("U2", r.U2, 96.0/256)
	check("V1", r.V1, 1-32.0/128)
	check("V2", r.V2, 1.0)
	if r.V2 <= r.V1 {
		t.Errorf("top edge V2 %v must be larger than V1 %v", r.V2, r.V1)
	}
}

func TestAddImage_ConvertsSubImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	sub := src.SubImage(image.Rect(2, 2, 5, 6))

	a := newTestAtlas(t, 16, 16)
	e, err := a.AddImage("red", sub)
	if err != nil {
		t.Fatal(err)
	}
	if e.TexWidth != 3 || e.TexHeight != 4 {
		t.Errorf("size = %dx%d, want 3x4", e.TexWidth, e.TexHeight)
	}
	if got := pixelAt(t, a, 0, 0); got != [4]byte{255, 0, 0, 255} {
		t.Errorf("canvas (0,0) = %v", got)
	}
}

func TestAddImage_Nil(t *testing.T) {
	a := newTestAtlas(t, 4, 4)
	if _, err := a.AddImage("nil", nil); !errors.Is(err, ErrEmptyTexture) {
		t.Errorf("err = %v, want ErrEmptyTexture", err)
	}
}

// --- AddSliceEntry ---

func TestAddSliceEntry(t *testing.T) {
	a := newTestAtlas(t, 64, 64)
	before := takeSnapshot(a)

	e, err := a.AddSliceEntry("slice", 8, 16, 24, 32)
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsSlice() {
		t.Error("slice entry should have nil pixels")
	}
	if e.Region.X != 8 || e.Region.Y != 16 || e.Region.Width != 24 || e.Region.Height != 32 {
		t.Errorf("region = %v", e.Region)
	}
	if a.Version() != 1 {
		t.Errorf("Version = %d, want 1", a.Version())
	}
	if !slices.Equal(a.packer.occupied, before.occupied) {
		t.Error("slice entries must not touch occupancy")
	}
	if !slices.Equal(a.pixels, before.pixels) {
		t.Error("slice entries must not touch the canvas")
	}
}

func TestAddSliceEntry_NoOverlapCheck(t *testing.T) {
	a := newTestAtlas(t, 64, 64)
	if _, err := a.AddEntry("packed", solidPixels(32, 32, 1), 32, 32); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddSliceEntry("over", 0, 0, 16, 16); err != nil {
		t.Errorf("overlapping slice should be accepted, got %v", err)
	}
	if _, err := a.AddSliceEntry("over2", 0, 0, 16, 16); err != nil {
		t.Errorf("slice overlapping a slice should be accepted, got %v", err)
	}
}

func TestAddSliceEntry_Errors(t *testing.T) {
	a := newTestAtlas(t, 64, 64)
	if _, err := a.AddSliceEntry("s", 0, 0, 8, 8); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		id         string
		x, y, w, h int
		want       error
	}{
		{"zero size", "z", 0, 0, 0, 8, ErrInvalidSize},
		{"negative x", "z", -1, 0, 8, 8, ErrInvalidSize},
		{"past right edge", "z", 60, 0, 8, 8, ErrInvalidSize},
		{"past bottom edge", "z", 0, 57, 8, 8, ErrInvalidSize},
		{"duplicate", "s", 8, 8, 8, 8, ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := takeSnapshot(a)
			if _, err := a.AddSliceEntry(tt.id, tt.x, tt.y, tt.w, tt.h); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			assertUnchanged(t, a, before)
		})
	}
}

// --- lookup ---

func TestLookup(t *testing.T) {
	a := newTestAtlas(t, 64, 64)
	if _, err := a.AddEntry("hero", solidPixels(8, 8, 1), 8, 8); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddSliceEntry("bg", 32, 32, 16, 16); err != nil {
		t.Fatal(err)
	}

	if i, ok := a.EntryIndex("bg"); !ok || i != 1 {
		t.Errorf("EntryIndex(bg) = %d, %v", i, ok)
	}
	if r, ok := a.Region("hero"); !ok || r.Width != 8 {
		t.Errorf("Region(hero) = %v, %v", r, ok)
	}
	if _, ok := a.Region("missing"); ok {
		t.Error("Region(missing) should miss")
	}
	h, ok := a.Handle("bg")
	if !ok || h.AtlasIndex != 0 || h.LocalIndex != 1 {
		t.Errorf("Handle(bg) = %v, %v", h, ok)
	}
	if h, ok := a.Handle("missing"); ok || h.Valid() {
		t.Errorf("Handle(missing) = %v, %v", h, ok)
	}
	if _, ok := a.Entry(2); ok {
		t.Error("Entry(2) should miss")
	}
	if _, ok := a.Entry(-1); ok {
		t.Error("Entry(-1) should miss")
	}
}

// --- canvas ---

func TestRebuildPixels_RestoresReleasedCanvas(t *testing.T) {
	a := newTestAtlas(t, 16, 16)
	if _, err := a.AddEntry("a", solidPixels(4, 4, 10), 4, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddEntry("b", solidPixels(4, 4, 20), 4, 4); err != nil {
		t.Fatal(err)
	}
	want := slices.Clone(a.pixels)
	v := a.Version()

	a.ReleasePixels()
	if a.CanvasValid() {
		t.Fatal("canvas should be released")
	}
	if pix, ok := a.Pixels(); ok || pix != nil {
		t.Fatal("Pixels() should report a released canvas")
	}
	if a.Version() != v {
		t.Errorf("ReleasePixels changed version to %d", a.Version())
	}

	a.RebuildPixels()
	if !slices.Equal(a.pixels, want) {
		t.Error("rebuilt canvas differs from the original")
	}
	if a.Version() != v+1 {
		t.Errorf("Version = %d, want %d", a.Version(), v+1)
	}
}

func TestRebuildPixels_BumpsVersionWhenUnchanged(t *testing.T) {
	a := newTestAtlas(t, 4, 4)
	a.RebuildPixels()
	a.RebuildPixels()
	if a.Version() != 2 {
		t.Errorf("Version = %d, want 2", a.Version())
	}
}

func TestAddEntry_WhileReleased(t *testing.T) {
	a := newTestAtlas(t, 16, 16)
	a.ReleasePixels()
	if _, err := a.AddEntry("late", solidPixels(4, 4, 99), 4, 4); err != nil {
		t.Fatal(err)
	}
	if a.CanvasValid() {
		t.Fatal("AddEntry must not materialize a released canvas")
	}
	a.RebuildPixels()
	if got := pixelAt(t, a, 3, 3); got != [4]byte{99, 99, 99, 255} {
		t.Errorf("canvas (3,3) = %v", got)
	}
}

func TestNewTextureAtlasFromImage_KeepsSheetOnRebuild(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 8, 4))
	sheet.SetRGBA(7, 3, color.RGBA{R: 1, G: 2, B: 3, A: 4})

	a, err := NewTextureAtlasFromImage(AtlasConfig{Name: "sheet"}, sheet)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width() != 8 || a.Height() != 4 {
		t.Fatalf("size = %dx%d, want 8x4", a.Width(), a.Height())
	}
	if _, err := a.AddSliceEntry("corner", 6, 2, 2, 2); err != nil {
		t.Fatal(err)
	}

	a.ReleasePixels()
	a.RebuildPixels()
	if got := pixelAt(t, a, 7, 3); got != [4]byte{1, 2, 3, 4} {
		t.Errorf("sheet pixel after rebuild = %v", got)
	}
}

func TestNewTextureAtlasFromImage_Nil(t *testing.T) {
	if _, err := NewTextureAtlasFromImage(AtlasConfig{Name: "x"}, nil); !errors.Is(err, ErrEmptyTexture) {
		t.Errorf("err = %v, want ErrEmptyTexture", err)
	}
}

func TestAddEntry_ReturnedPixelsAreIndependent(t *testing.T) {
	a := newTestAtlas(t, 16, 16)
	e, err := a.AddEntry("a", solidPixels(4, 4, 10), 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	clear(e.Pixels)

	a.RebuildPixels()
	if got := pixelAt(t, a, 0, 0); got != [4]byte{10, 10, 10, 255} {
		t.Errorf("canvas (0,0) after rebuild = %v", got)
	}
	stored, _ := a.Entry(0)
	if stored.Pixels[0] != 10 {
		t.Error("writing the returned entry reached the stored pixels")
	}
}
