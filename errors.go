package atlaskit

import "errors"

// Insertion errors. Every failed insertion leaves the atlas unchanged.
var (
	// ErrDuplicateID is returned when an entry name is already used in the
	// same atlas. Names only need to be unique per atlas.
	ErrDuplicateID = errors.New("atlaskit: duplicate entry id")

	// ErrEmptyTexture is returned by AddEntry for a zero width, zero height,
	// or empty pixel buffer.
	ErrEmptyTexture = errors.New("atlaskit: empty texture")

	// ErrInvalidSize is returned for a pixel buffer shorter than w*h*4 bytes,
	// or a slice rectangle that is empty or lies outside the canvas.
	ErrInvalidSize = errors.New("atlaskit: invalid size")

	// ErrFull is returned when the packer cannot place the rectangle.
	ErrFull = errors.New("atlaskit: atlas is full")
)

// Resolution and backend errors.
var (
	// ErrUnresolvedHandle is returned by helpers that need a resolved
	// sprite. Resolve itself reports misses through its ok result.
	ErrUnresolvedHandle = errors.New("atlaskit: unresolved sprite handle")

	// ErrNilAtlas is returned when a nil atlas is passed to an upload path.
	ErrNilAtlas = errors.New("atlaskit: nil atlas")

	// ErrBackendExists is returned when registering a duplicate backend name.
	ErrBackendExists = errors.New("atlaskit: backend already registered")

	// ErrBackendNotFound is returned when a named backend is not registered.
	ErrBackendNotFound = errors.New("atlaskit: backend not registered")

	// ErrNoBackend is returned when no registered backend can be selected.
	ErrNoBackend = errors.New("atlaskit: no backend available")
)

// AtlasConfigError represents a configuration validation error.
type AtlasConfigError struct {
	Field  string
	Reason string
}

func (e *AtlasConfigError) Error() string {
	return "atlaskit: invalid atlas config." + e.Field + ": " + e.Reason
}
