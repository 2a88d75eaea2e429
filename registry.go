package atlaskit

import (
	"errors"
	"fmt"
)

// Backend is one rendering backend as seen by the composition root.
// Implementations wrap an UploadCache with their own Uploader; drawing is
// backend-specific and lives on the concrete types.
type Backend interface {
	// Name returns the backend identifier (e.g. "software", "ebiten").
	Name() string

	// EnsureUploaded makes the backend's copy of atlas current. Safe to call
	// every frame: it does no GPU work when nothing changed.
	EnsureUploaded(atlas *TextureAtlas) error

	// Forget releases the backend's resource for a dropped atlas.
	Forget(atlas *TextureAtlas)

	// Invalidate marks every upload stale, e.g. after device loss.
	Invalidate()

	// Close releases all backend resources.
	Close()
}

// Registry holds the backends of one application. It is an ordinary value
// owned by the composition root; there is no package-level registry.
//
// Registry is not safe for concurrent mutation. Register backends during
// startup, then hand each backend to its own render loop.
type Registry struct {
	backends map[string]Backend
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend under its Name.
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return fmt.Errorf("atlaskit: register nil backend: %w", ErrNoBackend)
	}
	name := b.Name()
	if _, dup := r.backends[name]; dup {
		return fmt.Errorf("atlaskit: register %q: %w", name, ErrBackendExists)
	}
	r.backends[name] = b
	r.order = append(r.order, name)
	Logger().Info("atlaskit: backend registered", "backend", name)
	return nil
}

// Unregister removes and closes the named backend.
func (r *Registry) Unregister(name string) bool {
	b, ok := r.backends[name]
	if !ok {
		return false
	}
	b.Close()
	delete(r.backends, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the named backend.
func (r *Registry) Get(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("atlaskit: backend %q: %w", name, ErrBackendNotFound)
	}
	return b, nil
}

// Names returns backend names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.order)
}

// Default returns the first registered backend named in priority, falling
// back to the first registered backend.
func (r *Registry) Default(priority ...string) (Backend, error) {
	for _, name := range priority {
		if b, ok := r.backends[name]; ok {
			return b, nil
		}
	}
	if len(r.order) > 0 {
		return r.backends[r.order[0]], nil
	}
	return nil, ErrNoBackend
}

// EnsureUploaded brings atlas up to date in every backend. All backends are
// attempted; their failures are joined.
func (r *Registry) EnsureUploaded(atlas *TextureAtlas) error {
	var errs []error
	for _, name := range r.order {
		if err := r.backends[name].EnsureUploaded(atlas); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnsureAll uploads every non-nil atlas of the list to every backend.
func (r *Registry) EnsureAll(atlases []*TextureAtlas) error {
	var errs []error
	for _, a := range atlases {
		if a == nil {
			continue
		}
		if err := r.EnsureUploaded(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Forget releases every backend's resource for a dropped atlas.
func (r *Registry) Forget(atlas *TextureAtlas) {
	for _, name := range r.order {
		r.backends[name].Forget(atlas)
	}
}

// Invalidate marks every upload of every backend stale.
func (r *Registry) Invalidate() {
	for _, name := range r.order {
		r.backends[name].Invalidate()
	}
}

// Close closes every backend in reverse registration order and empties the
// registry.
func (r *Registry) Close() {
	for i := len(r.order) - 1; i >= 0; i-- {
		r.backends[r.order[i]].Close()
	}
	r.backends = make(map[string]Backend)
	r.order = nil
}
