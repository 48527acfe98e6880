package capture

import (
	"errors"
	"fmt"

	"runtime.link/api/xray"

	"godot.plugin/gast/protocol/gast"
)

// ErrUnknownSurface is returned when looking up a surface that is not registered.
var ErrUnknownSurface = errors.New("gast: unknown surface")

// Registry of surfaces by id. A surface is registered for as long as it
// exists: moving it within the scene tree does not affect its registration.
// The zero value is ready to use.
type Registry[T comparable] struct {
	surfaces map[gast.SurfaceID]T
}

// Adopt registers surface under id, replacing any other surface with that id.
func (r *Registry[T]) Adopt(id gast.SurfaceID, surface T) {
	if r.surfaces == nil {
		r.surfaces = make(map[gast.SurfaceID]T)
	}
	r.surfaces[id] = surface
}

// Forget removes surface, unless id has been adopted by another surface since.
func (r *Registry[T]) Forget(id gast.SurfaceID, surface T) {
	if current, ok := r.surfaces[id]; ok && current == surface {
		delete(r.surfaces, id)
	}
}

// Lookup the surface registered under the textual id.
func (r *Registry[T]) Lookup(id string) (T, error) {
	var zero T
	sid, err := gast.ParseSurfaceID(id)
	if err != nil {
		return zero, xray.New(err)
	}
	surface, ok := r.surfaces[sid]
	if !ok {
		return zero, xray.New(fmt.Errorf("%w %v", ErrUnknownSurface, sid))
	}
	return surface, nil
}

func (r *Registry[T]) Len() int { return len(r.surfaces) }
