package capture

import (
	"errors"
	"maps"
	"slices"

	"graphics.gd/variant/Vector2"
	"graphics.gd/variant/Vector3"
	"runtime.link/api/xray"

	"godot.plugin/gast/protocol/gast"
)

var (
	errNilRay     = errors.New("capture: nil ray source")
	errNoIdentity = errors.New("capture: ray collided with a body that has no identity")
)

// Tracker owns the rays captured by a single surface.
type Tracker struct {
	surface  Surface
	listener gast.Listener
	errors   ErrorReporter

	captured map[RayID]*Record
}

// New returns a tracker for the given surface, input is delivered to listener and
// problems are delivered to errors (which may be nil).
func New(surface Surface, listener gast.Listener, errors ErrorReporter) *Tracker {
	return &Tracker{
		surface:  surface,
		listener: listener,
		errors:   errors,
		captured: make(map[RayID]*Record),
	}
}

func (t *Tracker) report(err error) {
	if t.errors != nil {
		t.errors.ReportError(xray.New(err))
	}
}

// Track evaluates every ray against the surface, it must be called once per
// physics frame. Nothing happens while the surface is not collidable. Captured
// rays that are missing from rays, or disabled, are released.
func (t *Tracker) Track(rays []Ray, actions Actions) {
	if !t.surface.Collidable() {
		return
	}
	present := make(map[RayID]bool, len(t.captured))
	for _, ray := range rays {
		if ray == nil {
			t.report(errNilRay)
			continue
		}
		if !ray.Enabled() {
			continue
		}
		id := ray.ID()
		present[id] = true
		record, owned := t.captured[id]
		if ray.Captured() && !owned {
			continue // another surface has it.
		}
		point, normal, live, colliding := t.collide(ray, record)
		if colliding {
			if !owned {
				record = new(Record)
				t.captured[id] = record
			}
			if name := ray.Name(); record.name != name || record.names == (Names{}) {
				record.name = name
				record.names = ActionsFor(name)
			}
			record.ray = ray
			record.Pressing = Classify(t.input(ray, Relative(t.surface, point)), record.names, actions, t.listener)
			record.Point = point
			record.Normal = normal
			ray.SetCaptured(true)
			if !live && !record.Pressing {
				// the press that kept this ray attached to the plane is over.
				if actions.IsActionJustReleased(record.names.Click) {
					t.forget(id, record)
				} else {
					t.release(id, record)
				}
			}
			continue
		}
		if owned {
			t.release(id, record)
		}
	}
	for _, id := range t.Captured() {
		if !present[id] {
			t.release(id, t.captured[id])
		}
	}
}

// collide returns where the ray meets the surface this frame. A pressing ray
// that has slipped off the surface keeps colliding with the plane it last hit,
// live is false for such a synthesized collision.
func (t *Tracker) collide(ray Ray, record *Record) (point, normal Vector3.XYZ, live, ok bool) {
	if hit, colliding := ray.Colliding(); colliding {
		if hit.Body == 0 {
			t.report(errNoIdentity)
			return Vector3.XYZ{}, Vector3.XYZ{}, false, false
		}
		if hit.Body != t.surface.Body() {
			return Vector3.XYZ{}, Vector3.XYZ{}, false, false
		}
		return hit.Point, hit.Normal, true, true
	}
	if record != nil && record.Pressing {
		from, to := ray.Segment()
		point, ok = IntersectRay(record.Point, record.Normal, from, Vector3.Sub(to, from))
		return point, record.Normal, false, ok
	}
	return Vector3.XYZ{}, Vector3.XYZ{}, false, false
}

func (t *Tracker) input(ray Ray, at Vector2.XY) gast.Input {
	return t.inputFrom(ray.Name(), at)
}

func (t *Tracker) inputFrom(origin string, at Vector2.XY) gast.Input {
	return gast.Input{
		Surface: t.surface.ID(),
		Origin:  origin,
		X:       at.X,
		Y:       at.Y,
	}
}

// release fires the final event for a captured ray and forgets it: a release at
// the last known point when a press was in progress, otherwise a hover exit.
// The ray may no longer exist, so it is named by the record.
func (t *Tracker) release(id RayID, record *Record) {
	if record.Pressing {
		t.listener.OnRelease(t.inputFrom(record.name, Relative(t.surface, record.Point)))
	} else {
		t.listener.OnHover(t.inputFrom(record.name, gast.InvalidCoordinate))
	}
	t.forget(id, record)
}

func (t *Tracker) forget(id RayID, record *Record) {
	delete(t.captured, id)
	record.ray.SetCaptured(false)
}

// ReleaseAll releases every captured ray, as if each had left the surface.
func (t *Tracker) ReleaseAll() {
	for _, id := range t.Captured() {
		t.release(id, t.captured[id])
	}
}

// Captured returns the handles of the rays captured by the surface, in order.
func (t *Tracker) Captured() []RayID {
	return slices.Sorted(maps.Keys(t.captured))
}

// Record returns the collision record for a captured ray.
func (t *Tracker) Record(id RayID) (Record, bool) {
	record, ok := t.captured[id]
	if !ok {
		return Record{}, false
	}
	return *record, true
}
