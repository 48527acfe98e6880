package capture_test

import (
	"errors"
	"testing"

	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector2"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/internal/capture"
	"godot.plugin/gast/protocol/gast"
)

// surface is a 2x2 rectangle positioned at offset, facing +Z.
type surface struct {
	id         gast.SurfaceID
	body       capture.Body
	offset     Vector3.XYZ
	collidable bool
	projection capture.Projection
}

func newSurface(body capture.Body, offset Vector3.XYZ) *surface {
	return &surface{
		id:         gast.NewSurfaceID(),
		body:       body,
		offset:     offset,
		collidable: true,
		projection: capture.Rectangle{Size: Vector2.New(2, 2)},
	}
}

func (s *surface) ID() gast.SurfaceID                    { return s.id }
func (s *surface) Body() capture.Body                    { return s.body }
func (s *surface) Collidable() bool                      { return s.collidable }
func (s *surface) ToLocal(world Vector3.XYZ) Vector3.XYZ { return Vector3.Sub(world, s.offset) }
func (s *surface) Projection() capture.Projection        { return s.projection }

type ray struct {
	id       capture.RayID
	name     string
	disabled bool
	hit      *capture.Hit
	from, to Vector3.XYZ
	captured bool
}

func (r *ray) ID() capture.RayID { return r.id }
func (r *ray) Name() string      { return r.name }
func (r *ray) Enabled() bool     { return !r.disabled }
func (r *ray) Colliding() (capture.Hit, bool) {
	if r.hit == nil {
		return capture.Hit{}, false
	}
	return *r.hit, true
}
func (r *ray) Segment() (from, to Vector3.XYZ) { return r.from, r.to }
func (r *ray) Captured() bool                  { return r.captured }
func (r *ray) SetCaptured(captured bool)       { r.captured = captured }

// aim points the ray straight down -Z through (x, y), colliding with body at z=0.
func (r *ray) aim(body capture.Body, x, y Float.X) {
	r.from = Vector3.New(x, y, 1)
	r.to = Vector3.New(x, y, -1)
	r.hit = &capture.Hit{Body: body, Point: Vector3.New(x, y, 0), Normal: Vector3.New(0, 0, 1)}
}

// slip moves the ray to (x, y) without any live collision.
func (r *ray) slip(x, y Float.X) {
	r.from = Vector3.New(x, y, 1)
	r.to = Vector3.New(x, y, -1)
	r.hit = nil
}

// actions is an action table where pressed actions have a strength.
type actions struct {
	strength map[string]Float.X
	just     map[string]bool // true for just pressed, false for just released.
}

func newActions() *actions {
	return &actions{strength: make(map[string]Float.X), just: make(map[string]bool)}
}

func (a *actions) IsActionPressed(name string) bool {
	_, ok := a.strength[name]
	return ok
}
func (a *actions) IsActionJustPressed(name string) bool {
	just, ok := a.just[name]
	return ok && just
}
func (a *actions) IsActionJustReleased(name string) bool {
	just, ok := a.just[name]
	return ok && !just
}
func (a *actions) GetActionStrength(name string) Float.X { return a.strength[name] }

// frame clears the edges from the previous frame.
func (a *actions) frame() { clear(a.just) }

func (a *actions) press(name string, strength Float.X) {
	a.strength[name] = strength
	a.just[name] = true
}

func (a *actions) release(name string) {
	delete(a.strength, name)
	a.just[name] = false
}

type reporter []error

func (r *reporter) ReportError(err error) { *r = append(*r, err) }

const tolerance = 1e-4

func near(a, b Float.X) bool { return Float.Abs(a-b) < tolerance }

type want struct {
	kind   gast.Kind
	origin string
	x, y   Float.X
	dx, dy Float.X
}

func expect(t *testing.T, got []gast.Event, wants ...want) {
	t.Helper()
	if len(got) != len(wants) {
		t.Fatalf("got %d events %v, want %d", len(got), got, len(wants))
	}
	for i, w := range wants {
		ev := got[i]
		if ev.Kind != w.kind || ev.Origin != w.origin || !near(ev.X, w.x) || !near(ev.Y, w.y) || !near(ev.DeltaX, w.dx) || !near(ev.DeltaY, w.dy) {
			t.Errorf("event %d: got %v, want %v(%v, %v, %v, %v, %v)", i, ev, w.kind, w.origin, w.x, w.y, w.dx, w.dy)
		}
	}
}

func TestActionsFor(t *testing.T) {
	names := capture.ActionsFor("/root/Main/RightHand/RayCast")
	if names.Click != "_root_Main_RightHand_RayCast_click" {
		t.Errorf("click = %q", names.Click)
	}
	if names.LeftScroll != "_root_Main_RightHand_RayCast_left_scroll" {
		t.Errorf("left = %q", names.LeftScroll)
	}
	if names.RightScroll != "_root_Main_RightHand_RayCast_right_scroll" {
		t.Errorf("right = %q", names.RightScroll)
	}
	if names.UpScroll != "_root_Main_RightHand_RayCast_up_scroll" {
		t.Errorf("up = %q", names.UpScroll)
	}
	if names.DownScroll != "_root_Main_RightHand_RayCast_down_scroll" {
		t.Errorf("down = %q", names.DownScroll)
	}
}

func TestRectangleRelative(t *testing.T) {
	rect := capture.Rectangle{Size: Vector2.New(4, 2)}
	tests := []struct {
		name  string
		local Vector3.XYZ
		want  Vector2.XY
	}{
		{"center", Vector3.New(0, 0, 0), Vector2.New(0.5, 0.5)},
		{"top left", Vector3.New(-2, 1, 0), Vector2.New(0, 0)},
		{"bottom right", Vector3.New(2, -1, 0), Vector2.New(1, 1)},
		{"depth ignored", Vector3.New(1, 0.5, 0.3), Vector2.New(0.75, 0.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rect.Relative(tt.local)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("Relative(%v) = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
	if got := (capture.Rectangle{}).Relative(Vector3.XYZ{}); got != gast.InvalidCoordinate {
		t.Errorf("empty rectangle = %v, want invalid", got)
	}
	if got := (capture.Equirectangle{}).Relative(Vector3.XYZ{}); got != gast.InvalidCoordinate {
		t.Errorf("equirectangle = %v, want invalid", got)
	}
	if gast.Valid(gast.InvalidCoordinate) {
		t.Error("invalid coordinate is valid")
	}
}

func TestIntersectRay(t *testing.T) {
	point, normal := Vector3.New(0, 0, 0), Vector3.New(0, 0, 2)
	tests := []struct {
		name      string
		from, dir Vector3.XYZ
		want      Vector3.XYZ
		ok        bool
	}{
		{"straight", Vector3.New(0.5, 0.5, 1), Vector3.New(0, 0, -2), Vector3.New(0.5, 0.5, 0), true},
		{"from behind", Vector3.New(0.5, 0.5, -1), Vector3.New(0, 0, 1), Vector3.New(0.5, 0.5, 0), true},
		{"angled", Vector3.New(0, 0, 1), Vector3.New(1, 0, -1), Vector3.New(1, 0, 0), true},
		{"parallel", Vector3.New(0, 0, 1), Vector3.New(1, 0, 0), Vector3.XYZ{}, false},
		{"away", Vector3.New(0, 0, 1), Vector3.New(0, 0, 1), Vector3.XYZ{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := capture.IntersectRay(point, normal, tt.from, tt.dir)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && Vector3.Distance(got, tt.want) > tolerance {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if _, ok := capture.IntersectRay(point, Vector3.XYZ{}, Vector3.New(0, 0, 1), Vector3.New(0, 0, -1)); ok {
		t.Error("degenerate plane intersected")
	}
}

func TestClassify(t *testing.T) {
	names := capture.ActionsFor("R1")
	in := gast.Input{Origin: "R1", X: 0.2, Y: 0.2}

	t.Run("press", func(t *testing.T) {
		var rec gast.Recorder
		input := newActions()
		input.press(names.Click, 1)
		if !capture.Classify(in, names, input, &rec) {
			t.Error("not pressing")
		}
		expect(t, rec.Events(), want{kind: gast.Press, origin: "R1", x: 0.2, y: 0.2})
	})
	t.Run("held", func(t *testing.T) {
		var rec gast.Recorder
		input := newActions()
		input.press(names.Click, 1)
		input.frame()
		if !capture.Classify(in, names, input, &rec) {
			t.Error("not pressing")
		}
		expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: 0.2, y: 0.2})
	})
	t.Run("release", func(t *testing.T) {
		var rec gast.Recorder
		input := newActions()
		input.release(names.Click)
		if capture.Classify(in, names, input, &rec) {
			t.Error("pressing")
		}
		expect(t, rec.Events(), want{kind: gast.Release, origin: "R1", x: 0.2, y: 0.2})
	})
	t.Run("scroll while hovering", func(t *testing.T) {
		var rec gast.Recorder
		input := newActions()
		input.press(names.RightScroll, 0.3)
		capture.Classify(in, names, input, &rec)
		expect(t, rec.Events(),
			want{kind: gast.Hover, origin: "R1", x: 0.2, y: 0.2},
			want{kind: gast.Wheel, origin: "R1", x: 0.2, y: 0.2, dx: 0.3},
		)
	})
	t.Run("scroll precedence", func(t *testing.T) {
		var rec gast.Recorder
		input := newActions()
		input.press(names.LeftScroll, 0.5)
		input.press(names.RightScroll, 0.9)
		input.press(names.DownScroll, 0.25)
		input.press(names.UpScroll, 1)
		capture.Classify(in, names, input, &rec)
		expect(t, rec.Events(),
			want{kind: gast.Hover, origin: "R1", x: 0.2, y: 0.2},
			want{kind: gast.Wheel, origin: "R1", x: 0.2, y: 0.2, dx: -0.5, dy: -0.25},
		)
	})
}

func TestPressSurvivesSlippingOff(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	click := capture.ActionsFor("R1").Click

	r1.aim(1, 0, 0)
	input.press(click, 1)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(), want{kind: gast.Press, origin: "R1", x: 0.5, y: 0.5})

	input.frame()
	r1.slip(0.04, 0)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: 0.52, y: 0.5})
	if !r1.captured {
		t.Fatal("ray released while pressing")
	}

	input.frame()
	input.release(click)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(), want{kind: gast.Release, origin: "R1", x: 0.52, y: 0.5})
	if r1.captured || len(tracker.Captured()) != 0 {
		t.Fatal("capture not cleared after release")
	}

	input.frame()
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events())
}

func TestHoverContinuity(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(7, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	for _, x := range []Float.X{-0.5, 0, 0.5} {
		r1.aim(7, x, 0.5)
		tracker.Track([]capture.Ray{r1}, input)
		expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: (x + 1) / 2, y: 0.25})
	}
	record, ok := tracker.Record(1)
	if !ok || record.Pressing || Vector3.Distance(record.Point, Vector3.New(0.5, 0.5, 0)) > tolerance {
		t.Fatalf("record = %+v, %v", record, ok)
	}

	r1.slip(5, 5)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: -1, y: -1})
	if _, ok := tracker.Record(1); ok || r1.captured {
		t.Fatal("record kept after hover exit")
	}

	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events())
}

func TestPressIsEdgeTriggered(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	click := capture.ActionsFor("R1").Click

	r1.aim(1, 0, 0)
	input.press(click, 1)
	tracker.Track([]capture.Ray{r1}, input)
	for range 3 {
		input.frame()
		tracker.Track([]capture.Ray{r1}, input)
	}
	expect(t, rec.Events(),
		want{kind: gast.Press, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Hover, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Hover, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Hover, origin: "R1", x: 0.5, y: 0.5},
	)

	input.frame()
	input.release(click)
	tracker.Track([]capture.Ray{r1}, input)
	input.frame()
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(),
		want{kind: gast.Release, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Hover, origin: "R1", x: 0.5, y: 0.5},
	)
	if !r1.captured {
		t.Fatal("ray on the surface is not captured")
	}
}

func TestReleaseWhenPlaneIsMissed(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}

	r1.aim(1, 0.5, -0.5)
	input.press(capture.ActionsFor("R1").Click, 1)
	tracker.Track([]capture.Ray{r1}, input)
	input.frame()

	// pointing away from the plane.
	r1.hit = nil
	r1.from, r1.to = Vector3.New(0, 0, 1), Vector3.New(0, 0, 2)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(),
		want{kind: gast.Press, origin: "R1", x: 0.75, y: 0.75},
		want{kind: gast.Release, origin: "R1", x: 0.75, y: 0.75},
	)
	if len(tracker.Captured()) != 0 || r1.captured {
		t.Fatal("capture kept after the plane was missed")
	}
}

func TestReleaseWhenAnotherBodyIsHit(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}

	r1.aim(1, 0, 0)
	input.press(capture.ActionsFor("R1").Click, 1)
	tracker.Track([]capture.Ray{r1}, input)
	input.frame()

	r1.aim(2, 0.2, 0)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(),
		want{kind: gast.Press, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Release, origin: "R1", x: 0.5, y: 0.5},
	)
}

func TestExclusiveCapture(t *testing.T) {
	var rec gast.Recorder
	s1 := newSurface(1, Vector3.XYZ{})
	s2 := newSurface(2, Vector3.New(10, 0, 0))
	t1 := capture.New(s1, &rec, nil)
	t2 := capture.New(s2, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	rays := []capture.Ray{r1}

	r1.aim(1, 0, 0)
	t1.Track(rays, input)
	t2.Track(rays, input)
	expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: 0.5, y: 0.5})

	// s2 is evaluated first, while s1 still owns the ray.
	r1.aim(2, 10, 0)
	t2.Track(rays, input)
	t1.Track(rays, input)
	expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: -1, y: -1})
	if len(t2.Captured()) != 0 {
		t.Fatal("second surface captured a ray owned by the first")
	}

	t2.Track(rays, input)
	t1.Track(rays, input)
	events := rec.Events()
	expect(t, events, want{kind: gast.Hover, origin: "R1", x: 0.5, y: 0.5})
	if events[0].Surface != s2.ID() {
		t.Errorf("hover delivered to %v, want %v", events[0].Surface, s2.ID())
	}
	if len(t1.Captured()) != 0 || len(t2.Captured()) != 1 {
		t.Fatalf("captured by s1: %v, by s2: %v", t1.Captured(), t2.Captured())
	}
}

func TestIgnoredRays(t *testing.T) {
	var (
		rec    gast.Recorder
		errs   reporter
		input  = newActions()
		s      = newSurface(1, Vector3.XYZ{})
		orphan = &ray{id: 2, name: "R2"}
		off    = &ray{id: 3, name: "R3", disabled: true}
	)
	tracker := capture.New(s, &rec, &errs)
	orphan.aim(0, 0, 0)
	off.aim(1, 0, 0)
	tracker.Track([]capture.Ray{nil, orphan, off}, input)
	expect(t, rec.Events())
	if len(errs) != 2 {
		t.Fatalf("reported %v, want two errors", errs)
	}

	s.collidable = false
	on := &ray{id: 4, name: "R4"}
	on.aim(1, 0, 0)
	tracker.Track([]capture.Ray{on}, input)
	expect(t, rec.Events())
	if on.captured {
		t.Fatal("surface without collisions captured a ray")
	}
}

func TestUnmappableSurface(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	s.projection = capture.Equirectangle{}
	tracker := capture.New(s, &rec, nil)
	r1 := &ray{id: 1, name: "R1"}
	r1.aim(1, 0, 0)
	tracker.Track([]capture.Ray{r1}, newActions())
	expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: -1, y: -1})
	if !r1.captured {
		t.Fatal("ray not captured")
	}
}

func TestReleaseAll(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	r2 := &ray{id: 2, name: "R2"}
	r1.aim(1, 0, 0)
	r2.aim(1, 1, 1)
	input.press(capture.ActionsFor("R1").Click, 1)
	tracker.Track([]capture.Ray{r2, r1}, input)
	rec.Events()

	tracker.ReleaseAll()
	expect(t, rec.Events(),
		want{kind: gast.Release, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Hover, origin: "R2", x: -1, y: -1},
	)
	if r1.captured || r2.captured || len(tracker.Captured()) != 0 {
		t.Fatal("rays still captured")
	}
}

func TestBodyWithoutIdentity(t *testing.T) {
	var (
		rec  gast.Recorder
		errs reporter
	)
	tracker := capture.New(newSurface(1, Vector3.XYZ{}), &rec, &errs)
	r1 := &ray{id: 1, name: "R1"}
	r1.aim(1, 0, 0)
	tracker.Track([]capture.Ray{r1}, newActions())
	rec.Events()

	r1.aim(0, 0, 0)
	tracker.Track([]capture.Ray{r1}, newActions())
	if len(errs) != 1 || errs[0].Error() == "" {
		t.Fatalf("errors = %v", errs)
	}
	expect(t, rec.Events(), want{kind: gast.Hover, origin: "R1", x: -1, y: -1})
}

func TestPressEndsWithoutReleaseOffSurface(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	click := capture.ActionsFor("R1").Click

	r1.aim(1, 0, 0)
	input.press(click, 1)
	tracker.Track([]capture.Ray{r1}, input)
	rec.Events()

	// the click action stops being held without a release edge.
	input.frame()
	delete(input.strength, click)
	r1.slip(0.04, 0)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(),
		want{kind: gast.Hover, origin: "R1", x: 0.52, y: 0.5},
		want{kind: gast.Hover, origin: "R1", x: -1, y: -1},
	)
	if r1.captured || len(tracker.Captured()) != 0 {
		t.Fatal("capture kept after the press ended")
	}
}

func TestScrollWhileSlippedOff(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	names := capture.ActionsFor("R1")

	r1.aim(1, 0, 0)
	input.press(names.Click, 1)
	tracker.Track([]capture.Ray{r1}, input)
	rec.Events()

	input.frame()
	input.press(names.RightScroll, 0.3)
	r1.slip(0.04, 0)
	tracker.Track([]capture.Ray{r1}, input)
	expect(t, rec.Events(),
		want{kind: gast.Hover, origin: "R1", x: 0.52, y: 0.5},
		want{kind: gast.Wheel, origin: "R1", x: 0.52, y: 0.5, dx: 0.3},
	)
	if !r1.captured {
		t.Fatal("ray released while pressing")
	}
}

func TestVanishedRays(t *testing.T) {
	var rec gast.Recorder
	s := newSurface(1, Vector3.XYZ{})
	tracker := capture.New(s, &rec, nil)
	input := newActions()
	r1 := &ray{id: 1, name: "R1"}
	r2 := &ray{id: 2, name: "R2"}
	r1.aim(1, 0, 0)
	r2.aim(1, 0.5, 0.5)
	input.press(capture.ActionsFor("R1").Click, 1)
	tracker.Track([]capture.Ray{r1, r2}, input)
	rec.Events()
	input.frame()

	// R1 left the ray caster group, R2 was disabled.
	r2.disabled = true
	tracker.Track([]capture.Ray{r2}, input)
	expect(t, rec.Events(),
		want{kind: gast.Release, origin: "R1", x: 0.5, y: 0.5},
		want{kind: gast.Hover, origin: "R2", x: -1, y: -1},
	)
	if r1.captured || r2.captured || len(tracker.Captured()) != 0 {
		t.Fatal("vanished rays are still captured")
	}

	tracker.Track(nil, input)
	expect(t, rec.Events())
}

func TestRegistry(t *testing.T) {
	type node struct{ name string }
	var (
		registry capture.Registry[*node]
		id       = gast.NewSurfaceID()
		first    = &node{"first"}
		second   = &node{"second"}
	)
	if _, err := registry.Lookup(id.String()); !errors.Is(err, capture.ErrUnknownSurface) {
		t.Fatalf("empty registry: %v", err)
	}
	registry.Adopt(id, first)
	// moved to another parent.
	registry.Adopt(id, first)
	if got, err := registry.Lookup(id.String()); err != nil || got != first {
		t.Fatalf("Lookup = %v, %v", got, err)
	}
	if registry.Len() != 1 {
		t.Fatalf("len = %d", registry.Len())
	}

	registry.Adopt(id, second)
	registry.Forget(id, first)
	if got, err := registry.Lookup(id.String()); err != nil || got != second {
		t.Fatalf("stale forget removed the current surface: %v, %v", got, err)
	}
	registry.Forget(id, second)
	if _, err := registry.Lookup(id.String()); !errors.Is(err, capture.ErrUnknownSurface) {
		t.Fatalf("forgotten surface: %v", err)
	}
	if _, err := registry.Lookup("not a surface"); err == nil || errors.Is(err, capture.ErrUnknownSurface) {
		t.Fatalf("malformed id: %v", err)
	}
}
