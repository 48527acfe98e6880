// Package gast describes the input that GAST surfaces forward to an external renderer.
package gast

import (
	"context"

	"github.com/google/uuid"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector2"
	"runtime.link/api"
)

// API specification, implemented by an external renderer that wants to receive
// the input directed at the surfaces it renders.
type API struct {
	api.Specification `api:"GAST"
		forwards pointer and gaze input from 3D projection surfaces to the
		renderer that draws their content.`
	Press func(context.Context, Input) error `rest:"POST /gast/v1/press"
		is called once when a press starts on a surface.`
	Release func(context.Context, Input) error `rest:"POST /gast/v1/release"
		is called once when a press ends, or when a pressing ray leaves the surface.`
	Hover func(context.Context, Input) error `rest:"POST /gast/v1/hover"
		is called every frame a ray rests on a surface, with [InvalidCoordinate]
		when it leaves.`
	Scroll func(context.Context, Scroll) error `rest:"POST /gast/v1/scroll"
		is called every frame a scroll action is held.`
}

// SurfaceID uniquely identifies a projection surface for the lifetime of the
// process, regardless of where its node sits in the scene tree.
type SurfaceID uuid.UUID

// NewSurfaceID returns a fresh, random [SurfaceID].
func NewSurfaceID() SurfaceID { return SurfaceID(uuid.New()) }

// ParseSurfaceID parses the canonical string form of a [SurfaceID].
func ParseSurfaceID(s string) (SurfaceID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SurfaceID{}, err
	}
	return SurfaceID(id), nil
}

func (id SurfaceID) String() string { return uuid.UUID(id).String() }

func (id SurfaceID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SurfaceID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

// InvalidCoordinate marks an input without a meaningful position on the surface,
// for example when a ray stops hovering or the surface cannot be mapped to 2D.
var InvalidCoordinate = Vector2.XY{-1, -1}

// Valid reports whether the coordinate lies on the unit square.
func Valid(xy Vector2.XY) bool {
	return xy.X >= 0 && xy.X <= 1 && xy.Y >= 0 && xy.Y <= 1
}

// Input at a point on a surface.
type Input struct {
	Surface SurfaceID `json:"surface"
		that received the input.`
	Origin string `json:"origin"
		identifies the ray or touch that produced the input.`
	X Float.X `json:"x"
		from the left edge, in [0,1].`
	Y Float.X `json:"y"
		from the top edge, in [0,1].`
}

// Point returns the input coordinate as a vector.
func (in Input) Point() Vector2.XY { return Vector2.XY{in.X, in.Y} }

// Scroll input at a point on a surface.
type Scroll struct {
	Input

	DeltaX Float.X `json:"dx"
		is negative when scrolling left.`
	DeltaY Float.X `json:"dy"
		is negative when scrolling down.`
}

// Listener receives input for surfaces. Calls are notifications: they are made
// from the physics frame and must not block.
type Listener interface {
	OnPress(Input)
	OnRelease(Input)
	OnHover(Input)
	OnScroll(Scroll)
}

// Listeners fans every notification out to each listener in order.
type Listeners []Listener

func (ls Listeners) OnPress(in Input) {
	for _, l := range ls {
		l.OnPress(in)
	}
}

func (ls Listeners) OnRelease(in Input) {
	for _, l := range ls {
		l.OnRelease(in)
	}
}

func (ls Listeners) OnHover(in Input) {
	for _, l := range ls {
		l.OnHover(in)
	}
}

func (ls Listeners) OnScroll(in Scroll) {
	for _, l := range ls {
		l.OnScroll(in)
	}
}
