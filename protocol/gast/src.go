package gast

import (
	"context"
	"fmt"
	"sync"
)

// Kind of input notification.
type Kind uint8

const (
	Press Kind = iota + 1
	Release
	Hover
	Wheel
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	case Hover:
		return "hover"
	case Wheel:
		return "scroll"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is a single recorded notification. Deltas are zero unless Kind is [Wheel].
type Event struct {
	Kind Kind
	Scroll
}

func (ev Event) String() string {
	if ev.Kind == Wheel {
		return fmt.Sprintf("%v(%v, %v, %.3g, %.3g, %.3g, %.3g)", ev.Kind, ev.Surface, ev.Origin, ev.X, ev.Y, ev.DeltaX, ev.DeltaY)
	}
	return fmt.Sprintf("%v(%v, %v, %.3g, %.3g)", ev.Kind, ev.Surface, ev.Origin, ev.X, ev.Y)
}

// Recorder is a reference in-memory [Listener], it keeps every notification in
// the order it was received.
type Recorder struct {
	mutex  sync.Mutex
	events []Event
}

func (rec *Recorder) record(ev Event) {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	rec.events = append(rec.events, ev)
}

func (rec *Recorder) OnPress(in Input)   { rec.record(Event{Kind: Press, Scroll: Scroll{Input: in}}) }
func (rec *Recorder) OnRelease(in Input) { rec.record(Event{Kind: Release, Scroll: Scroll{Input: in}}) }
func (rec *Recorder) OnHover(in Input)   { rec.record(Event{Kind: Hover, Scroll: Scroll{Input: in}}) }
func (rec *Recorder) OnScroll(in Scroll) { rec.record(Event{Kind: Wheel, Scroll: in}) }

// Events returns everything recorded so far and clears the recorder.
func (rec *Recorder) Events() []Event {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	events := rec.events
	rec.events = nil
	return events
}

// New returns a reference implementation of the GAST API that records every
// call into rec.
func New(rec *Recorder) API {
	return API{
		Press: func(ctx context.Context, in Input) error {
			rec.OnPress(in)
			return nil
		},
		Release: func(ctx context.Context, in Input) error {
			rec.OnRelease(in)
			return nil
		},
		Hover: func(ctx context.Context, in Input) error {
			rec.OnHover(in)
			return nil
		},
		Scroll: func(ctx context.Context, in Scroll) error {
			rec.OnScroll(in)
			return nil
		},
	}
}
