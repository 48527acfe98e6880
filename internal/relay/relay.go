// Package relay forwards surface input to an external renderer without ever
// blocking the physics frame that produced it.
package relay

import (
	"errors"
	"sync"
	"sync/atomic"

	"runtime.link/xyz"

	"godot.plugin/gast/protocol/gast"
)

// ErrClosed is returned when closing a relay that has already been closed.
var ErrClosed = errors.New("relay: closed")

const buffered = 64

// Kind of input carried by a [Message].
type Kind xyz.Switch[string, struct {
	Press   Kind `json:"press"`
	Release Kind `json:"release"`
	Hover   Kind `json:"hover"`
	Scroll  Kind `json:"scroll"`
}]

var Kinds = xyz.AccessorFor(Kind.Values)

// Message is the wire representation of a single input notification. The
// deltas are zero unless Kind is scroll.
type Message struct {
	Kind Kind `json:"kind"`
	gast.Scroll
}

// Deliver the message to l.
func (msg Message) Deliver(l gast.Listener) error {
	switch msg.Kind {
	case Kinds.Press:
		l.OnPress(msg.Input)
	case Kinds.Release:
		l.OnRelease(msg.Input)
	case Kinds.Hover:
		l.OnHover(msg.Input)
	case Kinds.Scroll:
		l.OnScroll(msg.Scroll)
	default:
		return errors.New("relay: unknown message kind")
	}
	return nil
}

// Relay is a [gast.Listener] that queues every notification for a background
// sender. When the queue is full, or the relay is closed, notifications are
// dropped.
type Relay struct {
	queue   chan Message
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Uint64

	send   func(Message) error
	closer func() error
	raise  func(error)
}

func newRelay(size int, send func(Message) error, closer func() error, raise func(error)) *Relay {
	r := &Relay{
		queue:   make(chan Message, size),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		send:    send,
		closer:  closer,
		raise:   raise,
	}
	go r.run()
	return r
}

func (r *Relay) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			return
		case msg := <-r.queue:
			if err := r.send(msg); err != nil && r.raise != nil {
				r.raise(err)
			}
		}
	}
}

func (r *Relay) post(msg Message) {
	select {
	case <-r.done:
		r.dropped.Add(1)
	default:
		select {
		case r.queue <- msg:
		default:
			r.dropped.Add(1)
		}
	}
}

func (r *Relay) OnPress(in gast.Input)   { r.post(Message{Kind: Kinds.Press, Scroll: gast.Scroll{Input: in}}) }
func (r *Relay) OnRelease(in gast.Input) { r.post(Message{Kind: Kinds.Release, Scroll: gast.Scroll{Input: in}}) }
func (r *Relay) OnHover(in gast.Input)   { r.post(Message{Kind: Kinds.Hover, Scroll: gast.Scroll{Input: in}}) }
func (r *Relay) OnScroll(in gast.Scroll) { r.post(Message{Kind: Kinds.Scroll, Scroll: in}) }

// Dropped returns the number of notifications that were never sent.
func (r *Relay) Dropped() uint64 { return r.dropped.Load() }

// Close stops the relay, anything still queued is discarded.
func (r *Relay) Close() error {
	err := ErrClosed
	r.once.Do(func() {
		close(r.done)
		err = nil
		if r.closer != nil {
			err = r.closer()
		}
		<-r.stopped
	})
	return err
}
