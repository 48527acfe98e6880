package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"godot.plugin/gast/protocol/gast"
)

const dialTimeout = 5 * time.Second

// Link is a [gast.Listener] for the set of relays that a node keeps while it
// is inside the scene tree. It can be opened again after being closed, so that
// the relays follow the node when it is moved around the tree.
type Link struct {
	Raise func(error)

	mu      sync.Mutex
	open    bool
	session int
	cancel  context.CancelFunc
	relays  []*Relay
}

func (link *Link) raise(err error) {
	if link.Raise != nil {
		link.Raise(err)
	}
}

// Open connects to the renderer API served at host and dials the websocket
// relay at url in the background. Empty addresses are skipped and opening a
// link that is already open does nothing.
func (link *Link) Open(url, host string) {
	link.mu.Lock()
	defer link.mu.Unlock()
	if link.open {
		return
	}
	link.open = true
	link.session++
	if host != "" {
		link.relays = append(link.relays, Connect(host, link.raise))
	}
	if url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		link.cancel = cancel
		go link.dial(ctx, cancel, link.session, url)
	}
}

func (link *Link) dial(ctx context.Context, cancel context.CancelFunc, session int, url string) {
	defer cancel()
	r, err := Dial(ctx, url, link.raise)
	link.mu.Lock()
	current := link.open && link.session == session
	if err == nil && current {
		link.relays = append(link.relays, r)
	}
	link.mu.Unlock()
	switch {
	case err != nil && current:
		link.raise(fmt.Errorf("failed to connect to the relay at %s: %w", url, err))
	case err == nil && !current:
		// closed while dialing.
		r.Close()
	case err == nil:
		fmt.Println("gast: relaying input to", url)
	}
}

// Close every relay of the link, including one that is still being dialed.
func (link *Link) Close() error {
	link.mu.Lock()
	if link.cancel != nil {
		link.cancel()
		link.cancel = nil
	}
	link.open = false
	relays := link.relays
	link.relays = nil
	link.mu.Unlock()

	var errs []error
	for _, r := range relays {
		if dropped := r.Dropped(); dropped > 0 {
			fmt.Println("gast: relay dropped", dropped, "input events")
		}
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Connected returns the number of relays currently attached to the link.
func (link *Link) Connected() int {
	link.mu.Lock()
	defer link.mu.Unlock()
	return len(link.relays)
}

func (link *Link) each(fn func(*Relay)) {
	link.mu.Lock()
	defer link.mu.Unlock()
	for _, r := range link.relays {
		fn(r)
	}
}

func (link *Link) OnPress(in gast.Input)   { link.each(func(r *Relay) { r.OnPress(in) }) }
func (link *Link) OnRelease(in gast.Input) { link.each(func(r *Relay) { r.OnRelease(in) }) }
func (link *Link) OnHover(in gast.Input)   { link.each(func(r *Relay) { r.OnHover(in) }) }
func (link *Link) OnScroll(in gast.Scroll) { link.each(func(r *Relay) { r.OnScroll(in) }) }
