package relay

import (
	"context"
	"errors"
	"time"

	"runtime.link/api"
	"runtime.link/api/rest"
	"runtime.link/api/xray"

	"godot.plugin/gast/protocol/gast"
)

const callTimeout = 2 * time.Second

// Connect returns a relay that calls the [gast.API] of a renderer served over
// HTTP at host.
func Connect(host string, raise func(error)) *Relay {
	return Remote(api.Import[gast.API](rest.API, host, rest.Header("User-Agent", "gast")), raise)
}

// Remote returns a relay that calls the given implementation of the renderer's
// [gast.API], each call is given a short deadline.
func Remote(renderer gast.API, raise func(error)) *Relay {
	send := func(msg Message) error {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		var err error
		switch msg.Kind {
		case Kinds.Press:
			err = renderer.Press(ctx, msg.Input)
		case Kinds.Release:
			err = renderer.Release(ctx, msg.Input)
		case Kinds.Hover:
			err = renderer.Hover(ctx, msg.Input)
		case Kinds.Scroll:
			err = renderer.Scroll(ctx, msg.Scroll)
		default:
			err = errors.New("relay: unknown message kind")
		}
		if err != nil {
			return xray.New(err)
		}
		return nil
	}
	return newRelay(buffered, send, nil, raise)
}
