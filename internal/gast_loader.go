package internal

import (
	"encoding/json"

	"graphics.gd/classdb/Engine"
	"graphics.gd/classdb/Node"
	"graphics.gd/variant/Signal"
	"runtime.link/api/xray"

	"godot.plugin/gast/internal/capture"
	"godot.plugin/gast/internal/relay"
	"godot.plugin/gast/protocol/gast"
)

// LoaderGroup is joined by the [GastLoader] that surfaces deliver their input to.
const LoaderGroup = "gast_loader"

// GastLoader receives the input of every surface in the tree. Input is emitted
// as signals, each carrying a JSON encoded message, and forwarded to the
// external renderer over any relays that are configured.
type GastLoader struct {
	Node.Extension[GastLoader] `gd:"GastLoader"`

	// RelayURL of a websocket that accepts input messages, for example
	// ws://localhost:8017/gast
	RelayURL string `gd:"relay_url"`

	// RendererHost serving the GAST REST API, for example http://localhost:8018
	RendererHost string `gd:"renderer_host"`

	Hover   Signal.Solo[string] `gd:"hover"`
	Press   Signal.Solo[string] `gd:"press"`
	Release Signal.Solo[string] `gd:"release"`
	Scroll  Signal.Solo[string] `gd:"scroll"`

	link     relay.Link
	surfaces capture.Registry[*GastNode]
}

func (loader *GastLoader) Ready() {
	loader.AsNode().AddToGroup(LoaderGroup)
}

// EnterTree connects the relays, every time the loader enters the tree.
func (loader *GastLoader) EnterTree() {
	loader.link.Raise = Engine.Raise
	loader.link.Open(loader.RelayURL, loader.RendererHost)
}

func (loader *GastLoader) ExitTree() {
	if err := loader.link.Close(); err != nil {
		Engine.Raise(xray.New(err))
	}
}

func (loader *GastLoader) events() gast.Listener { return loaderEvents{loader} }

// loaderEvents emits the loader's signals and forwards to its relays.
type loaderEvents struct {
	loader *GastLoader
}

func (e loaderEvents) encode(kind relay.Kind, in gast.Scroll) string {
	data, err := json.Marshal(relay.Message{Kind: kind, Scroll: in})
	if err != nil {
		Engine.Raise(xray.New(err))
		return ""
	}
	return string(data)
}

func (e loaderEvents) OnPress(in gast.Input) {
	e.loader.Press.Emit(e.encode(relay.Kinds.Press, gast.Scroll{Input: in}))
	e.loader.link.OnPress(in)
}

func (e loaderEvents) OnRelease(in gast.Input) {
	e.loader.Release.Emit(e.encode(relay.Kinds.Release, gast.Scroll{Input: in}))
	e.loader.link.OnRelease(in)
}

func (e loaderEvents) OnHover(in gast.Input) {
	e.loader.Hover.Emit(e.encode(relay.Kinds.Hover, gast.Scroll{Input: in}))
	e.loader.link.OnHover(in)
}

func (e loaderEvents) OnScroll(in gast.Scroll) {
	e.loader.Scroll.Emit(e.encode(relay.Kinds.Scroll, in))
	e.loader.link.OnScroll(in)
}
