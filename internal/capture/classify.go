package capture

import (
	"godot.plugin/gast/protocol/gast"
)

// Classify reports the input for a ray resting at in, according to the state of
// the ray's actions, and returns true while the click action is held.
//
// Presses and releases are edge triggered: every other frame, including frames
// in the middle of a press, is reported as a hover. A held scroll action is
// reported in the same frame, in addition to the press, release or hover.
func Classify(in gast.Input, names Names, actions Actions, listener gast.Listener) bool {
	pressing := actions.IsActionPressed(names.Click)
	switch {
	case actions.IsActionJustPressed(names.Click):
		listener.OnPress(in)
	case actions.IsActionJustReleased(names.Click):
		listener.OnRelease(in)
	default:
		listener.OnHover(in)
	}

	var (
		scrolled bool
		scroll   = gast.Scroll{Input: in}
	)
	if actions.IsActionPressed(names.LeftScroll) {
		scrolled = true
		scroll.DeltaX = -actions.GetActionStrength(names.LeftScroll)
	} else if actions.IsActionPressed(names.RightScroll) {
		scrolled = true
		scroll.DeltaX = actions.GetActionStrength(names.RightScroll)
	}
	if actions.IsActionPressed(names.DownScroll) {
		scrolled = true
		scroll.DeltaY = -actions.GetActionStrength(names.DownScroll)
	} else if actions.IsActionPressed(names.UpScroll) {
		scrolled = true
		scroll.DeltaY = actions.GetActionStrength(names.UpScroll)
	}
	if scrolled {
		listener.OnScroll(scroll)
	}
	return pressing
}
