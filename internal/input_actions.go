package internal

import (
	"graphics.gd/classdb/Engine"
	"graphics.gd/classdb/Input"
	"graphics.gd/classdb/InputMap"
	"graphics.gd/variant/Float"
)

// engineActions reads action state from the Input singleton. Actions missing
// from the project's input map are never pressed, rays are not required to
// declare every action.
type engineActions struct{}

func (engineActions) IsActionPressed(action string) bool {
	return InputMap.HasAction(action) && Input.IsActionPressed(action, false)
}

func (engineActions) IsActionJustPressed(action string) bool {
	return InputMap.HasAction(action) && Input.IsActionJustPressed(action, false)
}

func (engineActions) IsActionJustReleased(action string) bool {
	return InputMap.HasAction(action) && Input.IsActionJustReleased(action, false)
}

func (engineActions) GetActionStrength(action string) Float.X {
	if !InputMap.HasAction(action) {
		return 0
	}
	return Input.GetActionStrength(action, false)
}

// engineErrors surfaces problems in the Godot debugger.
type engineErrors struct{}

func (engineErrors) ReportError(err error) { Engine.Raise(err) }
