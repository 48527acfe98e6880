package main

import (
	"graphics.gd/classdb"
	"graphics.gd/startup"

	"godot.plugin/gast/internal"
)

func main() {
	classdb.Register[internal.GastNode]()
	classdb.Register[internal.GastLoader]()
	classdb.Register[internal.PointerRay]()
	startup.Scene()
}
