package capture

import "strings"

// Names of the input actions bound to a single ray.
type Names struct {
	Click       string
	LeftScroll  string
	RightScroll string
	UpScroll    string
	DownScroll  string
}

// ActionsFor derives the action names for the ray with the given name. Path
// separators are not valid in action names, so they become underscores:
//
//	/root/Main/RightHand/RayCast -> _root_Main_RightHand_RayCast_click
func ActionsFor(name string) Names {
	prefix := strings.ReplaceAll(name, "/", "_")
	return Names{
		Click:       prefix + "_click",
		LeftScroll:  prefix + "_left_scroll",
		RightScroll: prefix + "_right_scroll",
		UpScroll:    prefix + "_up_scroll",
		DownScroll:  prefix + "_down_scroll",
	}
}
