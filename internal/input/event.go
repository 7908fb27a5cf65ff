// Package input defines the raw, host-independent events fed into an
// editing session. Coordinates are viewport pixels.
package input

import "fmt"

type EventType int

const (
	EventUnknown EventType = iota
	EventResize
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventClick
)

func (t EventType) String() string {
	switch t {
	case EventResize:
		return "resize"
	case EventKeyDown:
		return "key-down"
	case EventMouseMove:
		return "mouse-move"
	case EventMouseDown:
		return "mouse-down"
	case EventMouseUp:
		return "mouse-up"
	case EventClick:
		return "click"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

type Event struct {
	Type   EventType
	Width  int
	Height int
	X      float64
	Y      float64
	Key    string
	Mods   Modifier
}

func (e Event) Has(m Modifier) bool { return e.Mods&m != 0 }

func MouseDown(x, y float64) Event { return Event{Type: EventMouseDown, X: x, Y: y} }
func MouseMove(x, y float64) Event { return Event{Type: EventMouseMove, X: x, Y: y} }
func MouseUp(x, y float64) Event   { return Event{Type: EventMouseUp, X: x, Y: y} }
func Click(x, y float64) Event     { return Event{Type: EventClick, X: x, Y: y} }
func Resize(w, h int) Event        { return Event{Type: EventResize, Width: w, Height: h} }

func Key(key string, mods Modifier) Event {
	return Event{Type: EventKeyDown, Key: key, Mods: mods}
}
