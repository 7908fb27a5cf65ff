package editor

import (
	"fmt"
	"image/color"
)

type CommandKind int

const (
	ShapeCommitted CommandKind = iota + 1
	ShapeDiscarded
	StrokeCommitted
	ImageRequested
	ImageInserted
	ImageImportFailed
	ImageImportCanceled
	ColorPicked
	ToolChanged
	ColorChanged
	BrushSizeChanged
	LayerAdded
	LayerDeleted
	LayerMoved
	LayerVisibilityChanged
	LayerOpacityChanged
	LayerSelected
	LayersReplaced
	Undone
	Redone
)

var commandNames = map[CommandKind]string{
	ShapeCommitted:         "shape-committed",
	ShapeDiscarded:         "shape-discarded",
	StrokeCommitted:        "stroke-committed",
	ImageRequested:         "image-requested",
	ImageInserted:          "image-inserted",
	ImageImportFailed:      "image-import-failed",
	ImageImportCanceled:    "image-import-canceled",
	ColorPicked:            "color-picked",
	ToolChanged:            "tool-changed",
	ColorChanged:           "color-changed",
	BrushSizeChanged:       "brush-size-changed",
	LayerAdded:             "layer-added",
	LayerDeleted:           "layer-deleted",
	LayerMoved:             "layer-moved",
	LayerVisibilityChanged: "layer-visibility-changed",
	LayerOpacityChanged:    "layer-opacity-changed",
	LayerSelected:          "layer-selected",
	LayersReplaced:         "layers-replaced",
	Undone:                 "undone",
	Redone:                 "redone",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is the record of one completed user action. Only the fields that
// matter for Kind are set. Committed and Digest are filled in by the session
// once it has decided whether the action enters history.
type Command struct {
	Kind   CommandKind
	Tool   Tool
	Color  color.RGBA
	Size   int
	Shape  ShapeKind
	Handle ObjectHandle
	Layer  string
	Value  int
	At     *Point
	Err    error

	Committed bool
	Digest    string
}

func (c Command) String() string {
	switch c.Kind {
	case ToolChanged:
		return fmt.Sprintf("%s %s", c.Kind, c.Tool)
	case ColorChanged, ColorPicked:
		return fmt.Sprintf("%s %s", c.Kind, HexColor(c.Color))
	case BrushSizeChanged:
		return fmt.Sprintf("%s %d", c.Kind, c.Size)
	case ShapeCommitted, ShapeDiscarded:
		return fmt.Sprintf("%s %s", c.Kind, c.Shape)
	case ImageImportFailed:
		return fmt.Sprintf("%s: %v", c.Kind, c.Err)
	default:
		return c.Kind.String()
	}
}
