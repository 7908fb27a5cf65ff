package editor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrImageDecodeFailed   = errors.New("editor: image decode failed")
	ErrRendererUnavailable = errors.New("editor: scene renderer unavailable")
	ErrUnknownTool         = errors.New("editor: unknown tool")
	ErrImportCanceled      = errors.New("editor: image import canceled")
)

type Tool int

const (
	ToolFreehand Tool = iota
	ToolEraser
	ToolCircle
	ToolRectangle
	ToolImageImport
	ToolColorPicker
)

var Tools = []Tool{ToolFreehand, ToolEraser, ToolCircle, ToolRectangle, ToolImageImport, ToolColorPicker}

func (t Tool) String() string {
	switch t {
	case ToolFreehand:
		return "freehand"
	case ToolEraser:
		return "eraser"
	case ToolCircle:
		return "circle"
	case ToolRectangle:
		return "rectangle"
	case ToolImageImport:
		return "image"
	case ToolColorPicker:
		return "picker"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

func (t Tool) Valid() bool { return t >= ToolFreehand && t <= ToolColorPicker }

// Continuous tools hand pointer motion to the renderer's path capture.
func (t Tool) Continuous() bool { return t == ToolFreehand || t == ToolEraser }

// Bounded tools build a shape between pointer-down and pointer-up.
func (t Tool) Bounded() bool { return t == ToolCircle || t == ToolRectangle }

// OneShot tools act on a single click.
func (t Tool) OneShot() bool { return t == ToolImageImport || t == ToolColorPicker }

func ParseTool(name string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "freehand", "brush":
		return ToolFreehand, nil
	case "eraser":
		return ToolEraser, nil
	case "circle":
		return ToolCircle, nil
	case "rectangle", "rect":
		return ToolRectangle, nil
	case "image":
		return ToolImageImport, nil
	case "picker":
		return ToolColorPicker, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}

// PickerMode selects what the color picker samples.
type PickerMode int

const (
	PickPixel PickerMode = iota
	PickFill
)

func (m PickerMode) String() string {
	if m == PickFill {
		return "fill"
	}
	return "pixel"
}

func ParsePickerMode(name string) (PickerMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pixel":
		return PickPixel, nil
	case "fill":
		return PickFill, nil
	default:
		return 0, fmt.Errorf("editor: unknown picker mode %q", name)
	}
}
