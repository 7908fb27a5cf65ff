package editor

import (
	"strings"

	"artboard/internal/input"
)

var toolKeys = map[string]Tool{
	"b": ToolFreehand,
	"e": ToolEraser,
	"c": ToolCircle,
	"r": ToolRectangle,
	"i": ToolImageImport,
	"p": ToolColorPicker,
}

// ToolKey returns the single-letter shortcut for t.
func ToolKey(t Tool) string {
	for k, v := range toolKeys {
		if v == t {
			return strings.ToUpper(k)
		}
	}
	return ""
}

func (s *Session) handleKey(ev input.Event) {
	key := strings.ToLower(ev.Key)
	if ev.Has(input.ModCtrl) {
		switch {
		case key == "z" && ev.Has(input.ModShift), key == "y":
			_ = s.Redo()
		case key == "z":
			_ = s.Undo()
		}
		return
	}
	if t, ok := toolKeys[key]; ok {
		_ = s.SetTool(t)
		return
	}
	switch key {
	case "[":
		s.SetBrushSize(s.brushSize - 1)
	case "]":
		s.SetBrushSize(s.brushSize + 1)
	case "escape":
		s.cancelGesture()
	}
}
