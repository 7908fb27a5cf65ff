package ui

import "image/color"

type Theme struct {
	AppBackground   color.RGBA
	Toolbar         color.RGBA
	Workspace       color.RGBA
	Border          color.RGBA
	Shadow          color.RGBA
	Sidebar         color.RGBA
	LayerRow        color.RGBA
	LayerActive     color.RGBA
	StatusBar       color.RGBA
	Accent          color.RGBA
	Button          color.RGBA
	ButtonActive    color.RGBA
	ButtonHover     color.RGBA
	ButtonBorder    color.RGBA
	Label           color.RGBA
	LabelActive     color.RGBA
	LabelMuted      color.RGBA
	ToolbarHeightDp int
	SidebarWidthDp  int
	StatusHeightDp  int
	LayerRowDp      int
	LayerListTopDp  int
	CanvasMarginDp  int
}

func DefaultTheme() Theme {
	return Theme{
		AppBackground:   color.RGBA{0xF3, 0xF5, 0xF8, 0xFF},
		Toolbar:         color.RGBA{0xF7, 0xF9, 0xFC, 0xFF},
		Workspace:       color.RGBA{0xE2, 0xE7, 0xEF, 0xFF},
		Border:          color.RGBA{0xB2, 0xBF, 0xD0, 0xFF},
		Shadow:          color.RGBA{0xC8, 0xCF, 0xDB, 0xFF},
		Sidebar:         color.RGBA{0xF0, 0xF3, 0xF8, 0xFF},
		LayerRow:        color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		LayerActive:     color.RGBA{0xD7, 0xE5, 0xF8, 0xFF},
		StatusBar:       color.RGBA{0xEA, 0xEF, 0xF6, 0xFF},
		Accent:          color.RGBA{0x6A, 0x5A, 0xCD, 0xFF},
		Button:          color.RGBA{0xF1, 0xF5, 0xFB, 0xFF},
		ButtonActive:    color.RGBA{0xD7, 0xE5, 0xF8, 0xFF},
		ButtonHover:     color.RGBA{0xDF, 0xEC, 0xFC, 0xFF},
		ButtonBorder:    color.RGBA{0xB5, 0xC2, 0xD6, 0xFF},
		Label:           color.RGBA{0x2C, 0x3A, 0x52, 0xFF},
		LabelActive:     color.RGBA{0x13, 0x3E, 0x7A, 0xFF},
		LabelMuted:      color.RGBA{0x8A, 0x96, 0xA8, 0xFF},
		ToolbarHeightDp: 44,
		SidebarWidthDp:  236,
		StatusHeightDp:  28,
		LayerRowDp:      30,
		LayerListTopDp:  178,
		CanvasMarginDp:  24,
	}
}
