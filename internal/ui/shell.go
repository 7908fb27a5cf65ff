package ui

import "artboard/internal/render"

// Layout is the computed window geometry in screen pixels.
type Layout struct {
	ToolbarH int
	StatusH  int

	WorkX int
	WorkY int
	WorkW int
	WorkH int

	CanvasX int
	CanvasY int
	CanvasW int
	CanvasH int

	SidebarX int
	SidebarY int
	SidebarW int
	SidebarH int

	LayerListY int
	LayerRowH  int

	StatusBar int
}

// LayerRowY returns the top edge of the i-th layer row in the sidebar.
func (l Layout) LayerRowY(i int) int {
	return l.LayerListY + i*(l.LayerRowH+2)
}

func ComputeLayout(w, h, canvasW, canvasH int, theme Theme, scale float32) Layout {
	if scale <= 0 {
		scale = 1
	}

	dp := func(v int) int { return int(float32(v) * scale) }

	toolbarH := dp(theme.ToolbarHeightDp)
	statusH := dp(theme.StatusHeightDp)
	sidebarW := dp(theme.SidebarWidthDp)
	margin := dp(theme.CanvasMarginDp)
	if sidebarW > w/2 {
		sidebarW = w / 2
	}

	workY := toolbarH
	workH := h - toolbarH - statusH
	if workH < 0 {
		workH = 0
	}
	workW := w - sidebarW
	if workW < 0 {
		workW = 0
	}

	// Centre the canvas; a canvas larger than the workspace is pinned to the
	// margin and clipped on the far edges.
	cx := (workW - canvasW) / 2
	if cx < margin {
		cx = margin
	}
	cy := workY + (workH-canvasH)/2
	if cy < workY+margin {
		cy = workY + margin
	}

	return Layout{
		ToolbarH:   toolbarH,
		StatusH:    statusH,
		WorkX:      0,
		WorkY:      workY,
		WorkW:      workW,
		WorkH:      workH,
		CanvasX:    cx,
		CanvasY:    cy,
		CanvasW:    canvasW,
		CanvasH:    canvasH,
		SidebarX:   workW,
		SidebarY:   workY,
		SidebarW:   sidebarW,
		SidebarH:   workH,
		LayerListY: workY + dp(theme.LayerListTopDp),
		LayerRowH:  dp(theme.LayerRowDp),
		StatusBar:  h - statusH,
	}
}

// DrawShell paints the window chrome with the rasterized canvas in the
// workspace. Panels are painted last so an oversized canvas stays clipped.
func DrawShell(fb, board *render.FrameBuffer, theme Theme, scale float32) Layout {
	layout := ComputeLayout(fb.W, fb.H, board.W, board.H, theme, scale)

	fb.Clear(theme.AppBackground)

	fb.FillRect(layout.WorkX, layout.WorkY, layout.WorkW, layout.WorkH, theme.Workspace)
	fb.FillRect(layout.CanvasX+3, layout.CanvasY+3, layout.CanvasW, layout.CanvasH, theme.Shadow)
	fb.StrokeRect(layout.CanvasX-1, layout.CanvasY-1, layout.CanvasW+2, layout.CanvasH+2, 1, theme.Border)
	fb.Blit(board, layout.CanvasX, layout.CanvasY)

	fb.FillRect(0, 0, fb.W, layout.ToolbarH, theme.Toolbar)
	fb.StrokeRect(0, 0, fb.W, layout.ToolbarH, 1, theme.Border)

	fb.FillRect(layout.SidebarX, layout.SidebarY, layout.SidebarW, layout.SidebarH, theme.Sidebar)
	fb.StrokeRect(layout.SidebarX, layout.SidebarY, layout.SidebarW, layout.SidebarH, 1, theme.Border)
	accentH := int(3 * scale)
	if accentH < 1 {
		accentH = 1
	}
	fb.FillRect(layout.SidebarX, layout.SidebarY, layout.SidebarW, accentH, theme.Accent)

	fb.FillRect(0, layout.StatusBar, fb.W, layout.StatusH, theme.StatusBar)
	fb.StrokeRect(0, layout.StatusBar, fb.W, layout.StatusH, 1, theme.Border)

	return layout
}
