package ui

import (
	"image/color"
	"testing"

	"artboard/internal/render"

	"github.com/stretchr/testify/assert"
)

func TestComputeLayoutCentresCanvas(t *testing.T) {
	theme := DefaultTheme()
	l := ComputeLayout(1280, 860, 800, 600, theme, 1)

	assert.Equal(t, 1280-236, l.SidebarX)
	assert.Equal(t, 236, l.SidebarW)
	assert.Equal(t, 44, l.WorkY)
	assert.Equal(t, 860-44-28, l.WorkH)
	assert.Equal(t, (1044-800)/2, l.CanvasX)
	assert.Equal(t, 44+(788-600)/2, l.CanvasY)
	assert.Equal(t, 860-28, l.StatusBar)
	assert.Equal(t, l.LayerListY+32, l.LayerRowY(1))
}

func TestComputeLayoutPinsOversizedCanvas(t *testing.T) {
	l := ComputeLayout(900, 560, 2000, 2000, DefaultTheme(), 1)
	assert.Equal(t, 24, l.CanvasX)
	assert.Equal(t, 44+24, l.CanvasY)
}

func TestComputeLayoutScales(t *testing.T) {
	l := ComputeLayout(1600, 1000, 100, 100, DefaultTheme(), 2)
	assert.Equal(t, 88, l.ToolbarH)
	assert.Equal(t, 56, l.StatusH)
	assert.Equal(t, 472, l.SidebarW)
}

func TestDrawShellPaintsChrome(t *testing.T) {
	theme := DefaultTheme()
	fb := render.NewFrameBuffer(1000, 700)
	board := render.NewFrameBuffer(200, 100)
	board.Clear(color.RGBA{R: 255, A: 255})
	l := DrawShell(fb, board, theme, 1)

	assert.Equal(t, theme.Workspace, fb.At(5, l.WorkY+5))
	assert.Equal(t, theme.Sidebar, fb.At(l.SidebarX+10, l.SidebarY+20))
	assert.Equal(t, theme.Accent, fb.At(l.SidebarX+10, l.SidebarY+1))
	assert.Equal(t, theme.Border, fb.At(l.CanvasX-1, l.CanvasY+10))
	assert.Equal(t, theme.StatusBar, fb.At(500, l.StatusBar+10))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, fb.At(l.CanvasX+100, l.CanvasY+50))
}

func TestDrawShellClipsOversizedCanvasUnderPanels(t *testing.T) {
	theme := DefaultTheme()
	fb := render.NewFrameBuffer(900, 560)
	board := render.NewFrameBuffer(2000, 2000)
	board.Clear(color.RGBA{B: 255, A: 255})
	l := DrawShell(fb, board, theme, 1)

	assert.Equal(t, theme.Sidebar, fb.At(l.SidebarX+20, l.SidebarY+40))
	assert.Equal(t, theme.StatusBar, fb.At(100, l.StatusBar+10))
	assert.Equal(t, theme.Toolbar, fb.At(100, 10))
}
