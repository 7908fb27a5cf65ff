package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"artboard/internal/canvas"
	"artboard/internal/config"
	"artboard/internal/editor"
	"artboard/internal/input"
	"artboard/internal/layers"
	"artboard/internal/render"
	"artboard/internal/ui"
	"artboard/pkg/scene"

	textclip "github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/sqweek/dialog"
	imgclip "golang.design/x/clipboard"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	clickSlop    = 3
	opacityStep  = 10
	projectExt   = "artboard"
	projectLabel = "Artboard projects"
)

var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}

type rect struct {
	x int
	y int
	w int
	h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && y >= r.y && x < r.x+r.w && y < r.y+r.h
}

type actionButton struct {
	id     string
	label  string
	r      rect
	active bool
}

type colorSwatch struct {
	value color.RGBA
	r     rect
}

type textLabel struct {
	text string
	x    int
	y    int
	c    color.RGBA
}

type App struct {
	theme   ui.Theme
	cfg     *config.Config
	logger  *slog.Logger
	session *editor.Session
	board   *canvas.Renderer
	ctx     context.Context
	cancel  context.CancelFunc

	frameBuffer *render.FrameBuffer
	screen      *ebiten.Image
	layout      ui.Layout
	face        font.Face
	uiScale     float32

	screenW int
	screenH int

	toolbarActions []actionButton
	sidebarActions []actionButton
	colorSwatches  []colorSwatch
	sidebarLabels  []textLabel
	colorPalette   []color.RGBA

	dragging bool
	pressX   int
	pressY   int
	lastX    int
	lastY    int

	filePath      string
	status        string
	clipboardInit bool
	clipboardErr  error
	quit          bool
}

func New(cfg *config.Config, logger *slog.Logger, board *canvas.Renderer, session *editor.Session) *App {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		theme:   ui.DefaultTheme(),
		cfg:     cfg,
		logger:  logger,
		session: session,
		board:   board,
		ctx:     ctx,
		cancel:  cancel,
		face:    basicfont.Face7x13,
		uiScale: 1,
		status:  "Ready",
		colorPalette: []color.RGBA{
			editor.DefaultColor,
			{R: 0x1F, G: 0x1F, B: 0x1F, A: 0xFF},
			{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
			{R: 0xD9, G: 0x2D, B: 0x20, A: 0xFF},
			{R: 0xF2, G: 0x8C, B: 0x28, A: 0xFF},
			{R: 0xF5, G: 0xD0, B: 0x33, A: 0xFF},
			{R: 0x2E, G: 0x9E, B: 0x4F, A: 0xFF},
			{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
			{R: 0x0B, G: 0x3C, B: 0x8C, A: 0xFF},
			{R: 0x8E, G: 0x44, B: 0xAD, A: 0xFF},
			{R: 0xE9, G: 0x1E, B: 0x63, A: 0xFF},
			{R: 0x79, G: 0x55, B: 0x48, A: 0xFF},
		},
	}
	session.OnCommand(a.onCommand)
	return a
}

func (a *App) Run() error {
	defer a.cancel()
	title := "Artboard"
	if a.cfg != nil {
		title = fmt.Sprintf("Artboard (%dx%d)", a.cfg.CanvasWidth, a.cfg.CanvasHeight)
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(1320, 880)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(900, 560, -1, -1)
	if err := ebiten.RunGame(a); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	if a.quit {
		return ebiten.Termination
	}
	a.session.Poll()
	a.handleKeys()
	a.handlePointer()
	return nil
}

func (a *App) handleKeys() {
	var mods input.Modifier
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= input.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= input.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= input.ModAlt
	}

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		name := keyName(k)
		if name == "" {
			continue
		}
		if mods&input.ModCtrl != 0 {
			switch name {
			case "s":
				a.invokeAction("save")
				continue
			case "o":
				a.invokeAction("open")
				continue
			case "e":
				a.invokeAction("export")
				continue
			case "c":
				a.invokeAction("copy")
				continue
			case "q":
				a.quit = true
				continue
			}
		}
		a.session.HandleEvent(input.Key(name, mods))
	}
}

func keyName(k ebiten.Key) string {
	switch k {
	case ebiten.KeyBracketLeft:
		return "["
	case ebiten.KeyBracketRight:
		return "]"
	case ebiten.KeyEscape:
		return "escape"
	}
	s := k.String()
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		return strings.ToLower(s)
	}
	return ""
}

func (a *App) handlePointer() {
	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if id, ok := a.actionAt(mx, my); ok {
			a.invokeAction(id)
			return
		}
		if a.canvasRect().contains(mx, my) {
			a.dragging = true
			a.pressX, a.pressY = mx, my
			a.lastX, a.lastY = mx, my
			a.session.HandleEvent(input.MouseDown(float64(mx), float64(my)))
		}
		return
	}
	if !a.dragging {
		return
	}
	if mx != a.lastX || my != a.lastY {
		a.lastX, a.lastY = mx, my
		a.session.HandleEvent(input.MouseMove(float64(mx), float64(my)))
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		a.dragging = false
		a.session.HandleEvent(input.MouseUp(float64(mx), float64(my)))
		if abs(mx-a.pressX) <= clickSlop && abs(my-a.pressY) <= clickSlop {
			a.session.HandleEvent(input.Click(float64(mx), float64(my)))
		}
	}
}

func (a *App) canvasRect() rect {
	return rect{x: a.layout.CanvasX, y: a.layout.CanvasY, w: a.layout.CanvasW, h: a.layout.CanvasH}
}

func (a *App) actionAt(x, y int) (string, bool) {
	for _, btn := range a.toolbarActions {
		if btn.r.contains(x, y) {
			return btn.id, true
		}
	}
	for _, btn := range a.sidebarActions {
		if btn.r.contains(x, y) {
			return btn.id, true
		}
	}
	for i, sw := range a.colorSwatches {
		if sw.r.contains(x, y) {
			return fmt.Sprintf("swatch:%d", i), true
		}
	}
	return "", false
}

func (a *App) invokeAction(id string) {
	if name, ok := strings.CutPrefix(id, "tool:"); ok {
		if err := a.session.SetToolByName(name); err != nil {
			a.status = err.Error()
		}
		return
	}
	if rest, ok := strings.CutPrefix(id, "swatch:"); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 && i < len(a.colorPalette) {
			a.session.SetColor(a.colorPalette[i])
		}
		return
	}
	if verb, layerID, ok := strings.Cut(id, ":"); ok {
		a.invokeLayerAction(verb, layerID)
		return
	}

	switch id {
	case "undo":
		if err := a.session.Undo(); err != nil && !editor.IsBoundary(err) {
			a.status = "Undo failed: " + err.Error()
		}
	case "redo":
		if err := a.session.Redo(); err != nil && !editor.IsBoundary(err) {
			a.status = "Redo failed: " + err.Error()
		}
	case "brush_down":
		a.session.SetBrushSize(a.session.BrushSize() - 1)
	case "brush_up":
		a.session.SetBrushSize(a.session.BrushSize() + 1)
	case "layer_add":
		a.session.AddLayer()
	case "import":
		a.startImport(nil)
	case "export":
		if err := a.exportImage(); err != nil {
			a.reportError("Export", err)
		}
	case "copy":
		if err := a.copyImage(); err != nil {
			a.reportError("Copy", err)
		}
	case "save":
		if err := a.saveProject(false); err != nil {
			a.reportError("Save", err)
		}
	case "save_as":
		if err := a.saveProject(true); err != nil {
			a.reportError("Save", err)
		}
	case "open":
		if err := a.openProject(); err != nil {
			a.reportError("Open", err)
		}
	}
}

func (a *App) invokeLayerAction(verb, id string) {
	var err error
	switch verb {
	case "layer":
		a.session.SelectLayer(id)
	case "layer_vis":
		err = a.session.ToggleLayerVisibility(id)
	case "layer_up":
		a.session.MoveLayer(id, layers.Up)
	case "layer_down":
		a.session.MoveLayer(id, layers.Down)
	case "layer_del":
		err = a.session.DeleteLayer(id)
	case "layer_op_down", "layer_op_up":
		l, ok := a.findLayer(id)
		if !ok {
			return
		}
		step := opacityStep
		if verb == "layer_op_down" {
			step = -step
		}
		err = a.session.SetLayerOpacity(id, l.Opacity+step)
	}
	if err != nil {
		a.status = err.Error()
	}
}

func (a *App) findLayer(id string) (layers.Layer, bool) {
	for _, l := range a.session.Layers() {
		if l.ID == id {
			return l, true
		}
	}
	return layers.Layer{}, false
}

func (a *App) reportError(action string, err error) {
	if errors.Is(err, dialog.ErrCancelled) {
		a.status = action + " canceled"
		return
	}
	a.logger.Warn("action failed", "action", strings.ToLower(action), "error", err)
	a.status = action + " failed: " + err.Error()
}

func (a *App) onCommand(cmd editor.Command) {
	switch cmd.Kind {
	case editor.ImageRequested:
		a.startImport(cmd.At)
		return
	case editor.ColorPicked:
		hex := editor.HexColor(cmd.Color)
		if err := textclip.WriteAll(hex); err != nil {
			a.logger.Debug("clipboard unavailable", "error", err)
			a.status = "Picked " + hex
			return
		}
		a.status = "Picked " + hex + " (copied)"
		return
	case editor.ImageImportCanceled:
		a.status = "Import canceled"
		return
	}
	if cmd.Err != nil {
		a.status = cmd.String()
		if !strings.Contains(a.status, cmd.Err.Error()) {
			a.status += ": " + cmd.Err.Error()
		}
		return
	}
	a.status = cmd.String()
}

// startImport asks for an image file off the game loop; the result is applied
// by Poll on a later frame.
func (a *App) startImport(at *editor.Point) {
	if err := a.session.ImportImage(a.ctx, at, a.loadImageFile); err != nil {
		a.reportError("Import", err)
		return
	}
	a.status = "Choose an image..."
}

func (a *App) loadImageFile(ctx context.Context) ([]byte, error) {
	path, err := dialog.File().Title("Insert image").Filter("Images", imageExtensions...).Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return nil, editor.ErrImportCanceled
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Clean(path))
}

func (a *App) exportImage() error {
	format, scale := render.FormatPNG, 1.0
	if a.cfg != nil {
		format, scale = a.cfg.ExportFormat, a.cfg.ExportScale
	}
	exp, err := a.session.ExportImage(format, scale)
	if err != nil {
		return err
	}
	ext := render.Extension(exp.Format)
	path, err := dialog.File().Title("Export image").Filter(strings.ToUpper(ext)+" images", ext).SetStartFile(exp.Name).Save()
	if err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		path += "." + ext
	}
	if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	a.status = "Exported " + filepath.Base(path)
	return nil
}

func (a *App) copyImage() error {
	if !a.clipboardInit {
		a.clipboardInit = true
		a.clipboardErr = imgclip.Init()
	}
	if a.clipboardErr != nil {
		return fmt.Errorf("image clipboard: %w", a.clipboardErr)
	}
	exp, err := a.session.ExportImage(render.FormatPNG, 1)
	if err != nil {
		return err
	}
	imgclip.Write(imgclip.FmtImage, exp.Data)
	a.status = "Copied canvas to clipboard"
	return nil
}

func (a *App) saveOptions() scene.SaveOptions {
	if a.cfg == nil {
		return scene.SaveOptions{Compression: true}
	}
	return scene.SaveOptions{
		Compression: a.cfg.Compress,
		Encryption:  scene.EncryptionOptions{Enabled: a.cfg.Password != "", Password: a.cfg.Password},
	}
}

func (a *App) saveProject(saveAs bool) error {
	path := a.filePath
	if saveAs || path == "" {
		p, err := dialog.File().Filter(projectLabel, projectExt).Save()
		if err != nil {
			return err
		}
		path = p
	}
	if path == "" {
		return errors.New("no file selected")
	}
	if filepath.Ext(path) == "" {
		path += "." + projectExt
	}
	if err := scene.SaveWithOptions(path, a.board.Scene(), a.saveOptions()); err != nil {
		return err
	}
	a.filePath = path
	a.status = "Saved " + filepath.Base(path)
	a.logger.Info("project saved", "path", path)
	return nil
}

func (a *App) openProject() error {
	path, err := dialog.File().Filter(projectLabel, projectExt).Load()
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("no file selected")
	}
	path = filepath.Clean(path)
	info, err := scene.InspectProject(path)
	if err != nil {
		return err
	}
	password := ""
	if a.cfg != nil {
		password = a.cfg.Password
	}
	if info.Encrypted && password == "" {
		return errors.New("project is encrypted; set ARTBOARD_PROJECT_PASSWORD")
	}
	sc, err := scene.LoadWithOptions(path, scene.LoadOptions{Password: password})
	if err != nil {
		return err
	}
	reg, err := canvas.RegistryFrom(sc)
	if err != nil {
		return err
	}
	if err := a.board.Load(sc); err != nil {
		return err
	}
	a.session.SetLayerRegistry(reg)
	if err := a.session.Attach(a.board); err != nil {
		return err
	}
	a.filePath = path
	a.status = "Opened " + filepath.Base(path)
	a.logger.Info("project opened", "path", path, "objects", info.Objects, "layers", info.Layers, "encrypted", info.Encrypted)
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()
	if a.frameBuffer == nil || a.frameBuffer.W != w || a.frameBuffer.H != h {
		a.frameBuffer = render.NewFrameBuffer(w, h)
		a.screen = ebiten.NewImage(w, h)
	}

	layout := ui.DrawShell(a.frameBuffer, a.board.Frame(), a.theme, a.uiScale)
	a.layout = layout
	a.board.SetView(float64(layout.CanvasX), float64(layout.CanvasY), 1)

	a.layoutToolbar(layout)
	a.layoutSidebar(layout)

	a.screen.WritePixels(a.frameBuffer.Pixels)
	screen.DrawImage(a.screen, nil)

	a.drawButtonLabels(screen, a.toolbarActions)
	a.drawButtonLabels(screen, a.sidebarActions)
	for _, l := range a.sidebarLabels {
		text.Draw(screen, l.text, a.face, l.x, l.y, l.c)
	}

	name := a.filePath
	if name == "" {
		name = "Untitled"
	} else {
		name = filepath.Base(name)
	}
	statusLeft := fmt.Sprintf("[ %s ] [ %s ] [ History %d/%d ]", a.session.Tool(), a.session.State(), a.session.HistoryIndex()+1, a.session.HistoryLen())
	if n := a.session.PendingImports(); n > 0 {
		statusLeft += fmt.Sprintf(" [ Importing %d ]", n)
	}
	statusRight := fmt.Sprintf("[ %s ] [ %s ]", name, a.status)
	text.Draw(screen, statusLeft, a.face, 12, h-10, a.theme.Label)
	text.Draw(screen, statusRight, a.face, 12+a.measureString(statusLeft)+24, h-10, a.theme.Label)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if outsideWidth < 900 {
		outsideWidth = 900
	}
	if outsideHeight < 560 {
		outsideHeight = 560
	}
	if outsideWidth != a.screenW || outsideHeight != a.screenH {
		a.screenW = outsideWidth
		a.screenH = outsideHeight
		a.session.HandleEvent(input.Resize(outsideWidth, outsideHeight))
	}
	return outsideWidth, outsideHeight
}

func (a *App) button(x, y, w, h int, id, label string, active bool) actionButton {
	if w <= 0 {
		w = a.measureString(label) + 20
		if w < 48 {
			w = 48
		}
	}
	r := rect{x: x, y: y, w: w, h: h}
	mx, my := ebiten.CursorPosition()
	bg := a.theme.Button
	if active {
		bg = a.theme.ButtonActive
	}
	if r.contains(mx, my) {
		bg = a.theme.ButtonHover
	}
	a.frameBuffer.FillRect(r.x, r.y, r.w, r.h, bg)
	a.frameBuffer.StrokeRect(r.x, r.y, r.w, r.h, 1, a.theme.ButtonBorder)
	return actionButton{id: id, label: label, r: r, active: active}
}

func (a *App) layoutToolbar(layout ui.Layout) {
	a.toolbarActions = a.toolbarActions[:0]
	x := 10
	y := 8
	h := layout.ToolbarH - 16
	if h < 24 {
		h = 24
	}
	add := func(id, label string, active bool) {
		btn := a.button(x, y, 0, h, id, label, active)
		a.toolbarActions = append(a.toolbarActions, btn)
		x += btn.r.w + 6
	}

	for _, t := range editor.Tools {
		add("tool:"+t.String(), toolLabel(t), a.session.Tool() == t)
	}
	x += 12
	add("undo", "Undo", false)
	add("redo", "Redo", false)
	x += 12
	add("import", "Insert", false)
	add("export", "Export", false)
	add("copy", "Copy", false)
	x += 12
	add("open", "Open", false)
	add("save", "Save", false)
	add("save_as", "Save As", false)
}

func toolLabel(t editor.Tool) string {
	name := t.String()
	return strings.ToUpper(name[:1]) + name[1:] + " " + editor.ToolKey(t)
}

func (a *App) layoutSidebar(layout ui.Layout) {
	a.sidebarActions = a.sidebarActions[:0]
	a.colorSwatches = a.colorSwatches[:0]
	a.sidebarLabels = a.sidebarLabels[:0]

	sx := layout.SidebarX + 12
	sy := layout.SidebarY
	innerW := layout.SidebarW - 24
	label := func(s string, x, y int) {
		a.sidebarLabels = append(a.sidebarLabels, textLabel{text: s, x: x, y: y, c: a.theme.Label})
	}

	// Color
	cur := a.session.Color()
	label("Color", sx, sy+24)
	a.frameBuffer.FillRect(sx+56, sy+12, 40, 18, cur)
	a.frameBuffer.StrokeRect(sx+56, sy+12, 40, 18, 1, a.theme.ButtonBorder)
	label(editor.HexColor(cur), sx+104, sy+25)

	size, gap, cols := 22, 6, 6
	for i, c := range a.colorPalette {
		r := rect{x: sx + (i%cols)*(size+gap), y: sy + 40 + (i/cols)*(size+gap), w: size, h: size}
		a.frameBuffer.FillRect(r.x, r.y, r.w, r.h, c)
		border := a.theme.ButtonBorder
		line := 1
		if c == cur {
			border = a.theme.Accent
			line = 2
		}
		a.frameBuffer.StrokeRect(r.x, r.y, r.w, r.h, line, border)
		a.colorSwatches = append(a.colorSwatches, colorSwatch{value: c, r: r})
	}

	// Brush
	by := sy + 104
	label("Brush", sx, by+17)
	a.sidebarActions = append(a.sidebarActions, a.button(sx+56, by, 28, 24, "brush_down", "-", false))
	label(fmt.Sprintf("%3d px", a.session.BrushSize()), sx+92, by+17)
	a.sidebarActions = append(a.sidebarActions, a.button(sx+148, by, 28, 24, "brush_up", "+", false))
	label("Pick: "+a.session.PickerMode().String(), sx, by+44)

	// Layers
	hy := sy + 150
	label("Layers", sx, hy+16)
	a.sidebarActions = append(a.sidebarActions, a.button(sx+innerW-56, hy, 56, 22, "layer_add", "+ Add", false))

	activeID := a.session.ActiveLayer().ID
	rowH := layout.LayerRowH
	for i, l := range a.session.Layers() {
		ry := layout.LayerRowY(i)
		if ry+rowH > layout.SidebarY+layout.SidebarH {
			break
		}
		bg := a.theme.LayerRow
		if l.ID == activeID {
			bg = a.theme.LayerActive
		}
		a.frameBuffer.FillRect(sx, ry, innerW, rowH, bg)
		a.frameBuffer.StrokeRect(sx, ry, innerW, rowH, 1, a.theme.ButtonBorder)

		bh := rowH - 8
		bw := 18
		vis := "-"
		if l.Visible {
			vis = "V"
		}
		a.sidebarActions = append(a.sidebarActions, a.button(sx+4, ry+4, bw, bh, "layer_vis:"+l.ID, vis, l.Visible))

		x := sx + innerW - 4 - bw
		for _, b := range []struct{ verb, label string }{{"layer_del", "x"}, {"layer_down", "v"}, {"layer_up", "^"}} {
			a.sidebarActions = append(a.sidebarActions, a.button(x, ry+4, bw, bh, b.verb+":"+l.ID, b.label, false))
			x -= bw + 2
		}
		x -= 4
		a.sidebarActions = append(a.sidebarActions, a.button(x, ry+4, bw, bh, "layer_op_up:"+l.ID, "+", false))
		x -= 32
		c := a.theme.Label
		if !l.Visible {
			c = a.theme.LabelMuted
		}
		a.sidebarLabels = append(a.sidebarLabels, textLabel{text: fmt.Sprintf("%3d%%", l.Opacity), x: x + 2, y: ry + rowH/2 + 5, c: c})
		x -= bw + 2
		a.sidebarActions = append(a.sidebarActions, a.button(x, ry+4, bw, bh, "layer_op_down:"+l.ID, "-", false))

		nameX := sx + 4 + bw + 4
		sel := rect{x: nameX, y: ry + 2, w: x - nameX - 4, h: rowH - 4}
		a.sidebarActions = append(a.sidebarActions, actionButton{id: "layer:" + l.ID, r: sel, active: l.ID == activeID})
		a.sidebarLabels = append(a.sidebarLabels, textLabel{text: l.Name, x: nameX + 4, y: ry + rowH/2 + 5, c: c})
	}
}

func (a *App) drawButtonLabels(screen *ebiten.Image, buttons []actionButton) {
	ascent := a.face.Metrics().Ascent.Round()
	descent := a.face.Metrics().Descent.Round()
	textHeight := ascent + descent
	for _, btn := range buttons {
		if btn.label == "" {
			continue
		}
		c := a.theme.Label
		if btn.active {
			c = a.theme.LabelActive
		}
		tw := a.measureString(btn.label)
		x := btn.r.x + (btn.r.w-tw)/2
		baseline := btn.r.y + (btn.r.h+textHeight)/2 - descent
		text.Draw(screen, btn.label, a.face, x, baseline, c)
	}
}

// measureString returns the pixel advance of s in the UI face.
func (a *App) measureString(s string) int {
	if a.face == nil || s == "" {
		return 0
	}
	adv := font.MeasureString(a.face, s)
	px := (int(adv) + 32) >> 6
	if px < 0 {
		px = 0
	}
	return px
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
