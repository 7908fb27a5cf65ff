// Package editor implements the editing session: the tool state machine,
// shape construction, history commits and layer commands. Rendering is
// delegated to a SceneRenderer.
package editor

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"artboard/internal/history"
	"artboard/internal/input"
	"artboard/internal/layers"
	"artboard/internal/render"

	"github.com/jonboulle/clockwork"
)

const (
	MinBrushSize     = 1
	MaxBrushSize     = 100
	DefaultBrushSize = 5
)

type GestureState int

const (
	Idle GestureState = iota
	Constructing
	Drawing
)

func (g GestureState) String() string {
	switch g {
	case Constructing:
		return "constructing"
	case Drawing:
		return "drawing"
	default:
		return "idle"
	}
}

// Export is a rasterized copy of the scene ready to be written out.
type Export struct {
	Name   string
	Format string
	Data   []byte
}

type Session struct {
	renderer SceneRenderer
	logger   *slog.Logger
	clock    clockwork.Clock

	history *history.Stack
	layers  *layers.Registry

	tool       Tool
	color      color.RGBA
	brushSize  int
	background color.RGBA
	pickerMode PickerMode

	state   GestureState
	builder ShapeBuilder

	imports  chan importResult
	inflight int

	listeners []func(Command)
	last      Command
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithMaxHistory(n int) Option {
	return func(s *Session) { s.history = history.New(n) }
}

// WithBackground sets the canvas background, which is also the eraser color.
func WithBackground(c color.RGBA) Option {
	return func(s *Session) { s.background = opaque(c) }
}

func WithPickerMode(m PickerMode) Option {
	return func(s *Session) { s.pickerMode = m }
}

func WithColor(c color.RGBA) Option {
	return func(s *Session) { s.color = opaque(c) }
}

func WithBrushSize(n int) Option {
	return func(s *Session) { s.brushSize = clampBrush(n) }
}

func WithLayerRegistry(r *layers.Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.layers = r
		}
	}
}

// New creates a session over r. A nil renderer is allowed; pointer input is
// ignored until one is attached.
func New(r SceneRenderer, opts ...Option) (*Session, error) {
	s := &Session{
		logger:     slog.Default(),
		clock:      clockwork.NewRealClock(),
		history:    history.New(history.DefaultMaxSteps),
		tool:       ToolFreehand,
		color:      DefaultColor,
		brushSize:  DefaultBrushSize,
		background: DefaultBackground,
		imports:    make(chan importResult, 8),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.layers == nil {
		s.layers = layers.NewRegistry()
	}
	if r == nil {
		return s, nil
	}
	if err := s.Attach(r); err != nil {
		return nil, err
	}
	return s, nil
}

// Attach binds r as the live scene and records its current content as the
// blank state undo returns to. Passing nil detaches the renderer.
func (s *Session) Attach(r SceneRenderer) error {
	s.cancelGesture()
	s.history.Reset()
	s.renderer = r
	if r == nil {
		return nil
	}
	snap, err := r.Serialize()
	if err != nil {
		s.renderer = nil
		return fmt.Errorf("editor: initial snapshot: %w", err)
	}
	s.history.Push(snap)
	if bs, ok := r.(BackgroundSource); ok {
		s.background = opaque(bs.Background())
	}
	s.syncLayers()
	s.configureBrush()
	s.logger.Debug("renderer attached", "snapshot", snap.Digest(), "bytes", snap.Len())
	return nil
}

func (s *Session) Renderer() SceneRenderer            { return s.renderer }
func (s *Session) Tool() Tool                         { return s.tool }
func (s *Session) Color() color.RGBA                  { return s.color }
func (s *Session) BrushSize() int                     { return s.brushSize }
func (s *Session) Background() color.RGBA             { return s.background }
func (s *Session) PickerMode() PickerMode             { return s.pickerMode }
func (s *Session) State() GestureState                { return s.state }
func (s *Session) LastCommand() Command               { return s.last }
func (s *Session) CanUndo() bool                      { return s.history.CanUndo() }
func (s *Session) CanRedo() bool                      { return s.history.CanRedo() }
func (s *Session) HistoryLen() int                    { return s.history.Len() }
func (s *Session) HistoryIndex() int                  { return s.history.Index() }
func (s *Session) Layers() []layers.Layer             { return s.layers.Layers() }
func (s *Session) ActiveLayer() layers.Layer          { return s.layers.Active() }
func (s *Session) PendingShape() (PendingShape, bool) { return s.builder.Pending() }

// OnCommand registers fn to run after every applied command.
func (s *Session) OnCommand(fn func(Command)) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// HandleEvent routes one raw input event through the tool state machine.
func (s *Session) HandleEvent(ev input.Event) {
	if s.renderer == nil {
		return
	}
	switch ev.Type {
	case input.EventResize:
		s.renderer.SetViewportSize(ev.Width, ev.Height)
	case input.EventKeyDown:
		s.handleKey(ev)
	case input.EventMouseDown:
		s.pointerDown(s.renderer.MapPointer(ev))
	case input.EventMouseMove:
		s.pointerMove(s.renderer.MapPointer(ev))
	case input.EventMouseUp:
		s.pointerUp(s.renderer.MapPointer(ev))
	case input.EventClick:
		s.click(s.renderer.MapPointer(ev))
	}
}

func (s *Session) pointerDown(p Point) {
	if s.state != Idle {
		return
	}
	switch {
	case s.tool.Bounded():
		kind := ShapeRect
		if s.tool == ToolCircle {
			kind = ShapeCircle
		}
		ps := s.builder.Begin(kind, p, OutlineStyle(s.color, s.brushSize, s.layers.ActiveID()))
		s.builder.Attach(s.renderer.InsertObject(ps.Desc))
		s.state = Constructing
	case s.tool.Continuous():
		s.configureBrush()
		s.renderer.BeginPath(p, s.layers.ActiveID())
		s.state = Drawing
	}
}

func (s *Session) pointerMove(p Point) {
	switch s.state {
	case Constructing:
		d, ok := s.builder.Update(p)
		if !ok {
			return
		}
		ps, _ := s.builder.Pending()
		s.renderer.UpdateObject(ps.Handle, d)
	case Drawing:
		s.renderer.ExtendPath(p)
	}
}

func (s *Session) pointerUp(p Point) {
	switch s.state {
	case Constructing:
		s.pointerMove(p)
		s.finishShape()
	case Drawing:
		s.renderer.ExtendPath(p)
		h, ok := s.renderer.EndPath()
		s.finishStroke(h, ok)
	}
}

// PathCompleted is the renderer's notification that native path capture
// finished on its own. A stroke already finished by pointer-up is ignored.
func (s *Session) PathCompleted(h ObjectHandle) {
	if s.renderer == nil || s.state != Drawing {
		return
	}
	s.finishStroke(h, h != 0)
}

func (s *Session) finishShape() {
	ps, ok := s.builder.Finish()
	s.state = Idle
	if !ok {
		return
	}
	if Degenerate(ps.Desc) {
		s.renderer.RemoveObject(ps.Handle)
		s.apply(Command{Kind: ShapeDiscarded, Shape: ps.Kind, Handle: ps.Handle})
		return
	}
	s.apply(Command{Kind: ShapeCommitted, Shape: ps.Kind, Handle: ps.Handle, Layer: ps.Desc.Layer})
}

func (s *Session) finishStroke(h ObjectHandle, ok bool) {
	s.state = Idle
	if !ok {
		return
	}
	s.apply(Command{Kind: StrokeCommitted, Tool: s.tool, Handle: h, Layer: s.layers.ActiveID()})
}

func (s *Session) click(p Point) {
	if s.state != Idle {
		return
	}
	switch s.tool {
	case ToolImageImport:
		at := p
		s.apply(Command{Kind: ImageRequested, At: &at})
	case ToolColorPicker:
		s.pick(p)
	}
}

// cancelGesture abandons an unfinished shape or stroke without committing.
func (s *Session) cancelGesture() {
	switch s.state {
	case Constructing:
		if ps, ok := s.builder.Cancel(); ok && s.renderer != nil {
			s.renderer.RemoveObject(ps.Handle)
		}
	case Drawing:
		if s.renderer != nil {
			s.renderer.CancelPath()
		}
	}
	s.state = Idle
}

func (s *Session) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownTool, int(t))
	}
	s.cancelGesture()
	if s.renderer != nil {
		s.renderer.ClearSelection()
	}
	s.tool = t
	s.configureBrush()
	s.apply(Command{Kind: ToolChanged, Tool: t})
	return nil
}

func (s *Session) SetToolByName(name string) error {
	t, err := ParseTool(name)
	if err != nil {
		return err
	}
	return s.SetTool(t)
}

func (s *Session) SetColor(c color.RGBA) {
	s.color = opaque(c)
	s.configureBrush()
	s.apply(Command{Kind: ColorChanged, Color: s.color})
}

// SetBrushSize stores n clamped to [MinBrushSize, MaxBrushSize] and returns
// the stored value.
func (s *Session) SetBrushSize(n int) int {
	s.brushSize = clampBrush(n)
	s.configureBrush()
	s.apply(Command{Kind: BrushSizeChanged, Size: s.brushSize})
	return s.brushSize
}

func (s *Session) configureBrush() {
	if s.renderer == nil || !s.tool.Continuous() {
		return
	}
	b := Brush{Color: s.color, Width: float64(s.brushSize)}
	if s.tool == ToolEraser {
		b.Color = s.background
	}
	s.renderer.SetBrush(b)
}

func (s *Session) Undo() error {
	if s.renderer == nil {
		return ErrRendererUnavailable
	}
	s.cancelGesture()
	snap, err := s.history.Undo()
	if err != nil {
		s.logger.Debug("undo ignored", "error", err)
		return err
	}
	if err := s.renderer.Restore(snap); err != nil {
		_, _ = s.history.Redo()
		s.logger.Warn("undo restore failed", "error", err)
		return fmt.Errorf("editor: undo: %w", err)
	}
	s.apply(Command{Kind: Undone, Digest: snap.Digest()})
	return nil
}

func (s *Session) Redo() error {
	if s.renderer == nil {
		return ErrRendererUnavailable
	}
	s.cancelGesture()
	snap, err := s.history.Redo()
	if err != nil {
		s.logger.Debug("redo ignored", "error", err)
		return err
	}
	if err := s.renderer.Restore(snap); err != nil {
		_, _ = s.history.Undo()
		s.logger.Warn("redo restore failed", "error", err)
		return fmt.Errorf("editor: redo: %w", err)
	}
	s.apply(Command{Kind: Redone, Digest: snap.Digest()})
	return nil
}

// SetLayerRegistry swaps in a whole layer stack, as when a project is
// opened. A nil registry is ignored.
func (s *Session) SetLayerRegistry(r *layers.Registry) {
	if r == nil {
		return
	}
	s.cancelGesture()
	s.layers = r
	s.apply(Command{Kind: LayersReplaced, Layer: r.ActiveID()})
}

func (s *Session) AddLayer() layers.Layer {
	l := s.layers.Add()
	s.apply(Command{Kind: LayerAdded, Layer: l.ID})
	return l
}

func (s *Session) DeleteLayer(id string) error {
	if err := s.layers.Delete(id); err != nil {
		s.logger.Warn("delete layer rejected", "layer", id, "error", err)
		return err
	}
	s.apply(Command{Kind: LayerDeleted, Layer: id})
	return nil
}

// MoveLayer reports false when the layer is unknown or already at the edge.
func (s *Session) MoveLayer(id string, dir layers.Direction) bool {
	if !s.layers.Move(id, dir) {
		return false
	}
	s.apply(Command{Kind: LayerMoved, Layer: id, Value: int(dir)})
	return true
}

func (s *Session) SetLayerVisibility(id string, visible bool) error {
	if err := s.layers.SetVisibility(id, visible); err != nil {
		return err
	}
	v := 0
	if visible {
		v = 1
	}
	s.apply(Command{Kind: LayerVisibilityChanged, Layer: id, Value: v})
	return nil
}

func (s *Session) ToggleLayerVisibility(id string) error {
	l, ok := s.layers.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", layers.ErrLayerNotFound, id)
	}
	return s.SetLayerVisibility(id, !l.Visible)
}

func (s *Session) SetLayerOpacity(id string, value int) error {
	if err := s.layers.SetOpacity(id, value); err != nil {
		return err
	}
	l, _ := s.layers.Get(id)
	s.apply(Command{Kind: LayerOpacityChanged, Layer: id, Value: l.Opacity})
	return nil
}

// SelectLayer ignores unknown ids.
func (s *Session) SelectLayer(id string) {
	if !s.layers.Select(id) {
		return
	}
	s.apply(Command{Kind: LayerSelected, Layer: id})
}

func (s *Session) syncLayers() {
	if la, ok := s.renderer.(LayerAware); ok {
		la.SetLayers(s.layers.Layers(), s.layers.ActiveID())
	}
}

// ExportImage rasterizes the scene. The name is dated from the session clock.
func (s *Session) ExportImage(format string, scale float64) (Export, error) {
	if s.renderer == nil {
		return Export{}, ErrRendererUnavailable
	}
	format, err := render.NormalizeFormat(format)
	if err != nil {
		return Export{}, err
	}
	data, err := s.renderer.ExportRaster(format, scale)
	if err != nil {
		s.logger.Warn("export failed", "format", format, "scale", scale, "error", err)
		return Export{}, fmt.Errorf("editor: export: %w", err)
	}
	name := fmt.Sprintf("artboard-%s.%s", s.clock.Now().Format("2006-01-02"), render.Extension(format))
	s.logger.Info("scene exported", "name", name, "bytes", len(data))
	return Export{Name: name, Format: format, Data: data}, nil
}

// apply is the one place that decides whether a command enters history.
// Listeners see the command after that decision.
func (s *Session) apply(cmd Command) Command {
	switch cmd.Kind {
	case ShapeCommitted, StrokeCommitted, ImageInserted:
		if cmd.Err == nil {
			digest, err := s.commit()
			if err != nil {
				cmd.Err = err
			} else {
				cmd.Committed = true
				cmd.Digest = digest
			}
		}
	case LayerAdded, LayerDeleted, LayerMoved, LayerVisibilityChanged, LayerOpacityChanged, LayerSelected, LayersReplaced:
		s.syncLayers()
		s.logger.Info("layers changed", "command", cmd.Kind.String(), "layer", cmd.Layer, "active", s.layers.ActiveID(), "count", s.layers.Len())
	case ImageImportFailed:
		s.logger.Warn("image import failed", "error", cmd.Err)
	}

	if cmd.Committed {
		s.logger.Debug("history commit", "command", cmd.Kind.String(), "snapshot", cmd.Digest, "index", s.history.Index(), "len", s.history.Len())
	}
	s.last = cmd
	for _, fn := range s.listeners {
		fn(cmd)
	}
	return cmd
}

func (s *Session) commit() (string, error) {
	if s.renderer == nil {
		return "", ErrRendererUnavailable
	}
	snap, err := s.renderer.Serialize()
	if err != nil {
		s.logger.Warn("snapshot failed", "error", err)
		return "", fmt.Errorf("editor: snapshot: %w", err)
	}
	s.history.Push(snap)
	return snap.Digest(), nil
}

func clampBrush(n int) int {
	if n < MinBrushSize {
		return MinBrushSize
	}
	if n > MaxBrushSize {
		return MaxBrushSize
	}
	return n
}

// IsBoundary reports the informational history errors a host can ignore.
func IsBoundary(err error) bool {
	return errors.Is(err, history.ErrAtHistoryStart) || errors.Is(err, history.ErrAtHistoryEnd)
}
