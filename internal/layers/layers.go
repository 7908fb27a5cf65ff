// Package layers keeps the ordered layer list of an editing session. Index 0
// is the top of the list. The registry never becomes empty and its active
// id always names an existing layer.
package layers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	MinOpacity = 0
	MaxOpacity = 100
)

var (
	ErrLastLayerProtected = errors.New("layers: cannot delete the only layer")
	ErrLayerNotFound      = errors.New("layers: layer not found")
	ErrEmptyRegistry      = errors.New("layers: no layers to restore")
	ErrInvalidLayer       = errors.New("layers: missing or duplicate layer id")
)

type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

type Layer struct {
	ID      string
	Name    string
	Visible bool
	Opacity int
}

type Registry struct {
	layers  []Layer
	active  string
	counter int
	newID   func() string
}

type Option func(*Registry)

// WithIDGenerator replaces the UUID generator used for new layer ids.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	r.Add()
	return r
}

// NewRegistryFrom rebuilds a registry from a saved layer list, top first.
// An unknown active id falls back to the bottom layer. Sequential naming
// continues after the highest "Layer N" already present.
func NewRegistryFrom(ls []Layer, active string, opts ...Option) (*Registry, error) {
	if len(ls) == 0 {
		return nil, ErrEmptyRegistry
	}
	r := &Registry{newID: uuid.NewString, counter: len(ls)}
	for _, opt := range opts {
		opt(r)
	}
	seen := make(map[string]bool, len(ls))
	for _, l := range ls {
		if l.ID == "" || seen[l.ID] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLayer, l.ID)
		}
		seen[l.ID] = true
		l.Opacity = clampOpacity(l.Opacity)
		r.layers = append(r.layers, l)
		if n, ok := strings.CutPrefix(l.Name, "Layer "); ok {
			if v, err := strconv.Atoi(n); err == nil && v > r.counter {
				r.counter = v
			}
		}
	}
	r.active = r.layers[len(r.layers)-1].ID
	if seen[active] {
		r.active = active
	}
	return r, nil
}

// Add appends a layer with the next sequential name and makes it active.
func (r *Registry) Add() Layer {
	r.counter++
	l := Layer{
		ID:      r.newID(),
		Name:    fmt.Sprintf("Layer %d", r.counter),
		Visible: true,
		Opacity: MaxOpacity,
	}
	r.layers = append(r.layers, l)
	r.active = l.ID
	return l
}

func (r *Registry) Delete(id string) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if len(r.layers) == 1 {
		return ErrLastLayerProtected
	}
	r.layers = append(r.layers[:i], r.layers[i+1:]...)
	if r.active == id {
		r.active = r.layers[len(r.layers)-1].ID
	}
	return nil
}

// Move swaps the layer with its neighbour. It reports false at either
// boundary or for an unknown id.
func (r *Registry) Move(id string, dir Direction) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(r.layers) {
		return false
	}
	r.layers[i], r.layers[j] = r.layers[j], r.layers[i]
	return true
}

func (r *Registry) SetVisibility(id string, visible bool) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	r.layers[i].Visible = visible
	return nil
}

func (r *Registry) ToggleVisibility(id string) error {
	l, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	return r.SetVisibility(id, !l.Visible)
}

// SetOpacity stores value clamped to [MinOpacity, MaxOpacity].
func (r *Registry) SetOpacity(id string, value int) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	r.layers[i].Opacity = clampOpacity(value)
	return nil
}

// Select makes id active. Unknown ids are ignored.
func (r *Registry) Select(id string) bool {
	if r.index(id) < 0 {
		return false
	}
	r.active = id
	return true
}

func (r *Registry) Active() Layer {
	l, _ := r.Get(r.active)
	return l
}

func (r *Registry) ActiveID() string { return r.active }
func (r *Registry) Len() int         { return len(r.layers) }

func (r *Registry) Layers() []Layer {
	return append([]Layer(nil), r.layers...)
}

func (r *Registry) Get(id string) (Layer, bool) {
	i := r.index(id)
	if i < 0 {
		return Layer{}, false
	}
	return r.layers[i], true
}

func (r *Registry) Index(id string) int { return r.index(id) }

func (r *Registry) index(id string) int {
	for i := range r.layers {
		if r.layers[i].ID == id {
			return i
		}
	}
	return -1
}

func clampOpacity(v int) int {
	if v < MinOpacity {
		return MinOpacity
	}
	if v > MaxOpacity {
		return MaxOpacity
	}
	return v
}
