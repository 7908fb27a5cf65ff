// Package history keeps a bounded, linear undo/redo stack of scene
// snapshots. Pushing after an undo discards the redo branch.
package history

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

const DefaultMaxSteps = 30

var (
	ErrAtHistoryStart = errors.New("history: nothing to undo")
	ErrAtHistoryEnd   = errors.New("history: nothing to redo")
)

// Snapshot is an opaque, immutable copy of a serialized scene. The stack
// never looks inside it.
type Snapshot struct {
	data []byte
}

func NewSnapshot(b []byte) Snapshot {
	return Snapshot{data: append([]byte(nil), b...)}
}

func (s Snapshot) Bytes() []byte { return append([]byte(nil), s.data...) }
func (s Snapshot) Len() int      { return len(s.data) }
func (s Snapshot) IsZero() bool  { return s.data == nil }

// Digest is a short content fingerprint, used for logging and comparison.
func (s Snapshot) Digest() string {
	sum := blake2b.Sum256(s.data)
	return hex.EncodeToString(sum[:8])
}

type Stack struct {
	snaps    []Snapshot
	index    int
	maxSteps int
}

func New(maxSteps int) *Stack {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Stack{index: -1, maxSteps: maxSteps, snaps: make([]Snapshot, 0, maxSteps)}
}

func (h *Stack) Push(s Snapshot) {
	h.snaps = append(h.snaps[:h.index+1], s)
	if len(h.snaps) > h.maxSteps {
		drop := len(h.snaps) - h.maxSteps
		copy(h.snaps, h.snaps[drop:])
		for i := len(h.snaps) - drop; i < len(h.snaps); i++ {
			h.snaps[i] = Snapshot{}
		}
		h.snaps = h.snaps[:h.maxSteps]
	}
	h.index = len(h.snaps) - 1
}

func (h *Stack) Undo() (Snapshot, error) {
	if !h.CanUndo() {
		return Snapshot{}, ErrAtHistoryStart
	}
	h.index--
	return h.snaps[h.index], nil
}

func (h *Stack) Redo() (Snapshot, error) {
	if !h.CanRedo() {
		return Snapshot{}, ErrAtHistoryEnd
	}
	h.index++
	return h.snaps[h.index], nil
}

func (h *Stack) CanUndo() bool { return h.index > 0 }
func (h *Stack) CanRedo() bool { return h.index < len(h.snaps)-1 }
func (h *Stack) Len() int      { return len(h.snaps) }
func (h *Stack) Index() int    { return h.index }
func (h *Stack) MaxSteps() int { return h.maxSteps }

func (h *Stack) Current() (Snapshot, bool) {
	if h.index < 0 {
		return Snapshot{}, false
	}
	return h.snaps[h.index], true
}

func (h *Stack) Reset() {
	for i := range h.snaps {
		h.snaps[i] = Snapshot{}
	}
	h.snaps = h.snaps[:0]
	h.index = -1
}
