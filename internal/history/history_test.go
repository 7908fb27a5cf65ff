package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(s string) Snapshot { return NewSnapshot([]byte(s)) }

func TestUndoAllCommitsReturnsToInitial(t *testing.T) {
	for _, n := range []int{1, 2, 5, 29} {
		t.Run(fmt.Sprintf("commits=%d", n), func(t *testing.T) {
			h := New(DefaultMaxSteps)
			h.Push(snap("blank"))
			for i := 0; i < n; i++ {
				h.Push(snap(fmt.Sprintf("s%d", i)))
			}
			for i := 0; i < n; i++ {
				require.True(t, h.CanUndo(), "undo %d", i)
				_, err := h.Undo()
				require.NoError(t, err)
			}
			assert.False(t, h.CanUndo())
			cur, ok := h.Current()
			require.True(t, ok)
			assert.Equal(t, "blank", string(cur.Bytes()))

			_, err := h.Undo()
			assert.ErrorIs(t, err, ErrAtHistoryStart)
		})
	}
}

func TestRedoAfterPushFails(t *testing.T) {
	h := New(0)
	h.Push(snap("a"))
	h.Push(snap("b"))
	_, err := h.Redo()
	assert.ErrorIs(t, err, ErrAtHistoryEnd)
	assert.False(t, h.CanRedo())
}

func TestUndoThenRedo(t *testing.T) {
	h := New(0)
	h.Push(snap("a"))
	h.Push(snap("b"))

	got, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, "a", string(got.Bytes()))
	assert.True(t, h.CanRedo())

	got, err = h.Redo()
	require.NoError(t, err)
	assert.Equal(t, "b", string(got.Bytes()))
	assert.Equal(t, 1, h.Index())
}

func TestPushAfterUndoDiscardsBranch(t *testing.T) {
	h := New(0)
	h.Push(snap("blank"))
	h.Push(snap("a"))
	h.Push(snap("b"))
	_, err := h.Undo()
	require.NoError(t, err)

	h.Push(snap("c"))
	assert.Equal(t, 3, h.Len())
	_, err = h.Redo()
	assert.ErrorIs(t, err, ErrAtHistoryEnd)

	got, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, "a", string(got.Bytes()))
}

func TestPushBeyondMaxDropsOldest(t *testing.T) {
	h := New(DefaultMaxSteps)
	for i := 0; i <= DefaultMaxSteps; i++ {
		h.Push(snap(fmt.Sprintf("s%d", i)))
	}
	assert.Equal(t, DefaultMaxSteps, h.Len())
	assert.Equal(t, DefaultMaxSteps-1, h.Index())

	var oldest Snapshot
	for h.CanUndo() {
		s, err := h.Undo()
		require.NoError(t, err)
		oldest = s
	}
	assert.Equal(t, "s1", string(oldest.Bytes()))
}

func TestIndexInvariantHolds(t *testing.T) {
	h := New(3)
	assert.Equal(t, -1, h.Index())
	for i := 0; i < 10; i++ {
		h.Push(snap(fmt.Sprint(i)))
		if i%3 == 0 {
			_, _ = h.Undo()
		}
		require.LessOrEqual(t, h.Len(), 3)
		require.GreaterOrEqual(t, h.Index(), 0)
		require.Less(t, h.Index(), h.Len())
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	raw := []byte("scene")
	s := NewSnapshot(raw)
	raw[0] = 'X'
	out := s.Bytes()
	out[1] = 'Y'

	assert.Equal(t, "scene", string(s.Bytes()))
	assert.Equal(t, snap("scene").Digest(), s.Digest())
	assert.NotEqual(t, snap("other").Digest(), s.Digest())
	assert.Len(t, s.Digest(), 16)
}

func TestReset(t *testing.T) {
	h := New(0)
	h.Push(snap("a"))
	h.Reset()
	assert.Equal(t, 0, h.Len())
	_, ok := h.Current()
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
