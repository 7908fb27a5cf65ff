package layers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("layer-%d", n)
	})
}

func names(r *Registry) []string {
	var out []string
	for _, l := range r.Layers() {
		out = append(out, l.Name)
	}
	return out
}

func TestNewRegistryHasOneActiveLayer(t *testing.T) {
	r := NewRegistry(seqIDs())
	require.Equal(t, 1, r.Len())
	l := r.Active()
	assert.Equal(t, "layer-1", l.ID)
	assert.Equal(t, "Layer 1", l.Name)
	assert.True(t, l.Visible)
	assert.Equal(t, MaxOpacity, l.Opacity)
}

func TestNewRegistryUsesUUIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Add()
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, r.Layers()[0].ID, a.ID)
}

func TestAddAppendsAndActivates(t *testing.T) {
	r := NewRegistry(seqIDs())
	l := r.Add()
	assert.Equal(t, "Layer 2", l.Name)
	assert.Equal(t, l.ID, r.ActiveID())
	assert.Equal(t, []string{"Layer 1", "Layer 2"}, names(r))
}

func TestNamesStaySequentialAfterDelete(t *testing.T) {
	r := NewRegistry(seqIDs())
	second := r.Add()
	require.NoError(t, r.Delete(second.ID))
	third := r.Add()
	assert.Equal(t, "Layer 3", third.Name)
}

func TestDeleteLastLayerIsProtected(t *testing.T) {
	r := NewRegistry(seqIDs())
	before := r.Layers()
	err := r.Delete("layer-1")
	assert.ErrorIs(t, err, ErrLastLayerProtected)
	assert.Equal(t, before, r.Layers())
	assert.Equal(t, "layer-1", r.ActiveID())
}

func TestDeleteActiveMiddleFallsBackToLast(t *testing.T) {
	r := NewRegistry(seqIDs())
	middle := r.Add()
	last := r.Add()
	require.True(t, r.Select(middle.ID))

	require.NoError(t, r.Delete(middle.ID))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, last.ID, r.ActiveID())
	assert.Equal(t, []string{"Layer 1", "Layer 3"}, names(r))
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	r := NewRegistry(seqIDs())
	r.Add()
	r.Add()
	require.True(t, r.Select("layer-1"))
	require.NoError(t, r.Delete("layer-2"))
	assert.Equal(t, "layer-1", r.ActiveID())
}

func TestDeleteUnknown(t *testing.T) {
	r := NewRegistry(seqIDs())
	r.Add()
	assert.ErrorIs(t, r.Delete("nope"), ErrLayerNotFound)
	assert.Equal(t, 2, r.Len())
}

func TestMoveSwapsNeighbours(t *testing.T) {
	r := NewRegistry(seqIDs())
	r.Add()
	r.Add()

	assert.True(t, r.Move("layer-2", Up))
	assert.Equal(t, []string{"Layer 2", "Layer 1", "Layer 3"}, names(r))
	assert.True(t, r.Move("layer-2", Down))
	assert.Equal(t, []string{"Layer 1", "Layer 2", "Layer 3"}, names(r))
}

func TestMoveIsNoopAtBoundaries(t *testing.T) {
	r := NewRegistry(seqIDs())
	r.Add()
	assert.False(t, r.Move("layer-1", Up))
	assert.False(t, r.Move("layer-2", Down))
	assert.False(t, r.Move("missing", Up))
	assert.Equal(t, []string{"Layer 1", "Layer 2"}, names(r))
}

func TestSetOpacityClamps(t *testing.T) {
	r := NewRegistry(seqIDs())
	cases := []struct {
		in   int
		want int
	}{
		{150, 100},
		{-5, 0},
		{42, 42},
		{0, 0},
		{100, 100},
	}
	for _, tc := range cases {
		require.NoError(t, r.SetOpacity("layer-1", tc.in))
		assert.Equal(t, tc.want, r.Active().Opacity, "input %d", tc.in)
	}
	assert.ErrorIs(t, r.SetOpacity("missing", 10), ErrLayerNotFound)
}

func TestVisibility(t *testing.T) {
	r := NewRegistry(seqIDs())
	require.NoError(t, r.SetVisibility("layer-1", false))
	assert.False(t, r.Active().Visible)
	require.NoError(t, r.ToggleVisibility("layer-1"))
	assert.True(t, r.Active().Visible)
	assert.ErrorIs(t, r.ToggleVisibility("missing"), ErrLayerNotFound)
}

func TestSelectUnknownIsSilent(t *testing.T) {
	r := NewRegistry(seqIDs())
	r.Add()
	assert.False(t, r.Select("missing"))
	assert.Equal(t, "layer-2", r.ActiveID())
	assert.True(t, r.Select("layer-1"))
	assert.Equal(t, "layer-1", r.ActiveID())
}

func TestNewRegistryFromRestoresSavedStack(t *testing.T) {
	saved := []Layer{
		{ID: "a", Name: "Layer 1", Visible: true, Opacity: 100},
		{ID: "b", Name: "Layer 4", Visible: false, Opacity: 140},
		{ID: "c", Name: "Sketch", Visible: true, Opacity: 30},
	}
	r, err := NewRegistryFrom(saved, "b", seqIDs())
	require.NoError(t, err)
	assert.Equal(t, []string{"Layer 1", "Layer 4", "Sketch"}, names(r))
	assert.Equal(t, "b", r.ActiveID())
	l, _ := r.Get("b")
	assert.False(t, l.Visible)
	assert.Equal(t, MaxOpacity, l.Opacity)

	added := r.Add()
	assert.Equal(t, "Layer 5", added.Name)
	assert.Equal(t, "layer-1", added.ID)
}

func TestNewRegistryFromFallsBackToBottomLayer(t *testing.T) {
	r, err := NewRegistryFrom([]Layer{{ID: "a", Name: "x"}, {ID: "b", Name: "y"}}, "gone")
	require.NoError(t, err)
	assert.Equal(t, "b", r.ActiveID())
	assert.Equal(t, "Layer 3", r.Add().Name)
}

func TestNewRegistryFromRejectsBadInput(t *testing.T) {
	_, err := NewRegistryFrom(nil, "")
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	_, err = NewRegistryFrom([]Layer{{ID: "a"}, {ID: "a"}}, "a")
	assert.ErrorIs(t, err, ErrInvalidLayer)

	_, err = NewRegistryFrom([]Layer{{ID: ""}}, "")
	assert.ErrorIs(t, err, ErrInvalidLayer)
}
