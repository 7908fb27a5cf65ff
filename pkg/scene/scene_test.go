package scene

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScene() *Scene {
	s := NewScene("Sketch", 320, 200, 0xFFFFFFFF)
	s.Add(Object{Kind: ObjectKindRect, Layer: "l1", X: 10, Y: 10, W: 40, H: 30, StrokeRGBA: 0x6A5ACDFF, StrokeWidth: 2.5})
	s.Add(Object{Kind: ObjectKindCircle, Layer: "l1", X: 100, Y: 80, Radius: 12, StrokeRGBA: 0x000000FF, StrokeWidth: 1})
	s.Add(Object{Kind: ObjectKindPath, Layer: "l2", Points: []Point{{1, 2}, {3, 4}, {5, 6}}, StrokeRGBA: 0xFF0000FF, StrokeWidth: 5})
	s.Add(Object{Kind: ObjectKindImage, Layer: "l2", X: 5, Y: 6, W: 4, H: 2, Bitmap: &Bitmap{W: 2, H: 1, Pix: []byte{1, 2, 3, 255, 4, 5, 6, 255}}})
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := sampleScene()
	blob, err := Encode(s)
	require.NoError(t, err)

	got, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, s.Metadata, got.Metadata)
	require.Len(t, got.Objects, 4)
	assert.Equal(t, s.Objects, got.Objects)
}

func TestAddAssignsUniqueIncreasingIDs(t *testing.T) {
	s := NewScene("", 10, 10, 0)
	a := s.Add(Object{Kind: ObjectKindRect})
	b := s.Add(Object{Kind: ObjectKindRect})
	require.True(t, s.Remove(a))
	c := s.Add(Object{Kind: ObjectKindRect})

	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
	assert.Equal(t, uint64(3), c)
	assert.False(t, s.Remove(a))
}

func TestCloneSceneIsDeep(t *testing.T) {
	s := withLayers(sampleScene())
	c := CloneScene(s)
	c.Objects[2].Points[0].X = 99
	c.Objects[3].Bitmap.Pix[0] = 42
	c.Layers[0].Name = "renamed"

	assert.Equal(t, "Layer 1", s.Layers[0].Name)
	assert.Equal(t, 1.0, s.Objects[2].Points[0].X)
	assert.Equal(t, byte(1), s.Objects[3].Bitmap.Pix[0])
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob := make([]byte, headerSize)
	copy(blob, "not-a-scene-at-all")
	_, err := Decode(blob)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	blob, err := Encode(sampleScene())
	require.NoError(t, err)
	binary.LittleEndian.PutUint16(blob[magicLen:magicLen+2], 9)

	_, err = Decode(blob)
	assert.ErrorIs(t, err, ErrUnsupportedVer)
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	blob, err := Encode(sampleScene())
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xFF

	_, err = Decode(blob)
	assert.ErrorContains(t, err, "crc mismatch")
}

func TestDecodeRejectsOverlappingRanges(t *testing.T) {
	blob, err := Encode(sampleScene())
	require.NoError(t, err)
	first := headerSize
	second := headerSize + tocEntSize
	off := binary.LittleEndian.Uint64(blob[first+9 : first+17])
	binary.LittleEndian.PutUint64(blob[second+9:second+17], off)

	_, err = Decode(blob)
	assert.ErrorIs(t, err, ErrOverlappingObjects)
}

func TestValidateRejectsMalformedObjects(t *testing.T) {
	s := NewScene("", 10, 10, 0)
	s.Objects = append(s.Objects, Object{ID: 1, Kind: ObjectKindPath})
	assert.ErrorContains(t, Validate(s), "path has no points")

	s.Objects = []Object{{ID: 1, Kind: ObjectKindImage, Bitmap: &Bitmap{W: 2, H: 2, Pix: make([]byte, 3)}}}
	assert.ErrorContains(t, Validate(s), "bitmap 2x2")

	s.Objects = []Object{{ID: 1, Kind: ObjectKindRect}, {ID: 1, Kind: ObjectKindRect}}
	assert.ErrorContains(t, Validate(s), "duplicate object id")
}

func TestSaveLoadCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art", "sketch.artb")
	s := sampleScene()
	require.NoError(t, SaveWithOptions(path, s, SaveOptions{Compression: true}))

	info, err := InspectProject(path)
	require.NoError(t, err)
	assert.False(t, info.Bare)
	assert.True(t, info.Compressed)
	assert.False(t, info.Encrypted)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Objects, got.Objects)
}

func TestEncryptedSaveRequiresPasswordOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.artb")
	s := sampleScene()
	require.NoError(t, SaveWithOptions(path, s, SaveOptions{
		Compression: true,
		Encryption:  EncryptionOptions{Enabled: true, Password: "hunter2"},
	}))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = LoadWithOptions(path, LoadOptions{Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	got, err := LoadWithOptions(path, LoadOptions{Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, s.Objects, got.Objects)
}

func TestSaveRejectsEmptyPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.artb")
	err := SaveWithOptions(path, sampleScene(), SaveOptions{Encryption: EncryptionOptions{Enabled: true, Password: "  "}})
	assert.ErrorIs(t, err, ErrPasswordRequired)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProjectHeaderDescribesScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.artb")
	s := withLayers(sampleScene())
	require.NoError(t, Save(path, s))

	info, err := InspectProject(path)
	require.NoError(t, err)
	assert.Equal(t, ProjectInfo{
		Version:    ProjectVersionV1,
		Width:      320,
		Height:     200,
		Background: 0xFFFFFFFF,
		Objects:    4,
		Layers:     2,
	}, info)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ARTBOARD_PROJECT", string(b[:16]))
}

func TestBareSnapshotStillLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.artb")
	blob, err := Encode(sampleScene())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	info, err := InspectProject(path)
	require.NoError(t, err)
	assert.True(t, info.Bare)
	assert.Equal(t, 4, info.Objects)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, got.Objects, 4)
}

func TestLayersSurviveSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layers.artb")
	s := withLayers(sampleScene())
	require.NoError(t, SaveWithOptions(path, s, SaveOptions{Compression: true}))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Layers, got.Layers)
	assert.Equal(t, s.Objects, got.Objects)
}

func TestTamperedHeaderIsRejected(t *testing.T) {
	dir := t.TempDir()
	widthAt := len(projectMagic) + 4

	plain := filepath.Join(dir, "plain.artb")
	require.NoError(t, Save(plain, sampleScene()))
	b, err := os.ReadFile(plain)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(b[widthAt:], 999)
	require.NoError(t, os.WriteFile(plain, b, 0o644))
	_, err = Load(plain)
	assert.ErrorIs(t, err, ErrHeaderMismatch)

	sealed := filepath.Join(dir, "sealed.artb")
	require.NoError(t, SaveWithOptions(sealed, sampleScene(), SaveOptions{Encryption: EncryptionOptions{Enabled: true, Password: "pw"}}))
	b, err = os.ReadFile(sealed)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(b[widthAt:], 999)
	require.NoError(t, os.WriteFile(sealed, b, 0o644))
	_, err = LoadWithOptions(sealed, LoadOptions{Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	b = b[:len(b)-1]
	require.NoError(t, os.WriteFile(sealed, b, 0o644))
	_, err = LoadWithOptions(sealed, LoadOptions{Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidProjectFile)
}

func TestValidateRejectsBadLayers(t *testing.T) {
	s := NewScene("", 10, 10, 0)
	s.Layers = []Layer{{ID: "a", Opacity: 100}, {ID: "a", Opacity: 10}}
	assert.ErrorContains(t, Validate(s), "duplicate layer id")

	s.Layers = []Layer{{ID: "", Opacity: 10}}
	assert.ErrorContains(t, Validate(s), "valid id")

	s.Layers = []Layer{{ID: "a", Opacity: 101}}
	assert.ErrorContains(t, Validate(s), "out of range")
}

func withLayers(s *Scene) *Scene {
	s.Layers = []Layer{
		{ID: "l1", Name: "Layer 1", Visible: true, Opacity: 100},
		{ID: "l2", Name: "Ink", Visible: false, Opacity: 35, Active: true},
	}
	return s
}
