package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"sort"
)

const (
	MagicString = "ARTBOARDSCENE1"
	VersionV1   = uint16(1)

	magicLen     = len(MagicString)
	headerSize   = magicLen + 2 + 2 + 8 + 4
	tocEntSize   = 8 + 1 + 8 + 4 + 4
	metaObjectID = uint64(0)

	bitmapAbsent  = byte(0)
	bitmapPresent = byte(1)
)

type tocEntry struct {
	ID     uint64
	Kind   ObjectKind
	Offset uint64
	Length uint32
	CRC32  uint32
}

type payloadEntry struct {
	ID      uint64
	Kind    ObjectKind
	Payload []byte
}

// Encode serializes s into the snapshot wire form: a fixed header, a table of
// contents and one CRC-checked payload per object, in paint order. A layer
// stack, when present, travels as one extra section after the metadata.
func Encode(s *Scene) ([]byte, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}

	payloads := make([]payloadEntry, 0, len(s.Objects)+1)
	payloads = append(payloads, payloadEntry{
		ID:      metaObjectID,
		Kind:    ObjectKindMetadata,
		Payload: encodeMetadata(s.Metadata),
	})
	if len(s.Layers) > 0 {
		payloads = append(payloads, payloadEntry{
			ID:      metaObjectID,
			Kind:    ObjectKindLayers,
			Payload: encodeLayers(s.Layers),
		})
	}
	for i := range s.Objects {
		payloads = append(payloads, payloadEntry{
			ID:      s.Objects[i].ID,
			Kind:    s.Objects[i].Kind,
			Payload: encodeObject(&s.Objects[i]),
		})
	}

	tocOffset := uint64(headerSize)
	tocLength := len(payloads) * tocEntSize
	out := make([]byte, headerSize+tocLength)
	copy(out[:magicLen], MagicString)

	offset := uint64(len(out))
	ptr := headerSize
	for _, p := range payloads {
		binary.LittleEndian.PutUint64(out[ptr:ptr+8], p.ID)
		out[ptr+8] = byte(p.Kind)
		binary.LittleEndian.PutUint64(out[ptr+9:ptr+17], offset)
		binary.LittleEndian.PutUint32(out[ptr+17:ptr+21], uint32(len(p.Payload)))
		binary.LittleEndian.PutUint32(out[ptr+21:ptr+25], crc32.ChecksumIEEE(p.Payload))
		ptr += tocEntSize
		out = append(out, p.Payload...)
		offset += uint64(len(p.Payload))
	}

	binary.LittleEndian.PutUint16(out[magicLen:magicLen+2], VersionV1)
	binary.LittleEndian.PutUint16(out[magicLen+2:magicLen+4], 0)
	binary.LittleEndian.PutUint64(out[magicLen+4:magicLen+12], tocOffset)
	binary.LittleEndian.PutUint32(out[magicLen+12:magicLen+16], uint32(len(payloads)))
	return out, nil
}

func Decode(blob []byte) (*Scene, error) {
	if len(blob) < headerSize || string(blob[:magicLen]) != MagicString {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(blob[magicLen : magicLen+2]); v != VersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVer, v)
	}

	tocOffset := binary.LittleEndian.Uint64(blob[magicLen+4 : magicLen+12])
	tocCount := binary.LittleEndian.Uint32(blob[magicLen+12 : magicLen+16])
	if tocOffset > uint64(len(blob)) {
		return nil, ErrInvalidTOC
	}
	if end := tocOffset + uint64(tocCount)*uint64(tocEntSize); end > uint64(len(blob)) {
		return nil, ErrInvalidTOC
	}

	entries := make([]tocEntry, 0, tocCount)
	ptr := int(tocOffset)
	for i := 0; i < int(tocCount); i++ {
		entries = append(entries, tocEntry{
			ID:     binary.LittleEndian.Uint64(blob[ptr : ptr+8]),
			Kind:   ObjectKind(blob[ptr+8]),
			Offset: binary.LittleEndian.Uint64(blob[ptr+9 : ptr+17]),
			Length: binary.LittleEndian.Uint32(blob[ptr+17 : ptr+21]),
			CRC32:  binary.LittleEndian.Uint32(blob[ptr+21 : ptr+25]),
		})
		ptr += tocEntSize
	}
	if err := validateEntryRanges(entries, len(blob)); err != nil {
		return nil, err
	}

	s := &Scene{}
	sawMeta := false
	for _, e := range entries {
		payload := blob[e.Offset : e.Offset+uint64(e.Length)]
		if crc32.ChecksumIEEE(payload) != e.CRC32 {
			return nil, fmt.Errorf("scene: crc mismatch for object %d", e.ID)
		}
		switch e.Kind {
		case ObjectKindMetadata:
			m, err := decodeMetadata(payload)
			if err != nil {
				return nil, err
			}
			s.Metadata = m
			sawMeta = true
		case ObjectKindLayers:
			ls, err := decodeLayers(payload)
			if err != nil {
				return nil, err
			}
			s.Layers = ls
		case ObjectKindRect, ObjectKindCircle, ObjectKindPath, ObjectKindImage:
			o, err := decodeObject(payload)
			if err != nil {
				return nil, fmt.Errorf("scene: object %d: %w", e.ID, err)
			}
			o.ID = e.ID
			o.Kind = e.Kind
			s.Objects = append(s.Objects, o)
		default:
			// Unknown kinds stay skippable through the TOC.
		}
	}
	if !sawMeta {
		return nil, errors.New("scene: missing metadata")
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func validateEntryRanges(entries []tocEntry, fileLen int) error {
	type rng struct{ start, end uint64 }
	ranges := make([]rng, 0, len(entries))
	for _, e := range entries {
		end := e.Offset + uint64(e.Length)
		if e.Offset > uint64(fileLen) || end > uint64(fileLen) {
			return ErrInvalidObjectRange
		}
		ranges = append(ranges, rng{start: e.Offset, end: end})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].start < ranges[i-1].end {
			return ErrOverlappingObjects
		}
	}
	return nil
}

func encodeMetadata(m Metadata) []byte {
	out := make([]byte, 0, 64)
	out = appendString(out, m.Title)
	out = appendU64(out, uint64(m.CreatedUnix))
	out = appendU64(out, uint64(m.ModifiedUnix))
	out = appendU32(out, m.Width)
	out = appendU32(out, m.Height)
	out = appendU32(out, m.BackgroundRGBA)
	out = appendU64(out, m.NextID)
	return out
}

func decodeMetadata(b []byte) (Metadata, error) {
	var m Metadata
	var ok bool
	if m.Title, b, ok = readString(b); !ok {
		return m, errors.New("scene: malformed metadata title")
	}
	if len(b) < 8+8+4+4+4+8 {
		return m, errors.New("scene: malformed metadata")
	}
	m.CreatedUnix = int64(binary.LittleEndian.Uint64(b[0:8]))
	m.ModifiedUnix = int64(binary.LittleEndian.Uint64(b[8:16]))
	m.Width = binary.LittleEndian.Uint32(b[16:20])
	m.Height = binary.LittleEndian.Uint32(b[20:24])
	m.BackgroundRGBA = binary.LittleEndian.Uint32(b[24:28])
	m.NextID = binary.LittleEndian.Uint64(b[28:36])
	return m, nil
}

func encodeLayers(ls []Layer) []byte {
	out := appendU32(make([]byte, 0, 16+len(ls)*64), uint32(len(ls)))
	for _, l := range ls {
		out = appendString(out, l.ID)
		out = appendString(out, l.Name)
		out = append(out, boolByte(l.Visible), l.Opacity, boolByte(l.Active))
	}
	return out
}

func decodeLayers(b []byte) ([]Layer, error) {
	if len(b) < 4 {
		return nil, errors.New("scene: malformed layers")
	}
	count := int(binary.LittleEndian.Uint32(b[:4]))
	b = b[4:]
	// every entry takes at least 11 bytes
	if count > len(b)/11 {
		return nil, errors.New("scene: malformed layers")
	}
	ls := make([]Layer, 0, count)
	for i := 0; i < count; i++ {
		var l Layer
		var ok bool
		if l.ID, b, ok = readString(b); !ok {
			return nil, fmt.Errorf("scene: layer %d: malformed id", i)
		}
		if l.Name, b, ok = readString(b); !ok {
			return nil, fmt.Errorf("scene: layer %d: malformed name", i)
		}
		if len(b) < 3 {
			return nil, fmt.Errorf("scene: layer %d: truncated", i)
		}
		l.Visible, l.Opacity, l.Active = b[0] != 0, b[1], b[2] != 0
		b = b[3:]
		ls = append(ls, l)
	}
	return ls, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func encodeObject(o *Object) []byte {
	out := make([]byte, 0, 96+len(o.Points)*16)
	out = appendString(out, o.Layer)
	for _, v := range []float64{o.X, o.Y, o.W, o.H, o.Radius, o.StrokeWidth} {
		out = appendF64(out, v)
	}
	out = appendU32(out, o.StrokeRGBA)
	out = appendU32(out, o.FillRGBA)
	out = appendU32(out, uint32(len(o.Points)))
	for _, p := range o.Points {
		out = appendF64(out, p.X)
		out = appendF64(out, p.Y)
	}
	if o.Bitmap == nil {
		return append(out, bitmapAbsent)
	}
	out = append(out, bitmapPresent)
	out = appendU32(out, uint32(o.Bitmap.W))
	out = appendU32(out, uint32(o.Bitmap.H))
	out = appendU32(out, uint32(len(o.Bitmap.Pix)))
	return append(out, o.Bitmap.Pix...)
}

func decodeObject(b []byte) (Object, error) {
	var o Object
	var ok bool
	if o.Layer, b, ok = readString(b); !ok {
		return o, errors.New("malformed layer")
	}
	if len(b) < 6*8+4+4+4 {
		return o, errors.New("malformed geometry")
	}
	geom := []*float64{&o.X, &o.Y, &o.W, &o.H, &o.Radius, &o.StrokeWidth}
	for i, dst := range geom {
		*dst = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
	}
	b = b[len(geom)*8:]
	o.StrokeRGBA = binary.LittleEndian.Uint32(b[0:4])
	o.FillRGBA = binary.LittleEndian.Uint32(b[4:8])
	count := int(binary.LittleEndian.Uint32(b[8:12]))
	b = b[12:]
	if count < 0 || len(b) < count*16 {
		return o, errors.New("malformed points")
	}
	if count > 0 {
		o.Points = make([]Point, count)
		for i := range o.Points {
			o.Points[i].X = math.Float64frombits(binary.LittleEndian.Uint64(b[0:8]))
			o.Points[i].Y = math.Float64frombits(binary.LittleEndian.Uint64(b[8:16]))
			b = b[16:]
		}
	}
	if len(b) < 1 {
		return o, errors.New("malformed bitmap flag")
	}
	if b[0] == bitmapAbsent {
		return o, nil
	}
	b = b[1:]
	if len(b) < 12 {
		return o, errors.New("malformed bitmap header")
	}
	w := int(binary.LittleEndian.Uint32(b[0:4]))
	h := int(binary.LittleEndian.Uint32(b[4:8]))
	n := int(binary.LittleEndian.Uint32(b[8:12]))
	b = b[12:]
	if len(b) < n {
		return o, errors.New("malformed bitmap pixels")
	}
	o.Bitmap = &Bitmap{W: w, H: h, Pix: append([]byte(nil), b[:n]...)}
	return o, nil
}

func appendString(dst []byte, s string) []byte {
	dst = appendU32(dst, uint32(len(s)))
	return append(dst, s...)
}

func readString(src []byte) (string, []byte, bool) {
	if len(src) < 4 {
		return "", nil, false
	}
	ln := int(binary.LittleEndian.Uint32(src[:4]))
	src = src[4:]
	if len(src) < ln {
		return "", nil, false
	}
	return string(src[:ln]), src[ln:], true
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendF64(dst []byte, v float64) []byte {
	return appendU64(dst, math.Float64bits(v))
}
