package scene

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// A project file is a fixed header followed by the snapshot encoding of the
// scene, optionally deflated and then sealed. All integers little endian.
//
//	magic       "ARTBOARD_PROJECT"
//	version     u16
//	flags       u16
//	width       u32
//	height      u32
//	background  u32
//	objects     u32
//	layers      u16
//	salt        [16]byte
//	nonce       [12]byte
//	body length u64
//
// The canvas fields repeat the scene's own metadata so a file can be
// described without decoding it. When sealed, the header is the additional
// data of the AEAD, so editing it breaks decryption.
const (
	projectMagic     = "ARTBOARD_PROJECT"
	ProjectVersionV1 = uint16(1)

	projectFlagCompressed = uint16(1 << 0)
	projectFlagEncrypted  = uint16(1 << 1)

	saltSize          = 16
	nonceSize         = 12
	projectHeaderSize = len(projectMagic) + 2 + 2 + 4*4 + 2 + saltSize + nonceSize + 8
	kdfIterations     = 200000
)

type EncryptionOptions struct {
	Enabled  bool
	Password string
}

type SaveOptions struct {
	Compression bool
	Encryption  EncryptionOptions
}

type LoadOptions struct {
	Password string
}

// ProjectInfo describes a project file from its header alone. Bare is set
// for files holding a plain snapshot with no project header.
type ProjectInfo struct {
	Version    uint16
	Bare       bool
	Compressed bool
	Encrypted  bool
	Width      uint32
	Height     uint32
	Background uint32
	Objects    int
	Layers     int
}

type projectHeader struct {
	Version    uint16
	Flags      uint16
	Width      uint32
	Height     uint32
	Background uint32
	Objects    uint32
	Layers     uint16
	Salt       [saltSize]byte
	Nonce      [nonceSize]byte
	BodyLen    uint64
}

func summarize(s *Scene) (projectHeader, error) {
	if uint64(len(s.Objects)) > math.MaxUint32 || len(s.Layers) > math.MaxUint16 {
		return projectHeader{}, errors.New("scene: too many objects or layers for a project file")
	}
	return projectHeader{
		Version:    ProjectVersionV1,
		Width:      s.Metadata.Width,
		Height:     s.Metadata.Height,
		Background: s.Metadata.BackgroundRGBA,
		Objects:    uint32(len(s.Objects)),
		Layers:     uint16(len(s.Layers)),
	}, nil
}

// matches reports whether the decoded scene is the one the header describes.
func (h projectHeader) matches(s *Scene) bool {
	return h.Width == s.Metadata.Width &&
		h.Height == s.Metadata.Height &&
		h.Background == s.Metadata.BackgroundRGBA &&
		int(h.Objects) == len(s.Objects) &&
		int(h.Layers) == len(s.Layers)
}

func (h projectHeader) info() ProjectInfo {
	return ProjectInfo{
		Version:    h.Version,
		Compressed: h.Flags&projectFlagCompressed != 0,
		Encrypted:  h.Flags&projectFlagEncrypted != 0,
		Width:      h.Width,
		Height:     h.Height,
		Background: h.Background,
		Objects:    int(h.Objects),
		Layers:     int(h.Layers),
	}
}

func (h projectHeader) marshal() []byte {
	out := make([]byte, 0, projectHeaderSize)
	out = append(out, projectMagic...)
	out = binary.LittleEndian.AppendUint16(out, h.Version)
	out = binary.LittleEndian.AppendUint16(out, h.Flags)
	out = appendU32(out, h.Width)
	out = appendU32(out, h.Height)
	out = appendU32(out, h.Background)
	out = appendU32(out, h.Objects)
	out = binary.LittleEndian.AppendUint16(out, h.Layers)
	out = append(out, h.Salt[:]...)
	out = append(out, h.Nonce[:]...)
	return appendU64(out, h.BodyLen)
}

func parseProjectHeader(b []byte) (projectHeader, error) {
	var h projectHeader
	if len(b) < projectHeaderSize || string(b[:len(projectMagic)]) != projectMagic {
		return h, ErrInvalidProjectFile
	}
	b = b[len(projectMagic):]
	h.Version = binary.LittleEndian.Uint16(b[0:2])
	if h.Version != ProjectVersionV1 {
		return h, fmt.Errorf("%w: project version %d", ErrUnsupportedVer, h.Version)
	}
	h.Flags = binary.LittleEndian.Uint16(b[2:4])
	h.Width = binary.LittleEndian.Uint32(b[4:8])
	h.Height = binary.LittleEndian.Uint32(b[8:12])
	h.Background = binary.LittleEndian.Uint32(b[12:16])
	h.Objects = binary.LittleEndian.Uint32(b[16:20])
	h.Layers = binary.LittleEndian.Uint16(b[20:22])
	b = b[22:]
	copy(h.Salt[:], b[:saltSize])
	copy(h.Nonce[:], b[saltSize:saltSize+nonceSize])
	h.BodyLen = binary.LittleEndian.Uint64(b[saltSize+nonceSize:])
	return h, nil
}

func Save(path string, s *Scene) error {
	return SaveWithOptions(path, s, SaveOptions{})
}

// SaveWithOptions stamps s and writes it as a project file, replacing path
// only once the new content is fully on disk.
func SaveWithOptions(path string, s *Scene, opts SaveOptions) error {
	if s == nil {
		return errors.New("scene: scene is nil")
	}
	now := time.Now().Unix()
	if s.Metadata.CreatedUnix == 0 {
		s.Metadata.CreatedUnix = now
	}
	s.Metadata.ModifiedUnix = now

	blob, err := encodeProject(s, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Load(path string) (*Scene, error) {
	return LoadWithOptions(path, LoadOptions{})
}

func LoadWithOptions(path string, opts LoadOptions) (*Scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeProject(b, opts)
}

// InspectProject reads the header of the project at path. Bare snapshots
// are decoded to fill in the same fields.
func InspectProject(path string) (ProjectInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ProjectInfo{}, err
	}
	if bytes.HasPrefix(b, []byte(MagicString)) {
		s, err := Decode(b)
		if err != nil {
			return ProjectInfo{}, err
		}
		h, err := summarize(s)
		if err != nil {
			return ProjectInfo{}, err
		}
		info := h.info()
		info.Bare = true
		return info, nil
	}
	h, err := parseProjectHeader(b)
	if err != nil {
		return ProjectInfo{}, err
	}
	return h.info(), nil
}

func encodeProject(s *Scene, opts SaveOptions) ([]byte, error) {
	if opts.Encryption.Enabled && strings.TrimSpace(opts.Encryption.Password) == "" {
		return nil, ErrPasswordRequired
	}
	body, err := Encode(s)
	if err != nil {
		return nil, err
	}
	h, err := summarize(s)
	if err != nil {
		return nil, err
	}
	if opts.Compression {
		h.Flags |= projectFlagCompressed
		if body, err = compressBytes(body); err != nil {
			return nil, err
		}
	}
	if !opts.Encryption.Enabled {
		h.BodyLen = uint64(len(body))
		return append(h.marshal(), body...), nil
	}

	h.Flags |= projectFlagEncrypted
	if _, err := io.ReadFull(rand.Reader, h.Salt[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(rand.Reader, h.Nonce[:]); err != nil {
		return nil, err
	}
	gcm, err := newGCM(opts.Encryption.Password, h.Salt[:])
	if err != nil {
		return nil, err
	}
	h.BodyLen = uint64(len(body) + gcm.Overhead())
	header := h.marshal()
	return append(header, gcm.Seal(nil, h.Nonce[:], body, header)...), nil
}

func decodeProject(b []byte, opts LoadOptions) (*Scene, error) {
	if bytes.HasPrefix(b, []byte(MagicString)) {
		return Decode(b)
	}
	if !bytes.HasPrefix(b, []byte(projectMagic)) {
		return nil, ErrInvalidMagic
	}
	h, err := parseProjectHeader(b)
	if err != nil {
		return nil, err
	}
	header, body := b[:projectHeaderSize], b[projectHeaderSize:]
	if uint64(len(body)) != h.BodyLen {
		return nil, fmt.Errorf("%w: body is %d bytes, header says %d", ErrInvalidProjectFile, len(body), h.BodyLen)
	}

	info := h.info()
	if info.Encrypted {
		if strings.TrimSpace(opts.Password) == "" {
			return nil, ErrPasswordRequired
		}
		gcm, err := newGCM(opts.Password, h.Salt[:])
		if err != nil {
			return nil, err
		}
		if body, err = gcm.Open(nil, h.Nonce[:], body, header); err != nil {
			return nil, ErrInvalidPassword
		}
	}
	if info.Compressed {
		if body, err = decompressBytes(body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProjectFile, err)
		}
	}

	s, err := Decode(body)
	if err != nil {
		return nil, err
	}
	if !h.matches(s) {
		return nil, ErrHeaderMismatch
	}
	return s, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func compressBytes(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressBytes(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
