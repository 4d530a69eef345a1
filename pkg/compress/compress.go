// pkg/compress/compress.go

package compress

import (
	"encoding/binary"
	"strings"

	"github.com/DataDog/zstd"
	lz4 "github.com/hungys/go-lz4"
	"github.com/pkg/errors"
)

// Compressor compresses whole buffers.
type Compressor interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// NewCompressor returns the compressor for algr (none, lz4, zstd), or nil if unknown.
func NewCompressor(algr string) Compressor {
	switch strings.ToLower(algr) {
	case "", "none":
		return noOp{}
	case "lz4":
		return lz4Compressor{}
	case "zstd":
		return zstdCompressor{zstd.DefaultCompression}
	}
	return nil
}

type noOp struct{}

func (noOp) Name() string { return "none" }

func (noOp) Compress(src []byte) ([]byte, error) {
	return src, nil
}

func (noOp) Decompress(src []byte) ([]byte, error) {
	return src, nil
}

type lz4Compressor struct{}

func (lz4Compressor) Name() string { return "lz4" }

// Compress emits a raw lz4 block behind a little-endian uint32 holding the
// uncompressed length.
func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, 4+lz4.CompressBound(len(src)))
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))
	if len(src) == 0 {
		return dst[:4], nil
	}
	n, err := lz4.CompressDefault(src, dst[4:])
	if err != nil {
		return nil, err
	}
	return dst[:4+n], nil
}

func (lz4Compressor) Decompress(src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, errors.Errorf("lz4 block too short: %d bytes", len(src))
	}
	size := binary.LittleEndian.Uint32(src)
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	n, err := lz4.DecompressSafe(src[4:], out)
	if err != nil {
		return nil, err
	}
	if n != int(size) {
		return nil, errors.Errorf("lz4 block decoded to %d bytes, want %d", n, size)
	}
	return out, nil
}

type zstdCompressor struct {
	level int
}

func (zstdCompressor) Name() string { return "zstd" }

func (z zstdCompressor) Compress(src []byte) ([]byte, error) {
	return zstd.CompressLevel(nil, src, z.level)
}

func (zstdCompressor) Decompress(src []byte) ([]byte, error) {
	return zstd.Decompress(nil, src)
}
