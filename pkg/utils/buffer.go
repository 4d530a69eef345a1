// pkg/utils/buffer.go

package utils

import "encoding/binary"

// Buffer is a byte buffer with a cursor. Integers are little-endian,
// matching the on-media layout of the chunk store.
type Buffer struct {
	endian binary.ByteOrder
	off    int
	buf    []byte
}

// NewBuffer returns a zeroed buffer of size sz.
func NewBuffer(sz uint32) *Buffer {
	return FromBuffer(make([]byte, sz))
}

// FromBuffer wraps buf, starting the cursor at zero.
func FromBuffer(buf []byte) *Buffer {
	return &Buffer{binary.LittleEndian, 0, buf}
}

// ReadBuffer is an alias of FromBuffer for decoding.
func ReadBuffer(buf []byte) *Buffer {
	return FromBuffer(buf)
}

func (b *Buffer) Len() int {
	return len(b.buf)
}

func (b *Buffer) HasMore() bool {
	return b.off < len(b.buf)
}

func (b *Buffer) Left() int {
	return len(b.buf) - b.off
}

func (b *Buffer) Seek(p int) {
	b.off = p
}

func (b *Buffer) Offset() int {
	return b.off
}

func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) Put8(v uint8) {
	b.buf[b.off] = v
	b.off++
}

func (b *Buffer) Get8() uint8 {
	v := b.buf[b.off]
	b.off++
	return v
}

func (b *Buffer) Put32(v uint32) {
	b.endian.PutUint32(b.buf[b.off:b.off+4], v)
	b.off += 4
}

func (b *Buffer) Get32() uint32 {
	v := b.endian.Uint32(b.buf[b.off : b.off+4])
	b.off += 4
	return v
}

func (b *Buffer) Put64(v uint64) {
	b.endian.PutUint64(b.buf[b.off:b.off+8], v)
	b.off += 8
}

func (b *Buffer) Get64() uint64 {
	v := b.endian.Uint64(b.buf[b.off : b.off+8])
	b.off += 8
	return v
}

func (b *Buffer) Put(v []byte) {
	l := len(v)
	copy(b.buf[b.off:b.off+l], v)
	b.off += l
}

func (b *Buffer) Get(l int) []byte {
	b.off += l
	return b.buf[b.off-l : b.off]
}
