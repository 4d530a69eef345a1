// pkg/chunk/chunk.go

package chunk

import (
	"fmt"

	"ChunkStore/pkg/utils"
)

// ID is the index of a slot inside one manager.
type ID = uint32

// NoSlot is never a valid ID.
const NoSlot = ^ID(0)

const (
	// IdentifierSize is the encoded size of an Identifier.
	IdentifierSize = 8
	// Size is the fixed size of a chunk record on every medium.
	Size = 32
	// DataSize is the payload carried by one chunk.
	DataSize = Size - IdentifierSize
	// SlotInfoSize is the encoded size of one allocation map entry.
	SlotInfoSize = 1
	// headerSize is the slot count stored at offset 0 of persistent media.
	headerSize = 4
)

// Identifier addresses a chunk across managers. Only ChunkIndex is used by a
// single manager, ManagerID is carried but never checked.
type Identifier struct {
	ManagerID  uint32
	ChunkIndex uint32
}

func (i Identifier) String() string {
	return fmt.Sprintf("%d:%d", i.ManagerID, i.ChunkIndex)
}

// Info is the chunk header. Next is reserved for chaining and is not followed.
type Info struct {
	Next Identifier
}

// Chunk is one fixed-size record.
type Chunk struct {
	Info Info
	Data [DataSize]byte
}

// Reset zeroes the whole record.
func (c *Chunk) Reset() {
	*c = Chunk{}
}

// SetData copies p into the payload, zero padding the remainder.
// It returns the number of bytes stored.
func (c *Chunk) SetData(p []byte) int {
	c.Data = [DataSize]byte{}
	return copy(c.Data[:], p)
}

// MarshalTo encodes the record into buf, which must hold Size bytes.
func (c *Chunk) MarshalTo(buf []byte) {
	w := utils.FromBuffer(buf[:Size])
	w.Put32(c.Info.Next.ManagerID)
	w.Put32(c.Info.Next.ChunkIndex)
	w.Put(c.Data[:])
}

func (c *Chunk) Marshal() []byte {
	buf := make([]byte, Size)
	c.MarshalTo(buf)
	return buf
}

// Unmarshal decodes a record from buf, which must hold Size bytes.
func (c *Chunk) Unmarshal(buf []byte) {
	r := utils.ReadBuffer(buf[:Size])
	c.Info.Next.ManagerID = r.Get32()
	c.Info.Next.ChunkIndex = r.Get32()
	copy(c.Data[:], r.Get(DataSize))
}

// SlotInfo is the allocation state of one slot.
type SlotInfo struct {
	Used bool
}

// Map is the allocation map, indexed by ID.
type Map []SlotInfo

func NewMap(slots uint32) Map {
	return make(Map, slots)
}

// Used counts the allocated slots.
func (m Map) Used() int {
	var n int
	for _, s := range m {
		if s.Used {
			n++
		}
	}
	return n
}

// Marshal encodes the map one byte per slot.
func (m Map) Marshal() []byte {
	buf := make([]byte, len(m)*SlotInfoSize)
	for i, s := range m {
		if s.Used {
			buf[i] = 1
		}
	}
	return buf
}

// UnmarshalMap decodes an allocation map. Any non-zero byte is a used slot.
func UnmarshalMap(buf []byte) Map {
	m := make(Map, len(buf)/SlotInfoSize)
	for i := range m {
		m[i].Used = buf[i*SlotInfoSize] != 0
	}
	return m
}
