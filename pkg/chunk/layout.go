// pkg/chunk/layout.go

package chunk

import "ChunkStore/pkg/utils"

// layout maps slot ids to byte offsets for a medium with the given slot count.
type layout struct {
	slots uint32
	data  int64 // start of the chunk region
}

// fileLayout aligns the chunk region on the next 32-byte boundary after the map.
func fileLayout(slots uint32) layout {
	info := int64(headerSize) + int64(slots)*SlotInfoSize
	return layout{slots, (info/32 + 1) * 32}
}

// deviceLayout keeps at least 16 spare bytes after the map and aligns on 16.
func deviceLayout(slots uint32) layout {
	info := int64(headerSize) + int64(slots)*SlotInfoSize
	return layout{slots, ((info+16)/16 + 1) * 16}
}

func (l layout) offset(id ID) int64 {
	return l.data + int64(id)*Size
}

// size is the full medium length including the chunk region.
func (l layout) size() int64 {
	return l.offset(l.slots)
}

// mapEnd is the first byte after the allocation map.
func (l layout) mapEnd() int64 {
	return headerSize + int64(l.slots)*SlotInfoSize
}

func encodeHeader(m Map) []byte {
	buf := make([]byte, headerSize+len(m)*SlotInfoSize)
	b := utils.FromBuffer(buf)
	b.Put32(uint32(len(m)))
	b.Put(m.Marshal())
	return buf
}
