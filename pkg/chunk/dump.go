// pkg/chunk/dump.go

package chunk

import (
	"io"

	"ChunkStore/pkg/compress"
	"ChunkStore/pkg/utils"

	"github.com/pkg/errors"
)

const dumpRecord = 4 + Size

// Dump writes every used slot of m to w, compressed by c. Records are read
// through the cache, so unflushed writes are included. showProgress is
// called once per record and may be nil.
func Dump(w io.Writer, m *Manager, c compress.Compressor, showProgress func()) error {
	if m.closed {
		return ErrClosed
	}
	used := m.slots.Used()
	b := utils.NewBuffer(uint32(8 + used*dumpRecord))
	b.Put32(m.Slots())
	b.Put32(uint32(used))
	var rec [Size]byte
	for i := range m.slots {
		if !m.slots[i].Used {
			continue
		}
		ch, err := m.Get(ID(i))
		if err != nil {
			return err
		}
		ch.MarshalTo(rec[:])
		b.Put32(uint32(i))
		b.Put(rec[:])
		if showProgress != nil {
			showProgress()
		}
	}
	data, err := c.Compress(b.Bytes())
	if err != nil {
		return errors.Wrapf(err, "compress dump with %s", c.Name())
	}
	_, err = w.Write(data)
	return err
}

// Restore claims the slots found in a dump and writes their records into
// m's cache. The caller flushes. It returns the number of restored chunks.
func Restore(r io.Reader, m *Manager, c compress.Compressor, showProgress func()) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if data, err = c.Decompress(data); err != nil {
		return 0, errors.Wrapf(err, "decompress dump with %s", c.Name())
	}
	if len(data) < 8 {
		return 0, errors.Wrapf(ErrMediaCorrupt, "dump of %d bytes", len(data))
	}
	b := utils.ReadBuffer(data)
	slots, count := b.Get32(), int(b.Get32())
	if b.Left() != count*dumpRecord {
		return 0, errors.Wrapf(ErrMediaCorrupt, "dump holds %d bytes for %d records", b.Left(), count)
	}
	if slots > m.Slots() {
		logger.Warnf("dump was taken from %d slots, restoring into %d", slots, m.Slots())
	}
	for i := 0; i < count; i++ {
		id := b.Get32()
		var ch Chunk
		ch.Unmarshal(b.Get(Size))
		if err := m.claim(id); err != nil {
			return i, err
		}
		if err := m.Write(id, ch); err != nil {
			return i, err
		}
		if showProgress != nil {
			showProgress()
		}
	}
	return count, nil
}
