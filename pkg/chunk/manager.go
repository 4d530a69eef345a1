// pkg/chunk/manager.go

package chunk

import (
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type entry struct {
	chunk Chunk
	dirty bool
}

// Manager allocates chunk slots and caches their records in front of a
// Backend. Writes are kept in the cache until Flush.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	conf    Config
	id      uint32
	backend Backend
	slots   Map
	active  map[ID]*entry
	closed  bool
}

// Stats is a snapshot of the manager state.
type Stats struct {
	Slots  int
	Used   int
	Cached int
	Dirty  int
}

// New returns a manager using b's slot count and allocation map.
func New(b Backend, conf *Config) *Manager {
	m := &Manager{
		backend: b,
		active:  make(map[ID]*entry),
	}
	if conf != nil {
		m.conf = *conf
	}
	m.id = m.conf.ManagerID
	if m.id == 0 {
		m.id = uuid.New().ID()
	}
	m.slots = NewMap(b.Slots())
	copy(m.slots, b.Map())
	logger.Debugf("manager %d on %s: %d slots, %d used", m.id, b.Name(), len(m.slots), m.slots.Used())
	return m
}

func (m *Manager) ManagerID() uint32 {
	return m.id
}

func (m *Manager) Slots() uint32 {
	return uint32(len(m.slots))
}

func (m *Manager) Backend() Backend {
	return m.backend
}

// Identifier returns the global identifier of slot id.
func (m *Manager) Identifier(id ID) Identifier {
	return Identifier{ManagerID: m.id, ChunkIndex: id}
}

func (m *Manager) check(id ID) error {
	if m.closed {
		return ErrClosed
	}
	if id >= ID(len(m.slots)) {
		return errors.Wrapf(ErrOutOfRange, "%d not in [0, %d)", id, len(m.slots))
	}
	return nil
}

// Used reports whether slot id is allocated.
func (m *Manager) Used(id ID) (bool, error) {
	if err := m.check(id); err != nil {
		return false, err
	}
	return m.slots[id].Used, nil
}

// Create allocates the first free slot and caches a zeroed record for it.
func (m *Manager) Create() (ID, error) {
	if m.closed {
		return NoSlot, ErrClosed
	}
	for i := range m.slots {
		if !m.slots[i].Used {
			m.slots[i].Used = true
			m.active[ID(i)] = &entry{}
			return ID(i), nil
		}
	}
	return NoSlot, ErrExhausted
}

// Delete frees slot id and drops its cached record, unflushed writes included.
func (m *Manager) Delete(id ID) error {
	if err := m.check(id); err != nil {
		return err
	}
	if e, ok := m.active[id]; ok && e.dirty {
		logger.Debugf("discard unflushed chunk %d", id)
	}
	m.slots[id].Used = false
	delete(m.active, id)
	return nil
}

func (m *Manager) lookup(id ID) (*entry, error) {
	if err := m.check(id); err != nil {
		return nil, err
	}
	if e, ok := m.active[id]; ok {
		return e, nil
	}
	e := &entry{}
	if err := m.backend.Load(id, &e.chunk); err != nil {
		return nil, errors.Wrapf(err, "load chunk %d", id)
	}
	logger.Debugf("loaded chunk %d from %s", id, m.backend.Name())
	m.active[id] = e
	return e, nil
}

// Get returns a copy of the record of slot id, loading it on first access.
func (m *Manager) Get(id ID) (Chunk, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Chunk{}, err
	}
	return e.chunk, nil
}

// Update applies fn to the cached record of slot id and marks it dirty.
func (m *Manager) Update(id ID, fn func(c *Chunk)) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	fn(&e.chunk)
	e.dirty = true
	return nil
}

// Write replaces the cached record of slot id and marks it dirty.
// Nothing reaches the backend before Flush.
func (m *Manager) Write(id ID, c Chunk) error {
	if err := m.check(id); err != nil {
		return err
	}
	e, ok := m.active[id]
	if !ok {
		e = &entry{}
		m.active[id] = e
	}
	e.chunk = c
	e.dirty = true
	return nil
}

// Flush saves every dirty record and marks it clean. It stops at the first
// failing save, records saved before it stay clean.
func (m *Manager) Flush() error {
	if m.closed {
		return ErrClosed
	}
	var dirty []ID
	for id, e := range m.active {
		if e.dirty {
			dirty = append(dirty, id)
		}
	}
	if len(dirty) == 0 {
		return nil
	}
	slices.Sort(dirty)
	for _, id := range dirty {
		e := m.active[id]
		if err := m.backend.Save(id, &e.chunk); err != nil {
			return errors.Wrapf(err, "save chunk %d", id)
		}
		e.dirty = false
	}
	logger.Debugf("flushed %d chunks to %s", len(dirty), m.backend.Name())
	if m.conf.Sync {
		if err := m.backend.Sync(); err != nil {
			return errors.Wrapf(err, "sync %s", m.backend.Name())
		}
	}
	return nil
}

// Close writes the allocation map and releases the backend.
// Dirty records are not flushed.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if st := m.Stats(); st.Dirty > 0 {
		logger.Warnf("closing %s with %d unflushed chunks", m.backend.Name(), st.Dirty)
	}
	m.active = nil
	if err := m.backend.Close(m.slots); err != nil {
		return errors.Wrapf(err, "close %s", m.backend.Name())
	}
	return nil
}

func (m *Manager) Stats() Stats {
	st := Stats{Slots: len(m.slots), Used: m.slots.Used(), Cached: len(m.active)}
	for _, e := range m.active {
		if e.dirty {
			st.Dirty++
		}
	}
	return st
}

// Format describes the medium behind the manager.
func (m *Manager) Format() Format {
	f := Format{
		Backend:    m.backend.Name(),
		Slots:      m.Slots(),
		RecordSize: Size,
		Used:       m.slots.Used(),
	}
	if l, ok := m.backend.(interface{ DataOffset() int64 }); ok {
		f.DataOffset = l.DataOffset()
	}
	return f
}

// claim marks slot id used without touching its record.
func (m *Manager) claim(id ID) error {
	if err := m.check(id); err != nil {
		return err
	}
	m.slots[id].Used = true
	return nil
}
