package chunk

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend records the backend calls made by a manager.
type countingBackend struct {
	Backend
	loads, saves, syncs int
	closed              Map
	failSave            error
}

func (c *countingBackend) Load(id ID, ch *Chunk) error {
	c.loads++
	return c.Backend.Load(id, ch)
}

func (c *countingBackend) Save(id ID, ch *Chunk) error {
	if c.failSave != nil {
		return c.failSave
	}
	c.saves++
	return c.Backend.Save(id, ch)
}

func (c *countingBackend) Sync() error {
	c.syncs++
	return c.Backend.Sync()
}

func (c *countingBackend) Close(m Map) error {
	c.closed = append(Map(nil), m...)
	return c.Backend.Close(m)
}

func newCounting(slots uint32, conf *Config) (*Manager, *countingBackend) {
	b := &countingBackend{Backend: NewMemory(slots)}
	return New(b, conf), b
}

func payload(b byte) Chunk {
	var c Chunk
	c.SetData(bytes.Repeat([]byte{b}, DataSize))
	return c
}

func TestCreateUntilExhausted(t *testing.T) {
	for _, n := range []uint32{0, 1, 4, 17} {
		m, _ := newCounting(n, nil)
		assert.Equal(t, int(n), m.Stats().Slots-m.Stats().Used)
		seen := make(map[ID]bool)
		for i := uint32(0); i < n; i++ {
			id, err := m.Create()
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		id, err := m.Create()
		assert.True(t, errors.Is(err, ErrExhausted))
		assert.Equal(t, NoSlot, id)
	}
}

func TestDeleteThenCreateReusesZeroedSlot(t *testing.T) {
	m, _ := newCounting(4, nil)
	for i := 0; i < 4; i++ {
		_, err := m.Create()
		require.NoError(t, err)
	}
	require.NoError(t, m.Write(1, payload(0x11)))
	require.NoError(t, m.Flush())
	require.NoError(t, m.Delete(1))

	used, err := m.Used(1)
	require.NoError(t, err)
	assert.False(t, used)

	id, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, ID(1), id)
	c, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, Chunk{}, c)
}

func TestGetLoadsOnce(t *testing.T) {
	m, b := newCounting(4, nil)
	_, err := m.Get(2)
	require.NoError(t, err)
	_, err = m.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 1, b.loads)

	id, err := m.Create()
	require.NoError(t, err)
	_, err = m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 1, b.loads, "created chunks are served from the cache")
}

func TestWriteIsDeferredUntilFlush(t *testing.T) {
	m, b := newCounting(4, nil)
	id, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Write(id, payload(0xab)))
	assert.Equal(t, 0, b.saves)
	assert.Equal(t, 1, m.Stats().Dirty)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, payload(0xab), got)

	require.NoError(t, m.Flush())
	assert.Equal(t, 1, b.saves)
	assert.Equal(t, 0, m.Stats().Dirty)
	assert.Equal(t, 1, m.Stats().Cached, "flush keeps entries cached")

	require.NoError(t, m.Flush())
	assert.Equal(t, 1, b.saves, "second flush has nothing to save")
}

func TestUpdateMarksDirty(t *testing.T) {
	m, b := newCounting(2, nil)
	require.NoError(t, m.Update(1, func(c *Chunk) {
		c.Data[0] = 9
		c.Info.Next = m.Identifier(0)
	}))
	require.NoError(t, m.Flush())
	assert.Equal(t, 1, b.saves)

	var stored Chunk
	require.NoError(t, b.Backend.Load(1, &stored))
	assert.Equal(t, byte(9), stored.Data[0])
	assert.Equal(t, m.ManagerID(), stored.Info.Next.ManagerID)
}

func TestDeleteDiscardsPendingWrite(t *testing.T) {
	m, b := newCounting(2, nil)
	id, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Write(id, payload(1)))
	require.NoError(t, m.Flush())
	require.NoError(t, m.Write(id, payload(2)))
	require.NoError(t, m.Delete(id))
	require.NoError(t, m.Flush())
	assert.Equal(t, 1, b.saves)

	var stored Chunk
	require.NoError(t, b.Backend.Load(id, &stored))
	assert.Equal(t, payload(1), stored)
}

func TestOutOfRange(t *testing.T) {
	m, _ := newCounting(4, nil)
	_, err := m.Get(4)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.True(t, errors.Is(m.Write(4, Chunk{}), ErrOutOfRange))
	assert.True(t, errors.Is(m.Delete(NoSlot), ErrOutOfRange))
	assert.True(t, errors.Is(m.Update(10, func(*Chunk) {}), ErrOutOfRange))
	_, err = m.Used(4)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestFlushStopsOnError(t *testing.T) {
	m, b := newCounting(4, &Config{Sync: true})
	require.NoError(t, m.Write(0, payload(1)))
	require.NoError(t, m.Write(1, payload(2)))
	b.failSave = errors.New("disk on fire")
	err := m.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save chunk 0")
	assert.Equal(t, 2, m.Stats().Dirty)
	assert.Equal(t, 0, b.syncs)

	b.failSave = nil
	require.NoError(t, m.Flush())
	assert.Equal(t, 2, b.saves)
	assert.Equal(t, 1, b.syncs)
}

func TestCloseWritesMapWithoutFlush(t *testing.T) {
	m, b := newCounting(3, nil)
	_, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Write(0, payload(5)))
	require.NoError(t, m.Close())
	assert.Equal(t, 0, b.saves)
	assert.Equal(t, Map{{true}, {false}, {false}}, b.closed)

	require.NoError(t, m.Close())
	_, err = m.Create()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = m.Get(0)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(m.Flush(), ErrClosed))
}

func TestManagerID(t *testing.T) {
	m := New(NewMemory(1), &Config{ManagerID: 42})
	assert.Equal(t, Identifier{ManagerID: 42, ChunkIndex: 0}, m.Identifier(0))
	assert.Equal(t, "42:0", m.Identifier(0).String())

	r := New(NewMemory(1), nil)
	assert.NotZero(t, r.ManagerID())
}

func TestOpenRegistry(t *testing.T) {
	m, err := Open("mem://", &Config{Slots: 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), m.Slots())
	assert.Equal(t, "memory", m.Format().Backend)

	_, err = Open("tape://drive0", nil)
	assert.True(t, errors.Is(err, ErrUnknownScheme))
}
