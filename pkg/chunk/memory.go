// pkg/chunk/memory.go

package chunk

type memoryBackend struct {
	chunks []Chunk
}

func init() {
	Register("mem", func(_, _ string, conf *Config) (Backend, error) {
		return NewMemory(conf.Slots), nil
	})
}

// NewMemory returns a non-durable backend holding slots zeroed records.
func NewMemory(slots uint32) Backend {
	return &memoryBackend{chunks: make([]Chunk, slots)}
}

func (mb *memoryBackend) Name() string {
	return "memory"
}

func (mb *memoryBackend) Slots() uint32 {
	return uint32(len(mb.chunks))
}

func (mb *memoryBackend) Map() Map {
	return NewMap(mb.Slots())
}

func (mb *memoryBackend) Load(id ID, c *Chunk) error {
	*c = mb.chunks[id]
	return nil
}

func (mb *memoryBackend) Save(id ID, c *Chunk) error {
	mb.chunks[id] = *c
	return nil
}

func (mb *memoryBackend) Sync() error {
	return nil
}

func (mb *memoryBackend) Close(Map) error {
	return nil
}
