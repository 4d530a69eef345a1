// pkg/chunk/backend.go

package chunk

import (
	"strings"
	"sync"

	"ChunkStore/pkg/utils"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("chunkstore")

// Backend persists chunk records for a Manager. The manager owns the
// allocation map and the cache, a backend only saves and restores records.
type Backend interface {
	Name() string
	// Slots is the slot count configured for fresh media or recovered from existing ones.
	Slots() uint32
	// Map is the allocation map found when the medium was opened.
	Map() Map
	Load(id ID, c *Chunk) error
	Save(id ID, c *Chunk) error
	// Sync makes saved records durable.
	Sync() error
	// Close persists the allocation map and releases the medium. It does not flush.
	Close(m Map) error
}

// Creator opens a backend for addr, the part of a store URI after "driver://".
type Creator func(driver, addr string, conf *Config) (Backend, error)

var (
	creatorsMu sync.Mutex
	creators   = make(map[string]Creator)
)

// Register makes a backend available for the given URI scheme.
func Register(name string, register Creator) {
	creatorsMu.Lock()
	defer creatorsMu.Unlock()
	creators[name] = register
}

// NewBackend opens the backend for a store URI, eg. file:///var/chunks.img.
// A URI without scheme is a local file path.
func NewBackend(uri string, conf *Config) (Backend, error) {
	if conf == nil {
		conf = &Config{}
	}
	driver, addr := "file", uri
	if p := strings.Index(uri, "://"); p > 0 {
		driver, addr = uri[:p], uri[p+3:]
	}
	creatorsMu.Lock()
	f, ok := creators[driver]
	creatorsMu.Unlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScheme, "%q", driver)
	}
	b, err := f(driver, addr, conf)
	if err != nil {
		return nil, err
	}
	if conf.UploadLimit > 0 || conf.DownloadLimit > 0 {
		b = NewLimited(b, conf.UploadLimit, conf.DownloadLimit)
	}
	return b, nil
}

// Open returns a manager on top of the backend for uri.
func Open(uri string, conf *Config) (*Manager, error) {
	b, err := NewBackend(uri, conf)
	if err != nil {
		return nil, err
	}
	return New(b, conf), nil
}
