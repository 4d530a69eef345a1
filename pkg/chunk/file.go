// pkg/chunk/file.go

package chunk

import (
	"io"
	"os"

	"ChunkStore/pkg/utils"

	"github.com/pkg/errors"
)

// Medium is random access storage holding a file layout: the slot count,
// the allocation map and the chunk region aligned on 32 bytes.
type Medium interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

type fileBackend struct {
	name   string
	path   string
	f      Medium
	layout layout
	found  Map
}

func init() {
	Register("file", func(_, addr string, conf *Config) (Backend, error) {
		return OpenFile(addr, conf.Slots, conf.Mode)
	})
}

// OpenFile opens the chunk file at path. An existing file keeps its own slot
// count, a missing one (or any file with ModeOverride) is created with slots
// unless mode has ModeExisting.
func OpenFile(path string, slots uint32, mode Mode) (Backend, error) {
	conf := &Config{Slots: slots, Mode: mode}
	f, fresh, err := openMedium(conf, func(flag int) (Medium, error) {
		return os.OpenFile(path, flag, 0644)
	})
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "open %s: %s", path, err)
	}
	return NewFileMedium("file", path, f, fresh, slots)
}

// openMedium opens a medium with open, creating it when it is missing or
// conf asks to override it. fresh reports whether the medium needs init.
func openMedium(conf *Config, open func(flag int) (Medium, error)) (f Medium, fresh bool, err error) {
	fresh = conf.override()
	flag := os.O_RDWR
	if fresh {
		flag |= os.O_CREATE | os.O_TRUNC
	}
	f, err = open(flag)
	if err != nil && !fresh && errors.Is(err, os.ErrNotExist) {
		if conf.existing() {
			return nil, false, errors.New("no such store")
		}
		fresh = true
		f, err = open(os.O_RDWR | os.O_CREATE | os.O_TRUNC)
	}
	return f, fresh, err
}

// NewFileMedium lays chunks out on f. When fresh is set the medium is
// initialized for slots, otherwise its header is read back. f is closed on error.
func NewFileMedium(name, path string, f Medium, fresh bool, slots uint32) (Backend, error) {
	fb := &fileBackend{name: name, path: path, f: f}
	var err error
	if fresh {
		err = fb.init(slots)
	} else {
		err = fb.recover()
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return fb, nil
}

func (fb *fileBackend) init(slots uint32) error {
	fb.layout = fileLayout(slots)
	fb.found = NewMap(slots)
	if err := writeFull(fb.f, encodeHeader(fb.found), 0); err != nil {
		return errors.Wrapf(err, "init %s", fb.path)
	}
	// preallocate the whole layout so chunk writes never extend the file
	if err := writeFull(fb.f, []byte{0}, fb.layout.size()-1); err != nil {
		return errors.Wrapf(err, "preallocate %s", fb.path)
	}
	logger.Infof("%s: initialized %s with %d slots", fb.name, fb.path, slots)
	return nil
}

func (fb *fileBackend) recover() error {
	hdr := make([]byte, headerSize)
	if err := readFull(fb.f, hdr, 0); err != nil {
		return errors.Wrapf(err, "read header of %s", fb.path)
	}
	slots := utils.ReadBuffer(hdr).Get32()
	buf := make([]byte, int(slots)*SlotInfoSize)
	if err := readFull(fb.f, buf, headerSize); err != nil {
		return errors.Wrapf(err, "read chunk map of %s", fb.path)
	}
	fb.layout = fileLayout(slots)
	fb.found = UnmarshalMap(buf)
	logger.Infof("%s: recovered %s with %d slots, %d used", fb.name, fb.path, slots, fb.found.Used())
	return nil
}

func (fb *fileBackend) Name() string {
	return fb.name
}

func (fb *fileBackend) String() string {
	return fb.name + "://" + fb.path
}

func (fb *fileBackend) Slots() uint32 {
	return fb.layout.slots
}

func (fb *fileBackend) Map() Map {
	return fb.found
}

func (fb *fileBackend) DataOffset() int64 {
	return fb.layout.data
}

func (fb *fileBackend) Load(id ID, c *Chunk) error {
	var buf [Size]byte
	if err := readFull(fb.f, buf[:], fb.layout.offset(id)); err != nil {
		return err
	}
	c.Unmarshal(buf[:])
	return nil
}

func (fb *fileBackend) Save(id ID, c *Chunk) error {
	var buf [Size]byte
	c.MarshalTo(buf[:])
	return writeFull(fb.f, buf[:], fb.layout.offset(id))
}

func (fb *fileBackend) Sync() error {
	if s, ok := fb.f.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func (fb *fileBackend) Close(m Map) error {
	err := writeFull(fb.f, encodeHeader(m), 0)
	if err == nil {
		err = fb.Sync()
	}
	if cerr := fb.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err != nil && err != io.EOF && n == 0 {
		return errors.Wrapf(err, "read at %d", off)
	}
	return shortIO("read", off, n, len(buf))
}

func writeFull(w io.WriterAt, buf []byte, off int64) error {
	n, err := w.WriteAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err != nil && n == 0 {
		return errors.Wrapf(err, "write at %d", off)
	}
	return shortIO("write", off, n, len(buf))
}
