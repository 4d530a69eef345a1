// pkg/chunk/device.go

package chunk

import (
	"bytes"

	"ChunkStore/pkg/utils"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const wipeStride = 16

// deviceBackend keeps chunks on a raw block device through positioned
// syscalls on a file descriptor.
type deviceBackend struct {
	path   string
	fd     int
	layout layout
	found  Map
}

func init() {
	Register("dev", func(_, addr string, conf *Config) (Backend, error) {
		return OpenDevice(addr, conf.Slots, conf.Mode)
	})
}

// OpenDevice opens the device at path. Without ModeOverride the slot count
// and map are read from the device, with it the device is initialized for slots.
func OpenDevice(path string, slots uint32, mode Mode) (Backend, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "open device %s: %s", path, err)
	}
	d := &deviceBackend{path: path, fd: fd}
	if mode&ModeOverride != 0 {
		err = d.init(slots)
	} else {
		err = d.recover()
	}
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return d, nil
}

func (d *deviceBackend) init(slots uint32) error {
	d.layout = deviceLayout(slots)
	d.found = NewMap(slots)
	if err := d.pwrite(encodeHeader(d.found), 0); err != nil {
		return errors.Wrapf(err, "init device %s", d.path)
	}
	if err := d.pwrite([]byte{0}, d.layout.size()-1); err != nil {
		return errors.Wrapf(err, "preallocate device %s", d.path)
	}
	logger.Infof("device: initialized %s with %d slots", d.path, slots)
	return nil
}

func (d *deviceBackend) recover() error {
	hdr := make([]byte, headerSize)
	if err := d.pread(hdr, 0); err != nil {
		return errors.Wrapf(err, "read header of device %s", d.path)
	}
	slots := utils.ReadBuffer(hdr).Get32()
	buf := make([]byte, int(slots)*SlotInfoSize)
	if err := d.pread(buf, headerSize); err != nil {
		return errors.Wrapf(err, "read chunk map of device %s", d.path)
	}
	d.layout = deviceLayout(slots)
	d.found = UnmarshalMap(buf)
	logger.Infof("device: recovered %s with %d slots, %d used", d.path, slots, d.found.Used())
	return nil
}

func (d *deviceBackend) pread(buf []byte, off int64) error {
	n, err := unix.Pread(d.fd, buf, off)
	if err != nil {
		return errors.Wrapf(err, "pread %s at %d", d.path, off)
	}
	if n != len(buf) {
		return shortIO("pread", off, n, len(buf))
	}
	return nil
}

func (d *deviceBackend) pwrite(buf []byte, off int64) error {
	n, err := unix.Pwrite(d.fd, buf, off)
	if err != nil {
		return errors.Wrapf(err, "pwrite %s at %d", d.path, off)
	}
	if n != len(buf) {
		return shortIO("pwrite", off, n, len(buf))
	}
	return nil
}

func (d *deviceBackend) Name() string {
	return "device"
}

func (d *deviceBackend) String() string {
	return "dev://" + d.path
}

func (d *deviceBackend) Slots() uint32 {
	return d.layout.slots
}

func (d *deviceBackend) Map() Map {
	return d.found
}

func (d *deviceBackend) DataOffset() int64 {
	return d.layout.data
}

func (d *deviceBackend) Load(id ID, c *Chunk) error {
	var buf [Size]byte
	if err := d.pread(buf[:], d.layout.offset(id)); err != nil {
		return err
	}
	c.Unmarshal(buf[:])
	return nil
}

func (d *deviceBackend) Save(id ID, c *Chunk) error {
	var buf [Size]byte
	c.MarshalTo(buf[:])
	return d.pwrite(buf[:], d.layout.offset(id))
}

func (d *deviceBackend) Sync() error {
	if err := unix.Fsync(d.fd); err != nil {
		return errors.Wrapf(err, "fsync %s", d.path)
	}
	return nil
}

// wipe zeroes the header and map region in strides, then marks its last
// stride with 0xff. It is not atomic: an interruption before the map is
// rewritten leaves the device without a valid map.
func (d *deviceBackend) wipe() error {
	zero := make([]byte, wipeStride)
	end := d.layout.data
	for off := int64(0); off < end; off += wipeStride {
		if err := d.pwrite(zero, off); err != nil {
			return err
		}
	}
	return d.pwrite(bytes.Repeat([]byte{0xff}, wipeStride), end-wipeStride)
}

func (d *deviceBackend) Close(m Map) error {
	err := d.wipe()
	if err == nil {
		err = d.pwrite(encodeHeader(m), 0)
	}
	if err == nil {
		err = d.Sync()
	}
	if cerr := unix.Close(d.fd); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, "close %s", d.path)
	}
	return err
}
