// pkg/chunk/errors.go

package chunk

import "github.com/pkg/errors"

var (
	// ErrExhausted is returned by Create when every slot is used.
	ErrExhausted = errors.New("no free chunk slot")
	// ErrOutOfRange is returned for an ID outside [0, slots).
	ErrOutOfRange = errors.New("chunk id out of range")
	// ErrMediaUnavailable is returned when a backend cannot open its medium.
	ErrMediaUnavailable = errors.New("media unavailable")
	// ErrMediaCorrupt is returned on short transfers and inconsistent layouts.
	ErrMediaCorrupt = errors.New("media corrupt")
	// ErrClosed is returned by any operation on a closed manager.
	ErrClosed = errors.New("chunk manager is closed")
	// ErrUnknownScheme is returned for a store URI nobody registered.
	ErrUnknownScheme = errors.New("unknown store scheme")
)

func shortIO(op string, off int64, n, want int) error {
	return errors.Wrapf(ErrMediaCorrupt, "%s at %d: transferred %d of %d bytes", op, off, n, want)
}
