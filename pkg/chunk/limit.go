// pkg/chunk/limit.go

package chunk

import (
	"github.com/juju/ratelimit"
)

type limited struct {
	Backend
	upLimit   *ratelimit.Bucket
	downLimit *ratelimit.Bucket
}

func newBucket(rate int64) *ratelimit.Bucket {
	if rate <= 0 {
		return nil
	}
	// burst of a single record
	return ratelimit.NewBucketWithRate(float64(rate), Size)
}

// NewLimited throttles b: saves to up and loads to down bytes per second.
// A zero rate is unlimited.
func NewLimited(b Backend, up, down int64) Backend {
	return &limited{b, newBucket(up), newBucket(down)}
}

func (l *limited) Load(id ID, c *Chunk) error {
	if l.downLimit != nil {
		l.downLimit.Wait(Size)
	}
	return l.Backend.Load(id, c)
}

func (l *limited) Save(id ID, c *Chunk) error {
	if l.upLimit != nil {
		l.upLimit.Wait(Size)
	}
	return l.Backend.Save(id, c)
}

func (l *limited) DataOffset() int64 {
	if d, ok := l.Backend.(interface{ DataOffset() int64 }); ok {
		return d.DataOffset()
	}
	return 0
}
