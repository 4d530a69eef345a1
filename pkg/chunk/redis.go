// pkg/chunk/redis.go

package chunk

import (
	"context"
	"io"
	"net/url"
	"os"
	"time"

	"ChunkStore/pkg/version"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "chunkstore"

// redisMedium keeps the whole file layout in one Redis string,
// accessed with GETRANGE and SETRANGE.
type redisMedium struct {
	ctx context.Context
	rdb *redis.Client
	key string
}

func init() {
	Register("redis", newRedisBackend)
	Register("rediss", newRedisBackend)
}

// newRedisBackend opens a store like redis://[:password@]host:port/db?name=key.
func newRedisBackend(driver, addr string, conf *Config) (Backend, error) {
	u, err := url.Parse(driver + "://" + addr)
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "parse %s://%s: %s", driver, addr, err)
	}
	key := defaultRedisKey
	q := u.Query()
	if name := q.Get("name"); name != "" {
		key = name
	}
	q.Del("name")
	u.RawQuery = q.Encode()
	opt, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "parse %s: %s", u.Redacted(), err)
	}
	if opt.Password == "" && os.Getenv("REDIS_PASSWORD") != "" {
		opt.Password = os.Getenv("REDIS_PASSWORD")
	}
	opt.ClientName = version.UserAgent()
	opt.MaxRetries = -1
	opt.ReadTimeout = time.Second * 30
	opt.WriteTimeout = time.Second * 5
	return OpenRedis(redis.NewClient(opt), key, conf.Slots, conf.Mode)
}

// OpenRedis lays chunks out in the string at key. The client is closed with the backend.
func OpenRedis(rdb *redis.Client, key string, slots uint32, mode Mode) (Backend, error) {
	ctx := context.Background()
	n, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(ErrMediaUnavailable, "redis %s: %s", key, err)
	}
	if n == 0 && mode&(ModeExisting|ModeOverride) == ModeExisting {
		_ = rdb.Close()
		return nil, errors.Wrapf(ErrMediaUnavailable, "redis %s: no such store", key)
	}
	fresh := n == 0 || mode&ModeOverride != 0
	if fresh && n > 0 {
		if err = rdb.Del(ctx, key).Err(); err != nil {
			_ = rdb.Close()
			return nil, errors.Wrapf(ErrMediaUnavailable, "reset redis %s: %s", key, err)
		}
	}
	return NewFileMedium("redis", key, &redisMedium{ctx, rdb, key}, fresh, slots)
}

func (r *redisMedium) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s, err := r.rdb.GetRange(r.ctx, r.key, off, off+int64(len(p))-1).Result()
	if err != nil {
		return 0, err
	}
	n := copy(p, s)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *redisMedium) WriteAt(p []byte, off int64) (int, error) {
	if err := r.rdb.SetRange(r.ctx, r.key, off, string(p)).Err(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (r *redisMedium) Close() error {
	return r.rdb.Close()
}
