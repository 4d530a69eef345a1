package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressors(t *testing.T) {
	src := bytes.Repeat([]byte("chunk-store "), 512)
	for _, name := range []string{"none", "lz4", "zstd"} {
		t.Run(name, func(t *testing.T) {
			c := NewCompressor(name)
			require.NotNil(t, c)
			assert.Equal(t, name, c.Name())

			dst, err := c.Compress(src)
			require.NoError(t, err)
			if name != "none" {
				assert.Less(t, len(dst), len(src))
			}
			out, err := c.Decompress(dst)
			require.NoError(t, err)
			assert.Equal(t, src, out)
		})
	}
}

func TestUnknownCompressor(t *testing.T) {
	assert.Nil(t, NewCompressor("brotli"))
	assert.NotNil(t, NewCompressor("ZSTD"))
	assert.Equal(t, "none", NewCompressor("").Name())
}

func TestLZ4Block(t *testing.T) {
	c := NewCompressor("lz4")
	src := bytes.Repeat([]byte{7}, 300)
	dst, err := c.Compress(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{44, 1, 0, 0}, dst[:4])

	empty, err := c.Compress(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, empty)
	out, err := c.Decompress(empty)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = c.Decompress([]byte{1, 0})
	assert.Error(t, err)
	// length prefix claims more than the block holds
	bad := append([]byte{}, dst...)
	bad[1] = 2
	_, err = c.Decompress(bad)
	assert.Error(t, err)
}
