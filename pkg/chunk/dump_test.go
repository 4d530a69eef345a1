package chunk

import (
	"bytes"
	"path/filepath"
	"testing"

	"ChunkStore/pkg/compress"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpRestore(t *testing.T) {
	for _, algr := range []string{"none", "lz4", "zstd"} {
		t.Run(algr, func(t *testing.T) {
			c := compress.NewCompressor(algr)
			src := New(NewMemory(6), nil)
			for i := 0; i < 4; i++ {
				_, err := src.Create()
				require.NoError(t, err)
			}
			require.NoError(t, src.Delete(1))
			require.NoError(t, src.Write(0, payload(0x10)))
			require.NoError(t, src.Write(3, payload(0x30)))

			var buf bytes.Buffer
			var dumped int
			require.NoError(t, Dump(&buf, src, c, func() { dumped++ }))
			assert.Equal(t, 3, dumped)

			path := filepath.Join(t.TempDir(), "restored.img")
			b, err := OpenFile(path, 6, 0)
			require.NoError(t, err)
			dst := New(b, nil)
			n, err := Restore(&buf, dst, c, nil)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			require.NoError(t, dst.Flush())
			require.NoError(t, dst.Close())

			b, err = OpenFile(path, 6, 0)
			require.NoError(t, err)
			dst = New(b, nil)
			defer dst.Close()
			for id, want := range map[ID]Chunk{0: payload(0x10), 2: {}, 3: payload(0x30)} {
				used, err := dst.Used(id)
				require.NoError(t, err)
				assert.True(t, used)
				got, err := dst.Get(id)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			used, err := dst.Used(1)
			require.NoError(t, err)
			assert.False(t, used)
		})
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	m := New(NewMemory(2), nil)
	_, err := Restore(bytes.NewReader([]byte{1, 2, 3}), m, compress.NewCompressor("none"), nil)
	assert.True(t, errors.Is(err, ErrMediaCorrupt))

	var buf bytes.Buffer
	big := New(NewMemory(4), nil)
	require.NoError(t, big.Write(3, payload(1)))
	require.NoError(t, big.claim(3))
	require.NoError(t, Dump(&buf, big, compress.NewCompressor("none"), nil))
	_, err = Restore(&buf, m, compress.NewCompressor("none"), nil)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
