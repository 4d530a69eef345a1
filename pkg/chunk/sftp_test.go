package chunk

import (
	"net"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeSFTP connects a client to an in-memory request server over net.Pipe.
func pipeSFTP(t *testing.T, h sftp.Handlers) *sftp.Client {
	t.Helper()
	c, s := net.Pipe()
	server := sftp.NewRequestServer(s, h)
	go func() { _ = server.Serve() }()
	t.Cleanup(func() { _ = server.Close() })
	client, err := sftp.NewClientPipe(c, c)
	require.NoError(t, err)
	return client
}

func TestSFTPMediumRoundTrip(t *testing.T) {
	h := sftp.InMemHandler()
	client := pipeSFTP(t, h)
	_, ok := client.HasExtension(fsyncExtension)
	require.False(t, ok)

	b, err := OpenSFTP(client, nil, "mem", "/chunks.img", &Config{Slots: 4})
	require.NoError(t, err)
	m := New(b, &Config{Sync: true})
	assert.Equal(t, "sftp", m.Format().Backend)
	assert.Equal(t, int64(32), m.Format().DataOffset)
	id, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Write(id, payload(0x5a)))
	// the server has no fsync extension, neither flush nor close may fail on it
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())

	client = pipeSFTP(t, h)
	st, err := client.Stat("/chunks.img")
	require.NoError(t, err)
	assert.Equal(t, int64(32+4*Size), st.Size())
	b, err = OpenSFTP(client, nil, "mem", "/chunks.img", &Config{Slots: 9, Mode: ModeExisting})
	require.NoError(t, err)
	m = New(b, nil)
	assert.Equal(t, uint32(4), m.Slots())
	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, payload(0x5a), got)
	require.NoError(t, m.Close())
}

func TestSFTPExistingModeDoesNotCreate(t *testing.T) {
	h := sftp.InMemHandler()
	client := pipeSFTP(t, h)
	defer client.Close()
	_, err := OpenSFTP(client, nil, "mem", "/typo.img", &Config{Mode: ModeExisting})
	assert.True(t, errors.Is(err, ErrMediaUnavailable))
	_, err = client.Stat("/typo.img")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
