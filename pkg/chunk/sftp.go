// pkg/chunk/sftp.go

package chunk

import (
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"ChunkStore/pkg/version"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const fsyncExtension = "fsync@openssh.com"

type sftpMedium struct {
	*sftp.File
	client *sftp.Client
	conn   io.Closer // ssh connection, nil for piped clients
}

func init() {
	Register("sftp", newSFTPBackend)
}

// Sync is a no-op on servers without the fsync extension.
func (s *sftpMedium) Sync() error {
	if _, ok := s.client.HasExtension(fsyncExtension); !ok {
		logger.Debugf("sftp: server has no %s, skip sync of %s", fsyncExtension, s.Name())
		return nil
	}
	return s.File.Sync()
}

func (s *sftpMedium) Close() error {
	err := s.File.Close()
	_ = s.client.Close()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	return err
}

func sshAuth(u *url.URL) ([]ssh.AuthMethod, error) {
	var auth []ssh.AuthMethod
	if keyPath := os.Getenv("SSH_PRIVATE_KEY"); keyPath != "" {
		pem, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read private key %s", keyPath)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errors.Wrapf(err, "parse private key %s", keyPath)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	password, ok := u.User.Password()
	if !ok {
		password = os.Getenv("SSH_PASSWORD")
	}
	if password != "" {
		auth = append(auth, ssh.Password(password))
	}
	return auth, nil
}

// newSFTPBackend opens a store like sftp://user@host:22/path/to/chunks.img.
func newSFTPBackend(driver, addr string, conf *Config) (Backend, error) {
	u, err := url.Parse(driver + "://" + addr)
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "parse %s://%s: %s", driver, addr, err)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "22")
	}
	auth, err := sshAuth(u)
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "%s", err)
	}
	config := &ssh.ClientConfig{
		User:            u.User.Username(),
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		ClientVersion:   "SSH-2.0-" + version.UserAgent(),
		Timeout:         time.Second * 30,
	}
	conn, err := ssh.Dial("tcp", host, config)
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "ssh %s: %s", host, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(ErrMediaUnavailable, "sftp %s: %s", host, err)
	}

	b, err := OpenSFTP(client, conn, host, u.Path, conf)
	if err != nil {
		_ = client.Close()
		_ = conn.Close()
		return nil, err
	}
	return b, nil
}

// OpenSFTP lays chunks out in the remote file at path. client and conn are
// closed with the backend, conn may be nil.
func OpenSFTP(client *sftp.Client, conn io.Closer, host, path string, conf *Config) (Backend, error) {
	f, fresh, err := openMedium(conf, func(flag int) (Medium, error) {
		return client.OpenFile(path, flag)
	})
	if err != nil {
		return nil, errors.Wrapf(ErrMediaUnavailable, "open %s on %s: %s", path, host, err)
	}
	var slots uint32
	if conf != nil {
		slots = conf.Slots
	}
	return NewFileMedium("sftp", host+path, &sftpMedium{f.(*sftp.File), client, conn}, fresh, slots)
}
