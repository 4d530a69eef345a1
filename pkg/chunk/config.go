// pkg/chunk/config.go

package chunk

// Mode controls how persistent backends treat existing media.
type Mode uint32

const (
	// ModeOverride initializes the medium instead of reading its header.
	ModeOverride Mode = 1 << iota
	// ModeExisting fails with ErrMediaUnavailable instead of creating a missing medium.
	ModeExisting
)

// Config for chunk managers and their backends.
type Config struct {
	ManagerID     uint32 // random when zero
	Slots         uint32 // slot count for fresh media, ignored when recovered
	Mode          Mode
	Sync          bool  // sync the backend after every flush
	UploadLimit   int64 // bytes per second for saves, 0 is unlimited
	DownloadLimit int64 // bytes per second for loads, 0 is unlimited
}

func (c *Config) override() bool {
	return c != nil && c.Mode&ModeOverride != 0
}

func (c *Config) existing() bool {
	return c != nil && c.Mode&ModeExisting != 0
}

// Format describes an opened medium.
type Format struct {
	Backend    string
	Slots      uint32
	RecordSize int
	DataOffset int64
	Used       int
}
