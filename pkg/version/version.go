// pkg/version/version.go

package version

import (
	"fmt"
	"runtime"
)

var (
	version      = "0.1.0-dev"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns the version in format - `VERSION (REVISIONDATE REVISION) GOVERSION`
// value is assigned in Makefile
func Version() string {
	return fmt.Sprintf("%v (%v %v) %v", version, revisionDate, revision, runtime.Version())
}

// UserAgent identifies this build to remote media (redis client name, ssh client version).
func UserAgent() string {
	return "ChunkStore-" + version
}
