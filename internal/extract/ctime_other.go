//go:build !linux && !darwin

package extract

import (
	"os"
	"time"
)

// creationTime falls back to the modification time on platforms without
// a portable birth or change time in the stat result.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
