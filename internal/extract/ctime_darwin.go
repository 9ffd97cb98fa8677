//go:build darwin

package extract

import (
	"os"
	"syscall"
	"time"
)

// creationTime reads the file's birth time, which darwin exposes
// directly in the stat result.
func creationTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	}
	return info.ModTime()
}
