//go:build linux

package extract

import (
	"os"
	"syscall"
	"time"
)

// creationTime approximates when the file came into being. Linux does not
// expose birth time through os.Stat, so the inode change time is the
// closest available field.
func creationTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}
