//go:build linux

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// getCreateTime returns the inode change time, the closest Linux has to a creation time
func getCreateTime(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec))
}
