//go:build unix

package ingest

import (
	"io/fs"
	"syscall"
)

// fileIdentity returns the inode of info, the identity used to detect a file
// replaced in place by rotation.
func fileIdentity(info fs.FileInfo) *int64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	ino := int64(st.Ino)
	return &ino
}
