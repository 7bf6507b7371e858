//go:build !unix

package ingest

import "io/fs"

// fileIdentity is unknown on platforms without inodes; rotation is then
// detected by size only.
func fileIdentity(fs.FileInfo) *int64 {
	return nil
}
