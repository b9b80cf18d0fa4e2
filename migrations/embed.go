// Package migrations holds the SQL schema applied by internal/db.
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed *.sql
var FS embed.FS

// Source prefers an on-disk directory when one is configured, else the
// migrations compiled into the binary.
func Source(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return FS
}
