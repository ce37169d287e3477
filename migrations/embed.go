// Package migrations embeds the goose migrations for both cache backends.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the PostgreSQL migration set.
func Postgres() fs.FS { return sub("postgres") }

// SQLite returns the SQLite migration set.
func SQLite() fs.FS { return sub("sqlite") }

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a compile-time constant matched by the embed pattern.
		panic(err)
	}
	return fsys
}
