package migrate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed migrations/*.sql
var embedded embed.FS

// embeddedDir is the directory inside the embedded FS that holds the SQL files.
const embeddedDir = "migrations"

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS { return embedded }

// source returns the migration files rooted at their directory: the embedded
// set when dir is empty, dir on disk otherwise.
func source(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
		}
		return os.DirFS(dir), nil
	}
	sub, err := fs.Sub(embedded, embeddedDir)
	if err != nil {
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}
	return sub, nil
}
