package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker        = "-- +goose Up"
	downMarker      = "-- +goose Down"
	stmtBeginMarker = "-- +goose StatementBegin"
	stmtEndMarker   = "-- +goose StatementEnd"
)

// ValidateDir checks the migrations in dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks filenames, version uniqueness and the goose annotations
// of every .sql file directly under dir in fsys.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	byVersion := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := byVersion[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		byVersion[m[1]] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := checkAnnotations(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(byVersion) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

// checkAnnotations wants exactly one Up section followed by one Down section,
// with statement blocks that open and close inside the same section.
func checkAnnotations(sql string) error {
	var (
		ups, downs int
		open       bool
	)
	for _, line := range strings.Split(sql, "\n") {
		switch strings.TrimSpace(line) {
		case upMarker:
			if downs > 0 {
				return fmt.Errorf("%q after %q", upMarker, downMarker)
			}
			ups++
		case downMarker:
			if open {
				return fmt.Errorf("%q inside an open statement block", downMarker)
			}
			downs++
		case stmtBeginMarker:
			if open {
				return fmt.Errorf("nested %q", stmtBeginMarker)
			}
			open = true
		case stmtEndMarker:
			if !open {
				return fmt.Errorf("%q without %q", stmtEndMarker, stmtBeginMarker)
			}
			open = false
		}
	}
	switch {
	case ups != 1:
		return fmt.Errorf("want one %q, found %d", upMarker, ups)
	case downs != 1:
		return fmt.Errorf("want one %q, found %d", downMarker, downs)
	case open:
		return fmt.Errorf("unterminated %q", stmtBeginMarker)
	}
	return nil
}
