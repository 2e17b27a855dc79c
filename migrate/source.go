package migrate

import (
	"io/fs"
	"path"
	"strings"
)

// LoadDir reads every .sql file under dir of fsys and returns their
// contents as an ordered migration list, in lexical filename order.
// The filename carries the order (001_initial.sql, 002_indexes.sql,
// ...); the content is returned verbatim. Works with os.DirFS for
// on-disk migrations and embed.FS for compiled-in ones.
//
// Renaming or removing files that have already been applied changes the
// positions Apply trusts. Append new files, never touch old ones.
func LoadDir(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	// fs.ReadDir returns entries sorted by filename.
	var bodies []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, string(data))
	}
	return bodies, nil
}
