package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var FS embed.FS

// MigrationsDir is the directory inside FS holding *.sql migrations.
const MigrationsDir = "migrations"

// Migrations returns the migration file paths in lexical (apply) order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, MigrationsDir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		out = append(out, path.Join(MigrationsDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
