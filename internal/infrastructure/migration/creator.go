package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

var fileTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Rollback}} (rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`))

// Entry is one migration found in a source, with whether both halves exist
type Entry struct {
	Version uint
	Name    string
	HasUp   bool
	HasDown bool
}

// Base is the file name prefix shared by the up and down halves
func (e Entry) Base() string {
	return fmt.Sprintf("%06d_%s", e.Version, e.Name)
}

// Created describes a freshly written migration pair
type Created struct {
	Entry
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair numbered one past the highest
// version already in dir
func CreateMigration(dir, name, description string) (*Created, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	c := &Created{Entry: Entry{Version: next, Name: slug, HasUp: true, HasDown: true}}
	c.UpPath = filepath.Join(dir, c.Base()+".up.sql")
	c.DownPath = filepath.Join(dir, c.Base()+".down.sql")

	data := struct {
		Name, Description, Created string
		Rollback                   bool
	}{Name: slug, Description: description, Created: time.Now().UTC().Format(time.RFC3339)}

	if err := writeTemplate(c.UpPath, data); err != nil {
		return nil, err
	}
	data.Rollback = true
	if err := writeTemplate(c.DownPath, data); err != nil {
		_ = os.Remove(c.UpPath)
		return nil, err
	}
	return c, nil
}

func writeTemplate(path string, data any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return fileTemplate.Execute(f, data)
}

// sanitizeName lowercases name and folds runs of separators into a single
// underscore, dropping anything else
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the migrations in fsys ordered by version. A
// missing directory yields no entries.
func ListMigrations(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		e, ok := byVersion[uint(v)]
		if !ok {
			e = &Entry{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = e
		} else if e.Name != m[2] {
			return nil, fmt.Errorf("migration %d has two names: %s and %s", v, e.Name, m[2])
		}
		if m[3] == "up" {
			e.HasUp = true
		} else {
			e.HasDown = true
		}
	}

	entries := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}
