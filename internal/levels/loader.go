// Package levels provides scenario loading for the rule engine.
// This package depends on world but world does not depend on levels.
package levels

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tilerules/internal/levels/formats"
)

// Scenario is a loaded scenario together with the file it came from.
type Scenario struct {
	*formats.Scenario
	FilePath string
}

// Loader handles loading scenarios from a directory tree.
type Loader struct {
	Root string
	fsys fs.FS
}

// NewLoader creates a loader reading from a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// NewFSLoader creates a loader reading from dir inside fsys, such as an
// embedded file system.
func NewFSLoader(fsys fs.FS, dir string) *Loader {
	return &Loader{Root: dir, fsys: mustSub(fsys, dir)}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	if dir == "" || dir == "." {
		return fsys
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		// fs.Sub only fails on an invalid path.
		panic(fmt.Sprintf("levels: invalid directory %q: %v", dir, err))
	}
	return sub
}

// LoadAll recursively scans and loads all scenario files.
// Invalid files are skipped. Returns scenarios sorted by ID for
// deterministic ordering.
func (l *Loader) LoadAll() ([]Scenario, error) {
	var scenarios []Scenario

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(p))
		if !isSupportedExtension(ext) {
			return nil
		}

		sc, err := l.LoadFile(p)
		if err != nil {
			// Skip invalid files
			return nil
		}

		scenarios = append(scenarios, sc)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	// Sort by ID for determinism
	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].ID < scenarios[j].ID
	})

	return scenarios, nil
}

// LoadFile loads a single scenario file. The path is relative to the
// loader's root.
func (l *Loader) LoadFile(p string) (Scenario, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	parsed, err := Parse(data, path.Ext(p))
	if err != nil {
		return Scenario{}, fmt.Errorf("parsing file %s: %w", p, err)
	}

	return Scenario{Scenario: parsed, FilePath: path.Join(l.Root, p)}, nil
}

// LoadByID loads a specific scenario by ID.
func (l *Loader) LoadByID(id string) (Scenario, error) {
	scenarios, err := l.LoadAll()
	if err != nil {
		return Scenario{}, err
	}

	for _, sc := range scenarios {
		if sc.ID == id {
			return sc, nil
		}
	}

	return Scenario{}, fmt.Errorf("scenario not found: %s", id)
}

// ListIDs returns all scenario IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	scenarios, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(scenarios))
	for i, sc := range scenarios {
		ids[i] = sc.ID
	}
	return ids, nil
}

// LoadPath loads a scenario file from anywhere on disk.
func LoadPath(p string) (Scenario, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading file %s: %w", p, err)
	}
	parsed, err := Parse(data, filepath.Ext(p))
	if err != nil {
		return Scenario{}, fmt.Errorf("parsing file %s: %w", p, err)
	}
	return Scenario{Scenario: parsed, FilePath: p}, nil
}

// Parse routes data to the parser for the given file extension.
func Parse(data []byte, ext string) (*formats.Scenario, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	case ".json":
		return formats.ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported extension: %s", ext)
	}
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
