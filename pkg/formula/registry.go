package formula

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

//go:embed formulas/*.toml
var builtin embed.FS

// ErrNotFound is returned when no formula with the requested name exists
var ErrNotFound = errors.New("formula not found")

// Registry looks formulas up by name in a user directory and then in the
// formulas bundled with the binary.
type Registry struct {
	dir string
}

// NewRegistry creates a Registry. dir may be empty to only use bundled formulas.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// Load reads and parses <name>.toml.
func (r *Registry) Load(name string) (*Formula, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, eris.Wrapf(ErrNotFound, "invalid formula name %q", name)
	}

	if r.dir != "" {
		p := filepath.Join(r.dir, name+".toml")
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	data, err := builtin.ReadFile(path.Join("formulas", name+".toml"))
	if err != nil {
		return nil, eris.Wrapf(ErrNotFound, "no formula named %s", name)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "bundled formula %s", name)
	}

	return f, nil
}

// Names lists every formula the registry can load, sorted.
func (r *Registry) Names() ([]string, error) {
	set := make(map[string]bool)

	entries, err := fs.ReadDir(builtin, "formulas")
	if err != nil {
		return nil, eris.Wrap(err, "failed to list bundled formulas")
	}
	for _, e := range entries {
		set[strings.TrimSuffix(e.Name(), ".toml")] = true
	}

	if r.dir != "" {
		matches, _ := filepath.Glob(filepath.Join(r.dir, "*.toml"))
		for _, m := range matches {
			set[strings.TrimSuffix(filepath.Base(m), ".toml")] = true
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
