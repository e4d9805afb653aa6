// Package keg manages the versioned installation directory of a formula:
// <prefix>/Cellar/<name>/<version>/{libexec,bin}.
package keg

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrInstall marks filesystem failures while populating a keg
var ErrInstall = errors.New("install failed")

const (
	// CellarDir holds every keg under the prefix
	CellarDir = "Cellar"

	// ReceiptFile is written at the root of each keg
	ReceiptFile = "INSTALL_RECEIPT.json"
)

// Keg is one installed version of a formula
type Keg struct {
	Prefix  string
	Name    string
	Version string
	Logger  zerolog.Logger
}

// New creates a Keg handle; nothing is touched on disk
func New(prefix, name, version string, logger zerolog.Logger) *Keg {
	return &Keg{Prefix: prefix, Name: name, Version: version, Logger: logger}
}

// Path returns <prefix>/Cellar/<name>/<version>
func (k *Keg) Path() string {
	return filepath.Join(k.Prefix, CellarDir, k.Name, k.Version)
}

// Libexec is the package-private library directory
func (k *Keg) Libexec() string {
	return filepath.Join(k.Path(), "libexec")
}

// BinDir holds the generated launchers
func (k *Keg) BinDir() string {
	return filepath.Join(k.Path(), "bin")
}

// ReceiptPath returns the path of the install receipt
func (k *Keg) ReceiptPath() string {
	return filepath.Join(k.Path(), ReceiptFile)
}

// Exists reports whether the keg directory is present
func (k *Keg) Exists() bool {
	info, err := os.Stat(k.Path())
	return err == nil && info.IsDir()
}

// Install replaces the keg with a fresh copy of every top-level entry of
// root in libexec. Entries whose name starts with a dot are left out; their
// contents, and dot-files below the top level, are copied as they are.
// It returns the names of the copied entries, sorted.
func (k *Keg) Install(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, eris.Wrapf(ErrInstall, "read source %s: %v", root, err)
	}
	if k.contains(root) {
		return nil, eris.Wrapf(ErrInstall, "source %s lies inside the keg it replaces", root)
	}

	if err := os.RemoveAll(k.Path()); err != nil {
		return nil, eris.Wrapf(ErrInstall, "remove previous keg: %v", err)
	}
	if err := os.MkdirAll(k.Libexec(), 0755); err != nil {
		return nil, eris.Wrapf(ErrInstall, "create libexec: %v", err)
	}

	var copied []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			k.Logger.Debug().Str("entry", name).Msg("skipping hidden entry")
			continue
		}

		if err := copyTree(filepath.Join(root, name), filepath.Join(k.Libexec(), name)); err != nil {
			return nil, eris.Wrapf(ErrInstall, "copy %s: %v", name, err)
		}
		copied = append(copied, name)
	}

	sort.Strings(copied)
	k.Logger.Debug().Str("libexec", k.Libexec()).Int("entries", len(copied)).Msg("source installed")
	return copied, nil
}

// contains reports whether path, with symlinks resolved, is the keg
// directory or lies below it
func (k *Keg) contains(path string) bool {
	kegPath, err := filepath.EvalSymlinks(k.Path())
	if err != nil {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(kegPath, resolved)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// WriteWrapper writes script to bin/<name> as an executable, replacing any
// previous file, and returns its path.
func (k *Keg) WriteWrapper(name, script string) (string, error) {
	if err := os.MkdirAll(k.BinDir(), 0755); err != nil {
		return "", eris.Wrapf(ErrInstall, "create bin dir: %v", err)
	}

	path := filepath.Join(k.BinDir(), name)
	os.Remove(path)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return "", eris.Wrapf(ErrInstall, "write wrapper: %v", err)
	}
	// WriteFile honours the umask
	if err := os.Chmod(path, 0755); err != nil {
		return "", eris.Wrapf(ErrInstall, "chmod wrapper: %v", err)
	}

	return path, nil
}

// Remove deletes the keg and prunes the formula directory when it is left
// empty.
func (k *Keg) Remove() error {
	if err := os.RemoveAll(k.Path()); err != nil {
		return eris.Wrapf(err, "remove %s", k.Path())
	}
	parent := filepath.Dir(k.Path())
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		os.Remove(parent)
	}
	return nil
}

// copyTree copies files, directories and symlinks from src to dst,
// keeping permission bits and link targets.
func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch mode := info.Mode(); {
	case mode&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)

	case mode.IsDir():
		if err := os.MkdirAll(dst, mode.Perm()|0700); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return os.Chmod(dst, mode.Perm()|0700)

	case mode.IsRegular():
		return copyFile(src, dst, mode.Perm())

	default:
		// sockets, devices and pipes have no place in a keg
		return nil
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}
