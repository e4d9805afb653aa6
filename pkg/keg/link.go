package keg

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// LinkDir is <prefix>/bin, where launchers are exposed on PATH
func (k *Keg) LinkDir() string {
	return filepath.Join(k.Prefix, "bin")
}

// Link creates a relative symlink <prefix>/bin/<name> pointing at the
// keg's launcher, replacing whatever was there. Returns the link path.
func (k *Keg) Link(name string) (string, error) {
	binDir := k.LinkDir()
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return "", eris.Wrap(err, "create bin dir")
	}

	linkPath := filepath.Join(binDir, name)
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return "", eris.Wrap(err, "remove existing link")
		}
	}

	relPath, err := filepath.Rel(binDir, filepath.Join(k.BinDir(), name))
	if err != nil {
		return "", eris.Wrap(err, "compute relative path")
	}

	if err := os.Symlink(relPath, linkPath); err != nil {
		return "", eris.Wrap(err, "create symlink")
	}

	k.Logger.Debug().Str("link", linkPath).Str("target", relPath).Msg("linked")
	return linkPath, nil
}

// Unlink removes <prefix>/bin/<name> if it points into this keg.
func (k *Keg) Unlink(name string) error {
	linkPath := filepath.Join(k.LinkDir(), name)
	target, err := os.Readlink(linkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrap(err, "read link")
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(k.LinkDir(), target)
	}
	if filepath.Dir(filepath.Clean(target)) != k.BinDir() {
		return nil
	}

	if err := os.Remove(linkPath); err != nil {
		return eris.Wrap(err, "remove link")
	}
	return nil
}
