package source

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
)

// extractArchive unpacks a tarball (plain, gzip or xz) into dest
func extractArchive(archivePath, dest string, logger zerolog.Logger) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return eris.Wrap(err, "opening archive")
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	lower := strings.ToLower(archivePath)

	switch {
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return eris.Wrap(err, "creating gzip reader")
		}
		defer gzr.Close()
		r = gzr
	case strings.HasSuffix(lower, ".xz"), strings.HasSuffix(lower, ".txz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return eris.Wrap(err, "creating xz reader")
		}
		r = xzr
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return eris.Wrapf(err, "creating %s", dest)
	}
	realDest, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return eris.Wrapf(err, "resolving %s", dest)
	}

	tr := tar.NewReader(r)
	files, dirs, links := 0, 0, 0

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return eris.Wrap(err, "reading tar entry")
		}

		cleanPath := strings.TrimPrefix(header.Name, "./")
		if cleanPath == "" || cleanPath == "." {
			continue
		}

		targetPath, err := within(dest, cleanPath)
		if err != nil {
			return err
		}

		// Links extracted earlier may redirect the parent outside dest.
		parent, err := resolveParent(realDest, filepath.Dir(targetPath))
		if err != nil {
			return eris.Wrapf(err, "archive entry %q", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return eris.Wrapf(err, "creating directory %s", targetPath)
			}
			dirs++

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return eris.Wrap(err, "creating parent directory for symlink")
			}
			if !inside(realDest, linkTarget(parent, header.Linkname)) {
				return eris.Errorf("archive link %q -> %q escapes destination", header.Name, header.Linkname)
			}
			os.Remove(targetPath)
			if err := os.Symlink(header.Linkname, targetPath); err != nil {
				return eris.Wrapf(err, "creating symlink %s -> %s", targetPath, header.Linkname)
			}
			links++

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return eris.Wrap(err, "creating parent directory")
			}
			os.Remove(targetPath)

			out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return eris.Wrapf(err, "creating file %s", targetPath)
			}

			written, err := io.Copy(out, tr)
			out.Close()
			if err != nil {
				return eris.Wrapf(err, "writing file %s", targetPath)
			}
			if written != header.Size {
				return eris.Errorf("file size mismatch for %s: expected %d, got %d", targetPath, header.Size, written)
			}
			files++

		default:
			logger.Debug().Str("entry", header.Name).Msg("skipping unsupported tar entry")
		}
	}

	logger.Debug().Int("files", files).Int("dirs", dirs).Int("symlinks", links).Msg("archive extracted")
	return nil
}

// within joins name onto root and refuses results outside root
func within(root, name string) (string, error) {
	target := filepath.Join(root, name)
	if !inside(root, target) {
		return "", eris.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// inside reports whether path is root or lies below it
func inside(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveParent follows symlinks in the deepest existing ancestor of dir
// and fails when the real location is outside realRoot.
func resolveParent(realRoot, dir string) (string, error) {
	existing, missing := dir, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		next := filepath.Dir(existing)
		if next == existing {
			break
		}
		missing = filepath.Join(filepath.Base(existing), missing)
		existing = next
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", eris.Wrapf(err, "resolving %s", existing)
	}
	if !inside(realRoot, resolved) {
		return "", eris.Errorf("%s resolves outside destination", dir)
	}
	return filepath.Join(resolved, missing), nil
}

// linkTarget is where a symlink created in dir pointing at linkname leads
func linkTarget(dir, linkname string) string {
	if filepath.IsAbs(linkname) {
		return filepath.Clean(linkname)
	}
	return filepath.Join(dir, linkname)
}
