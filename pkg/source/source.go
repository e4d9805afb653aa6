// Package source stages the source snapshot a formula installs from.
package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrFetch marks failures to obtain the source snapshot
var ErrFetch = errors.New("fetch failed")

// Kind is how a source location is materialized
type Kind string

const (
	KindGit     Kind = "git"
	KindArchive Kind = "archive"
	KindDir     Kind = "dir"
)

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar"}

// Source is a location plus the immutable tag pinning the snapshot
type Source struct {
	URL string
	Tag string
}

// Kind classifies the location. Existing local directories are used in
// place, known archive suffixes are extracted and anything else is cloned.
func (s Source) Kind() Kind {
	if info, err := os.Stat(s.URL); err == nil && info.IsDir() {
		return KindDir
	}
	lower := strings.ToLower(s.URL)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return KindArchive
		}
	}
	return KindGit
}

// Stager materializes sources into a work directory
type Stager struct {
	Logger   zerolog.Logger
	Progress io.Writer // git progress output, may be nil
}

// Stage makes the snapshot available under workDir and returns the
// directory whose entries are to be installed.
func (st *Stager) Stage(ctx context.Context, src Source, workDir string) (string, error) {
	kind := src.Kind()
	st.Logger.Debug().Str("url", src.URL).Str("tag", src.Tag).Str("kind", string(kind)).Msg("staging source")

	switch kind {
	case KindDir:
		root, err := filepath.Abs(src.URL)
		if err != nil {
			return "", eris.Wrapf(ErrFetch, "resolve %s: %v", src.URL, err)
		}
		return root, nil

	case KindArchive:
		dest := filepath.Join(workDir, "src")
		if err := extractArchive(src.URL, dest, st.Logger); err != nil {
			return "", eris.Wrapf(ErrFetch, "extract %s: %v", src.URL, err)
		}
		return enterSingleDir(dest)

	default:
		dest := filepath.Join(workDir, "src")
		if err := cloneTag(ctx, src.URL, src.Tag, dest, st.Progress); err != nil {
			return "", eris.Wrapf(ErrFetch, "clone %s at %s: %v", src.URL, src.Tag, err)
		}
		return dest, nil
	}
}

// enterSingleDir returns the only child of dir when dir holds exactly one
// directory and nothing else, dir otherwise.
func enterSingleDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(ErrFetch, "read %s: %v", dir, err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}
