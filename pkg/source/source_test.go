package source

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
)

type entry struct {
	name     string
	body     string
	linkname string
	dir      bool
	mode     int64
}

func writeTar(t *testing.T, w io.Writer, entries []entry) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.linkname
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header: %v", err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatalf("write tar content: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
}

func createTarGz(t *testing.T, entries []entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.tar.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	writeTar(t, gw, entries)
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return path
}

func createTarXz(t *testing.T, entries []entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.tar.xz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("create xz writer: %v", err)
	}
	writeTar(t, xw, entries)
	if err := xw.Close(); err != nil {
		t.Fatalf("close xz writer: %v", err)
	}
	return path
}

var projectEntries = []entry{
	{name: "project-skill-0.1.0/", dir: true, mode: 0o755},
	{name: "project-skill-0.1.0/bb.edn", body: "{:tasks {}}\n"},
	{name: "project-skill-0.1.0/src/braids/core.clj", body: "(ns braids.core)\n"},
	{name: "project-skill-0.1.0/bin/run", body: "#!/bin/sh\n", mode: 0o755},
	{name: "project-skill-0.1.0/README", linkname: "bb.edn"},
}

func TestStageArchives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		archive func(*testing.T, []entry) string
	}{
		{name: "gzip", archive: createTarGz},
		{name: "xz", archive: createTarXz},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := Source{URL: tt.archive(t, projectEntries), Tag: "v0.1.0"}
			if src.Kind() != KindArchive {
				t.Fatalf("Kind() = %s, want archive", src.Kind())
			}

			st := &Stager{Logger: zerolog.Nop()}
			root, err := st.Stage(context.Background(), src, t.TempDir())
			if err != nil {
				t.Fatalf("Stage: %v", err)
			}

			if filepath.Base(root) != "project-skill-0.1.0" {
				t.Errorf("root = %s, want the single top-level directory", root)
			}

			data, err := os.ReadFile(filepath.Join(root, "src", "braids", "core.clj"))
			if err != nil || string(data) != "(ns braids.core)\n" {
				t.Errorf("core.clj = %q, %v", data, err)
			}

			info, err := os.Stat(filepath.Join(root, "bin", "run"))
			if err != nil {
				t.Fatalf("stat bin/run: %v", err)
			}
			if info.Mode().Perm()&0o111 == 0 {
				t.Errorf("bin/run mode = %v, want executable", info.Mode())
			}

			target, err := os.Readlink(filepath.Join(root, "README"))
			if err != nil || target != "bb.edn" {
				t.Errorf("README link = %q, %v", target, err)
			}
		})
	}
}

func TestStageArchiveWithoutWrapperDir(t *testing.T) {
	t.Parallel()

	path := createTarGz(t, []entry{
		{name: "bb.edn", body: "{}"},
		{name: "src/", dir: true, mode: 0o755},
	})

	st := &Stager{Logger: zerolog.Nop()}
	work := t.TempDir()
	root, err := st.Stage(context.Background(), Source{URL: path}, work)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if root != filepath.Join(work, "src") {
		t.Errorf("root = %s, want %s", root, filepath.Join(work, "src"))
	}
}

func TestStageArchiveRejectsTraversal(t *testing.T) {
	t.Parallel()

	path := createTarGz(t, []entry{{name: "../../evil", body: "x"}})

	st := &Stager{Logger: zerolog.Nop()}
	_, err := st.Stage(context.Background(), Source{URL: path}, t.TempDir())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Stage error = %v, want ErrFetch", err)
	}
}

func TestStageArchiveRejectsLinkEscapes(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()

	tests := []struct {
		name    string
		entries []entry
	}{
		{
			name: "absolute link",
			entries: []entry{
				{name: "evil", linkname: outside},
				{name: "evil/pwned", body: "x"},
			},
		},
		{
			name: "relative link",
			entries: []entry{
				{name: "evil", linkname: "../../.."},
				{name: "evil/pwned", body: "x"},
			},
		},
		{
			name: "link through link",
			entries: []entry{
				{name: "here", linkname: "."},
				{name: "here/up", linkname: ".."},
				{name: "here/up/pwned", body: "x"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := &Stager{Logger: zerolog.Nop()}
			_, err := st.Stage(context.Background(), Source{URL: createTarGz(t, tt.entries)}, t.TempDir())
			if !errors.Is(err, ErrFetch) {
				t.Errorf("Stage error = %v, want ErrFetch", err)
			}
			if _, err := os.Stat(filepath.Join(outside, "pwned")); !os.IsNotExist(err) {
				t.Errorf("archive wrote outside the destination")
			}
		})
	}
}

func TestStageArchiveFollowsInnerLinks(t *testing.T) {
	t.Parallel()

	path := createTarGz(t, []entry{
		{name: "lib/", dir: true, mode: 0o755},
		{name: "alias", linkname: "lib"},
		{name: "alias/core.clj", body: "(ns core)\n"},
	})

	st := &Stager{Logger: zerolog.Nop()}
	root, err := st.Stage(context.Background(), Source{URL: path}, t.TempDir())
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "lib", "core.clj"))
	if err != nil || string(data) != "(ns core)\n" {
		t.Errorf("lib/core.clj = %q, %v", data, err)
	}
}

func TestStageCorruptArchive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.tar.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}

	st := &Stager{Logger: zerolog.Nop()}
	_, err := st.Stage(context.Background(), Source{URL: path}, t.TempDir())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Stage error = %v, want ErrFetch", err)
	}
}

func TestStageDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := Source{URL: dir, Tag: "v0.1.0"}
	if src.Kind() != KindDir {
		t.Fatalf("Kind() = %s, want dir", src.Kind())
	}

	st := &Stager{Logger: zerolog.Nop()}
	root, err := st.Stage(context.Background(), src, t.TempDir())
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if root != dir {
		t.Errorf("root = %s, want %s", root, dir)
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want Kind
	}{
		{url: "https://github.com/slagyr/project-skill.git", want: KindGit},
		{url: "git@github.com:slagyr/project-skill.git", want: KindGit},
		{url: "/nonexistent/project.tar.gz", want: KindArchive},
		{url: "/nonexistent/project.TGZ", want: KindArchive},
		{url: "/nonexistent/project.tar.xz", want: KindArchive},
		{url: "/nonexistent/project", want: KindGit},
	}

	for _, tt := range tests {
		if got := (Source{URL: tt.url}).Kind(); got != tt.want {
			t.Errorf("Kind(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestStageGitFailure(t *testing.T) {
	t.Parallel()

	missing := "file://" + filepath.Join(t.TempDir(), "missing.git")
	st := &Stager{Logger: zerolog.Nop()}
	_, err := st.Stage(context.Background(), Source{URL: missing, Tag: "v0.1.0"}, t.TempDir())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Stage error = %v, want ErrFetch", err)
	}
}

func TestStageGitTag(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	commit := func(name, body, msg string) plumbing.Hash {
		t.Helper()
		if err := os.WriteFile(filepath.Join(repoDir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		hash, err := wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "Tap", Email: "tap@example.com", When: time.Unix(1700000000, 0)},
		})
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		return hash
	}

	release := commit("bb.edn", "{:paths [\"src\"]}\n", "release")
	if _, err := repo.CreateTag("v0.1.0", release, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	commit("later.txt", "after the tag\n", "later work")

	st := &Stager{Logger: zerolog.Nop()}
	root, err := st.Stage(context.Background(), Source{URL: "file://" + repoDir, Tag: "v0.1.0"}, t.TempDir())
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "bb.edn")); err != nil {
		t.Errorf("bb.edn missing from the tagged snapshot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "later.txt")); !os.IsNotExist(err) {
		t.Errorf("later.txt present, want the snapshot at v0.1.0 only")
	}
}
