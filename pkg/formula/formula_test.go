package formula

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBundledBraids(t *testing.T) {
	t.Parallel()

	f, err := NewRegistry("").Load("braids")
	if err != nil {
		t.Fatalf("Load(braids): %v", err)
	}

	if f.URL != "https://github.com/slagyr/project-skill.git" {
		t.Errorf("URL = %q", f.URL)
	}
	if f.Tag != "v0.1.0" {
		t.Errorf("Tag = %q, want v0.1.0", f.Tag)
	}
	if f.License != "MIT" {
		t.Errorf("License = %q, want MIT", f.License)
	}

	version, err := f.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "0.1.0" {
		t.Errorf("Version = %q, want 0.1.0", version)
	}

	wantDeps := []Dependency{
		{Name: "borkdude/brew/babashka", Provides: "bb"},
		{Name: "beads", Provides: "bd"},
	}
	if len(f.Dependencies) != len(wantDeps) {
		t.Fatalf("got %d dependencies, want %d", len(f.Dependencies), len(wantDeps))
	}
	for i, want := range wantDeps {
		if f.Dependencies[i] != want {
			t.Errorf("Dependencies[%d] = %+v, want %+v", i, f.Dependencies[i], want)
		}
	}

	w := f.Wrapper
	if w.Name != "braids" || w.Runtime != "bb" || w.Config != "bb.edn" || w.Subcommand != "braids" {
		t.Errorf("unexpected wrapper: %+v", w)
	}
	if w.Interpreter != DefaultInterpreter {
		t.Errorf("Interpreter = %q, want %q", w.Interpreter, DefaultInterpreter)
	}

	if len(f.Test.Args) != 1 || f.Test.Args[0] != "help" || f.Test.Match != "braids" || f.Test.ExitCode != 0 {
		t.Errorf("unexpected test: %+v", f.Test)
	}
}

func TestDependencyShortName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "borkdude/brew/babashka", want: "babashka"},
		{name: "beads", want: "beads"},
		{name: "user/tap/", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Dependency{Name: tt.name}.ShortName()
			if got != tt.want {
				t.Errorf("ShortName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	const base = `
name = "tool"
url = "https://example.com/tool.git"
`
	const wrapper = `
[wrapper]
runtime = "bb"
config = "bb.edn"
subcommand = "tool"
`

	tests := []struct {
		name string
		data string
	}{
		{name: "missing name", data: `url = "x"` + "\ntag = \"v1.0.0\"\n" + wrapper},
		{name: "missing tag", data: base + wrapper},
		{name: "tag not a version", data: base + "tag = \"latest\"\n" + wrapper},
		{name: "missing runtime", data: base + "tag = \"v1.0.0\"\n[wrapper]\nconfig = \"bb.edn\"\nsubcommand = \"x\"\n"},
		{
			name: "duplicate dependency",
			data: base + "tag = \"v1.0.0\"\n" +
				"[[dependencies]]\nname = \"beads\"\n[[dependencies]]\nname = \"beads\"\n" + wrapper,
		},
		{name: "malformed toml", data: "name = "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse succeeded, want error")
			}
		})
	}
}

func TestRegistryUserDirOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := `
name = "braids"
url = "https://example.com/fork.git"
tag = "v0.2.0"

[wrapper]
runtime = "bb"
config = "bb.edn"
subcommand = "braids"
`
	if err := os.WriteFile(filepath.Join(dir, "braids.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(dir)
	f, err := reg.Load("braids")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.URL != "https://example.com/fork.git" {
		t.Errorf("URL = %q, want the user override", f.URL)
	}

	names, err := reg.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 2 || names[0] != "braids" || names[1] != "other" {
		t.Errorf("Names = %v, want [braids other]", names)
	}
}

func TestRegistryNotFound(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(t.TempDir())
	for _, name := range []string{"missing", "", "../braids"} {
		_, err := reg.Load(name)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}
