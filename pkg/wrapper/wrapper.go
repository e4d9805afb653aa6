// Package wrapper renders the launcher script installed into a keg's bin
// directory and can interpret it in-process to show what it would run.
package wrapper

import (
	"bytes"
	_ "embed"
	"regexp"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"
)

//go:embed wrapper.sh.tmpl
var scriptTemplate string

var tmpl = template.Must(template.New("wrapper").
	Funcs(template.FuncMap{"quote": doubleQuote}).
	Parse(scriptTemplate))

// Words that are written into the script unquoted.
var plainWord = regexp.MustCompile(`^[A-Za-z0-9_./+@%:=-]+$`)

// Spec holds everything the launcher hard-codes
type Spec struct {
	Interpreter string // e.g. "/usr/bin/env bash"
	Runtime     string // e.g. "bb"
	ConfigPath  string // absolute path of the config file inside libexec
	Subcommand  string // e.g. "braids"
}

// Render produces the launcher script for s. The result always ends in a
// newline and parses as bash.
func Render(s Spec) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return "", eris.Wrap(err, "failed to execute wrapper template")
	}

	script := buf.String()
	if _, err := parse(script); err != nil {
		return "", eris.Wrap(err, "generated wrapper does not parse")
	}

	return script, nil
}

func (s Spec) validate() error {
	if !strings.HasPrefix(s.Interpreter, "/") || strings.ContainsAny(s.Interpreter, "\n\r") {
		return eris.Errorf("interpreter must be an absolute command line, got %q", s.Interpreter)
	}
	if !plainWord.MatchString(s.Runtime) {
		return eris.Errorf("runtime %q is not a plain command name", s.Runtime)
	}
	if !plainWord.MatchString(s.Subcommand) {
		return eris.Errorf("subcommand %q is not a plain word", s.Subcommand)
	}
	if s.ConfigPath == "" || strings.ContainsAny(s.ConfigPath, "\n\r") {
		return eris.Errorf("invalid config path %q", s.ConfigPath)
	}
	return nil
}

// doubleQuote wraps v in double quotes, escaping the characters bash still
// interprets inside them.
func doubleQuote(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '\\', '"', '$', '`':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func parse(script string) (*syntax.File, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	return parser.Parse(strings.NewReader(script), "wrapper")
}
