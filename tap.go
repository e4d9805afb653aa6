// tap.go
package tap

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/slagyr/homebrew-tap/pkg/brew"
	"github.com/slagyr/homebrew-tap/pkg/deps"
	"github.com/slagyr/homebrew-tap/pkg/formula"
	"github.com/slagyr/homebrew-tap/pkg/keg"
	"github.com/slagyr/homebrew-tap/pkg/platform"
	"github.com/slagyr/homebrew-tap/pkg/smoke"
	"github.com/slagyr/homebrew-tap/pkg/source"
	"github.com/slagyr/homebrew-tap/pkg/wrapper"
)

// Re-export types callers commonly need
type (
	Formula = formula.Formula
	Receipt = keg.Receipt
)

// Config configures a Manager
type Config struct {
	// Prefix holds Cellar/ and bin/
	Prefix string

	// FormulaDir is searched for <name>.toml before the bundled formulas
	FormulaDir string

	// Link exposes launchers in <prefix>/bin after install
	Link bool

	// APIURL overrides the Homebrew JSON API endpoint
	APIURL string

	// LookPath finds dependency executables; defaults to a PATH search
	LookPath func(name string) (string, bool)

	// Logger for structured progress output
	Logger zerolog.Logger

	// Progress receives git clone progress, may be nil
	Progress io.Writer
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Prefix: platform.Detect().DefaultPrefix(),
		Link:   true,
		Logger: zerolog.Nop(),
	}
}

// InstallOptions configures a single install
type InstallOptions struct {
	// Source replaces the formula URL: a local directory or tarball
	Source string

	// IgnoreDependencies installs even when dependencies are missing
	IgnoreDependencies bool

	// NoLink skips linking into <prefix>/bin regardless of Config.Link
	NoLink bool
}

// InstallResult describes a finished install
type InstallResult struct {
	Keg      string
	Wrapper  string
	Link     string
	Entries  []string
	Receipt  *keg.Receipt
	Warnings []string
}

// Info summarizes a formula and its installed state
type Info struct {
	Formula   *formula.Formula
	Version   string
	Keg       string
	Installed bool
	Receipt   *keg.Receipt
}

// Dependency pairs a local check with optional upstream metadata
type Dependency struct {
	deps.Status
	Remote    *brew.FormulaInfo
	RemoteErr error
}

// Manager installs and verifies formulas
type Manager struct {
	config   *Config
	registry *formula.Registry
	stager   *source.Stager
	checker  *deps.Checker
	brew     *brew.Client
	logger   zerolog.Logger
}

// NewManager creates a Manager from a copy of config. A nil config uses
// DefaultConfig.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	config = &cfg
	if config.Prefix == "" {
		return nil, &Error{Op: "init", Err: eris.New("prefix is required")}
	}

	prefix, err := filepath.Abs(config.Prefix)
	if err != nil {
		return nil, &Error{Op: "init", Err: eris.Wrap(err, "resolving prefix")}
	}
	config.Prefix = prefix

	checker := deps.NewChecker(filepath.Join(prefix, keg.CellarDir))
	if config.LookPath != nil {
		checker.LookPath = config.LookPath
	}

	return &Manager{
		config:   config,
		registry: formula.NewRegistry(config.FormulaDir),
		stager:   &source.Stager{Logger: config.Logger, Progress: config.Progress},
		checker:  checker,
		brew:     brew.NewClient(config.APIURL),
		logger:   config.Logger,
	}, nil
}

// Prefix returns the absolute prefix the manager installs into
func (m *Manager) Prefix() string {
	return m.config.Prefix
}

// Formulas lists the names of every known formula
func (m *Manager) Formulas() ([]string, error) {
	names, err := m.registry.Names()
	if err != nil {
		return nil, &Error{Op: "list", Err: err}
	}
	return names, nil
}

// Formula loads a formula by name
func (m *Manager) Formula(name string) (*formula.Formula, error) {
	f, err := m.registry.Load(name)
	if err != nil {
		if errors.Is(err, formula.ErrNotFound) {
			return nil, &Error{Op: "load", Formula: name, Err: err}
		}
		return nil, &Error{Op: "load", Formula: name, Err: eris.Wrapf(ErrInvalidFormula, "%v", err)}
	}
	return f, nil
}

func (m *Manager) keg(f *formula.Formula) (*keg.Keg, error) {
	version, err := f.Version()
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidFormula, "%v", err)
	}
	return keg.New(m.config.Prefix, f.Name, version, m.logger.With().Str("formula", f.Name).Logger()), nil
}

func wrapperSpec(f *formula.Formula, k *keg.Keg) wrapper.Spec {
	return wrapper.Spec{
		Interpreter: f.Wrapper.Interpreter,
		Runtime:     f.Wrapper.Runtime,
		ConfigPath:  filepath.Join(k.Libexec(), f.Wrapper.Config),
		Subcommand:  f.Wrapper.Subcommand,
	}
}

// Info retrieves information about a formula and its keg
func (m *Manager) Info(name string) (*Info, error) {
	f, err := m.Formula(name)
	if err != nil {
		return nil, err
	}
	k, err := m.keg(f)
	if err != nil {
		return nil, &Error{Op: "info", Formula: name, Err: err}
	}

	info := &Info{Formula: f, Version: k.Version, Keg: k.Path(), Installed: k.Exists()}
	if info.Installed {
		if r, err := k.ReadReceipt(); err == nil {
			info.Receipt = r
		}
	}
	return info, nil
}

// Deps checks every declared dependency. With remote set, upstream metadata
// is fetched from the Homebrew API for each one; lookup failures are
// reported per dependency rather than failing the call.
func (m *Manager) Deps(ctx context.Context, name string, remote bool) ([]Dependency, error) {
	f, err := m.Formula(name)
	if err != nil {
		return nil, err
	}

	var result []Dependency
	for _, st := range m.checker.Check(f) {
		d := Dependency{Status: st}
		if remote {
			d.Remote, d.RemoteErr = m.brew.GetFormulaInfo(ctx, st.Dependency.Name)
		}
		result = append(result, d)
	}
	return result, nil
}

// Install checks dependencies, stages the source at the pinned tag, copies
// it into the keg's libexec, writes the launcher and records a receipt.
func (m *Manager) Install(ctx context.Context, name string, opts *InstallOptions) (*InstallResult, error) {
	if opts == nil {
		opts = &InstallOptions{}
	}

	f, err := m.Formula(name)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*InstallResult, error) {
		return nil, &Error{Op: "install", Formula: f.Name, Err: err}
	}

	k, err := m.keg(f)
	if err != nil {
		return fail(err)
	}
	log := k.Logger
	res := &InstallResult{Keg: k.Path()}

	log.Info().Str("step", "dependencies").Msg("checking dependencies")
	if err := m.checker.Require(f); err != nil {
		if !opts.IgnoreDependencies {
			return fail(err)
		}
		log.Warn().Err(err).Msg("ignoring missing dependencies")
		res.Warnings = append(res.Warnings, err.Error())
	}

	src := source.Source{URL: f.URL, Tag: f.Tag}
	if opts.Source != "" {
		src.URL = opts.Source
	}

	workDir, err := os.MkdirTemp("", "tap-stage-*")
	if err != nil {
		return fail(eris.Wrapf(ErrFetch, "creating work dir: %v", err))
	}
	defer os.RemoveAll(workDir)

	log.Info().Str("step", "fetch").Str("url", src.URL).Str("tag", src.Tag).Msg("staging source")
	root, err := m.stager.Stage(ctx, src, workDir)
	if err != nil {
		return fail(err)
	}

	log.Info().Str("step", "install").Str("path", k.Libexec()).Msg("installing into libexec")
	res.Entries, err = k.Install(root)
	if err != nil {
		return fail(err)
	}

	script, err := wrapper.Render(wrapperSpec(f, k))
	if err != nil {
		return fail(eris.Wrapf(ErrInvalidFormula, "%v", err))
	}
	res.Wrapper, err = k.WriteWrapper(f.Wrapper.Name, script)
	if err != nil {
		return fail(err)
	}
	log.Info().Str("step", "wrapper").Str("path", res.Wrapper).Msg("wrote launcher")

	linked := m.config.Link && !opts.NoLink
	if linked {
		res.Link, err = k.Link(f.Wrapper.Name)
		if err != nil {
			return fail(eris.Wrapf(ErrInstall, "link: %v", err))
		}
		log.Info().Str("step", "link").Str("path", res.Link).Msg("linked launcher")
	}

	digest, err := k.Digest()
	if err != nil {
		return fail(eris.Wrapf(ErrInstall, "digest: %v", err))
	}

	res.Receipt = &keg.Receipt{
		Formula:  f.Name,
		Version:  k.Version,
		Tag:      f.Tag,
		Source:   src.URL,
		Platform: platform.Detect().Tag(),
		Linked:   linked,
		Digest:   digest,
	}
	for _, d := range f.Dependencies {
		res.Receipt.Dependencies = append(res.Receipt.Dependencies, d.Name)
	}
	if err := k.WriteReceipt(res.Receipt); err != nil {
		return fail(err)
	}

	log.Info().Str("digest", digest).Msg("installed")
	return res, nil
}

// Test runs the formula's smoke test against the installed launcher
func (m *Manager) Test(ctx context.Context, name string) (*smoke.Result, error) {
	f, err := m.Formula(name)
	if err != nil {
		return nil, err
	}
	k, err := m.keg(f)
	if err != nil {
		return nil, &Error{Op: "test", Formula: name, Err: err}
	}
	if !k.Exists() {
		return nil, &Error{Op: "test", Formula: name, Err: eris.Wrapf(ErrNotInstalled, "no keg at %s", k.Path())}
	}

	path := filepath.Join(k.BinDir(), f.Wrapper.Name)
	k.Logger.Info().Str("step", "test").Str("path", path).Strs("args", f.Test.Args).Msg("running test")

	res, err := smoke.Run(ctx, path, f.Test)
	if err != nil {
		return res, &Error{Op: "test", Formula: name, Err: err}
	}
	return res, nil
}

// Trace shows the command line the launcher would exec for args and the
// status it would exit with when the runtime exits with status. The
// installed launcher is used when present, otherwise the one an install
// would write.
func (m *Manager) Trace(ctx context.Context, name string, args []string, status uint8) (*wrapper.Invocation, error) {
	f, err := m.Formula(name)
	if err != nil {
		return nil, err
	}
	k, err := m.keg(f)
	if err != nil {
		return nil, &Error{Op: "trace", Formula: name, Err: err}
	}

	var script string
	if data, err := os.ReadFile(filepath.Join(k.BinDir(), f.Wrapper.Name)); err == nil {
		script = string(data)
	} else {
		script, err = wrapper.Render(wrapperSpec(f, k))
		if err != nil {
			return nil, &Error{Op: "trace", Formula: name, Err: eris.Wrapf(ErrInvalidFormula, "%v", err)}
		}
	}

	inv, err := wrapper.Trace(ctx, script, args, status)
	if err != nil {
		return nil, &Error{Op: "trace", Formula: name, Err: err}
	}
	return inv, nil
}

// Verify recomputes the keg digest and compares it with the receipt
func (m *Manager) Verify(name string) (bool, error) {
	f, err := m.Formula(name)
	if err != nil {
		return false, err
	}
	k, err := m.keg(f)
	if err != nil {
		return false, &Error{Op: "verify", Formula: name, Err: err}
	}
	if !k.Exists() {
		return false, &Error{Op: "verify", Formula: name, Err: ErrNotInstalled}
	}

	r, err := k.ReadReceipt()
	if err != nil {
		return false, &Error{Op: "verify", Formula: name, Err: err}
	}
	digest, err := k.Digest()
	if err != nil {
		return false, &Error{Op: "verify", Formula: name, Err: err}
	}
	return digest == r.Digest, nil
}

// Uninstall unlinks the launcher and removes the keg
func (m *Manager) Uninstall(name string) error {
	f, err := m.Formula(name)
	if err != nil {
		return err
	}
	k, err := m.keg(f)
	if err != nil {
		return &Error{Op: "uninstall", Formula: name, Err: err}
	}
	if !k.Exists() {
		return &Error{Op: "uninstall", Formula: name, Err: ErrNotInstalled}
	}

	if err := k.Unlink(f.Wrapper.Name); err != nil {
		return &Error{Op: "uninstall", Formula: name, Err: err}
	}
	if err := k.Remove(); err != nil {
		return &Error{Op: "uninstall", Formula: name, Err: err}
	}

	k.Logger.Info().Str("path", k.Path()).Msg("uninstalled")
	return nil
}
