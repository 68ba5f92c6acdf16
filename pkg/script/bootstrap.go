package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Framework describes an external configuration-management installation
// whose settings extend custom fact discovery. The bootstrap script drives
// it entirely from inside the runtime.
type Framework interface {
	// Name identifies the framework in logs and fact names.
	Name() string

	// InitializeSettings loads the framework's own settings. Failure aborts
	// the bootstrap as a single caught event.
	InitializeSettings() error

	// LibDir is the framework directory to add to the module load path.
	LibDir() string

	// ExternalFactsDir is where the framework distributes external facts.
	ExternalFactsDir() string

	// Version is the framework's version string, exposed as a fallback fact
	// when the framework performs no fact initialization of its own.
	Version() string

	// InitializeFacts lets the framework register facts itself. It reports
	// whether it did; false selects the fallback version fact.
	InitializeFacts() (bool, error)
}

// bootstrapScript is the fixed statement sequence that wires an external
// framework into the runtime: settings, load path, a clean fact slate
// rescoped to the framework's external facts, then fact initialization
// with a version-fact fallback. It is treated as an opaque unit; a failure
// anywhere surfaces as a single caught event.
const bootstrapScript = `
def _bootstrap():
    framework.initialize_settings()
    libdir = framework.libdir()
    if libdir and libdir not in runtime.load_path():
        runtime.add_load_path(libdir)
    facts.reset()
    facts.search_external([framework.external_facts_dir()])
    if not framework.initialize_facts():
        facts.add(framework.name() + "_version", value = framework.version())

_bootstrap()
`

// bootstrap executes the framework bootstrap script against the module's
// predeclared environment plus framework bindings.
func (r *Runtime) bootstrap(m *module) error {
	fw := r.framework
	if fw == nil {
		return fmt.Errorf("no framework integration configured")
	}

	predeclared := make(starlark.StringDict, len(m.predeclared)+2)
	for name, value := range m.predeclared {
		predeclared[name] = value
	}
	predeclared["framework"] = frameworkModule(fw)
	predeclared["runtime"] = &starlarkstruct.Module{
		Name: "runtime",
		Members: starlark.StringDict{
			"load_path":     starlark.NewBuiltin("runtime.load_path", r.builtinLoadPath),
			"add_load_path": starlark.NewBuiltin("runtime.add_load_path", r.builtinAddLoadPath),
		},
	}

	thread := r.newThread("<bootstrap>")
	_, err := starlark.ExecFile(thread, "<bootstrap>", strings.TrimSpace(bootstrapScript)+"\n", predeclared)
	return err
}

func (r *Runtime) builtinLoadPath(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("runtime.load_path", args, kwargs); err != nil {
		return nil, err
	}
	items := make([]starlark.Value, len(r.loadPath))
	for i, dir := range r.loadPath {
		items[i] = starlark.String(dir)
	}
	return starlark.NewList(items), nil
}

func (r *Runtime) builtinAddLoadPath(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dir string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "dir", &dir); err != nil {
		return nil, err
	}
	r.AddLoadPath(dir)
	return starlark.None, nil
}

// frameworkModule exposes a Framework to the bootstrap script.
func frameworkModule(fw Framework) *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "framework",
		Members: starlark.StringDict{
			"name": starlark.NewBuiltin("framework.name",
				func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
					return starlark.String(fw.Name()), nil
				}),
			"initialize_settings": starlark.NewBuiltin("framework.initialize_settings",
				func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
					if err := fw.InitializeSettings(); err != nil {
						return nil, err
					}
					return starlark.None, nil
				}),
			"libdir": starlark.NewBuiltin("framework.libdir",
				func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
					return starlark.String(fw.LibDir()), nil
				}),
			"external_facts_dir": starlark.NewBuiltin("framework.external_facts_dir",
				func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
					return starlark.String(fw.ExternalFactsDir()), nil
				}),
			"version": starlark.NewBuiltin("framework.version",
				func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
					return starlark.String(fw.Version()), nil
				}),
			"initialize_facts": starlark.NewBuiltin("framework.initialize_facts",
				func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
					done, err := fw.InitializeFacts()
					if err != nil {
						return nil, err
					}
					return starlark.Bool(done), nil
				}),
		},
	}
}

// FroyoFramework integrates an OpenFroyo installation: its lib directory
// joins the module load path and its facts.d directory is searched for
// external facts.
type FroyoFramework struct {
	root string
}

// NewFroyoFramework creates the integration rooted at dir. An empty dir
// falls back to $OPENFROYO_ROOT and then /etc/openfroyo.
func NewFroyoFramework(dir string) *FroyoFramework {
	if dir == "" {
		dir = os.Getenv("OPENFROYO_ROOT")
	}
	if dir == "" {
		dir = "/etc/openfroyo"
	}
	return &FroyoFramework{root: dir}
}

func (f *FroyoFramework) Name() string { return "froyo" }

func (f *FroyoFramework) InitializeSettings() error {
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("openfroyo installation not found at %s: %w", f.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("openfroyo root %s is not a directory", f.root)
	}
	return nil
}

func (f *FroyoFramework) LibDir() string {
	return filepath.Join(f.root, "lib", "facts")
}

func (f *FroyoFramework) ExternalFactsDir() string {
	return filepath.Join(f.root, "facts.d")
}

func (f *FroyoFramework) Version() string {
	raw, err := os.ReadFile(filepath.Join(f.root, "VERSION"))
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(raw))
}

// InitializeFacts defers to the fallback version fact; an installation has
// no fact initialization hook of its own.
func (f *FroyoFramework) InitializeFacts() (bool, error) {
	return false, nil
}
