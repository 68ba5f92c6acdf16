package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"go.starlark.net/starlark"

	"github.com/openfacts/openfacts/pkg/facts"
)

// Runtime owns the embedded Starlark interpreter state. It is process-wide
// singleton state with an init-once/uninit-once lifecycle orchestrated by
// the host; it is not safe for concurrent use.
type Runtime struct {
	stdout io.Writer
	stderr io.Writer

	includeStackTrace bool
	initialized       bool

	probe     func() error
	framework Framework

	loadPath     []string
	externalDirs []string
	modules      map[string]starlark.StringDict
	predeclared  starlark.StringDict
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStdout sets the runtime's standard output stream. User code printing
// during fact resolution writes here (unless redirected).
func WithStdout(w io.Writer) Option {
	return func(r *Runtime) { r.stdout = w }
}

// WithStderr sets the runtime's error stream, the redirect target for
// scope-guarded output swaps.
func WithStderr(w io.Writer) Option {
	return func(r *Runtime) { r.stderr = w }
}

// WithAvailability overrides the runtime availability probe consulted by
// Initialize. Tests use a failing probe to simulate an unavailable runtime.
func WithAvailability(probe func() error) Option {
	return func(r *Runtime) { r.probe = probe }
}

// WithFramework sets the external configuration-framework integration used
// when LoadCustomFacts is asked to bootstrap it.
func WithFramework(fw Framework) Option {
	return func(r *Runtime) { r.framework = fw }
}

// NewRuntime creates an uninitialized runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		probe:     func() error { return nil },
		framework: NewFroyoFramework(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize starts the runtime. It must be called once per process, before
// any load. When the runtime is unavailable it logs a warning and returns
// false; the host stays functional minus runtime-backed facts.
func (r *Runtime) Initialize(includeStackTrace bool) bool {
	if err := r.probe(); err != nil {
		log.Warn().Err(err).Msg("Facts requiring the scripting runtime will not be resolved")
		return false
	}
	r.includeStackTrace = includeStackTrace
	r.modules = make(map[string]starlark.StringDict)
	r.initialized = true
	log.Debug().Msg("Scripting runtime initialized")
	return true
}

// Initialized reports whether Initialize succeeded.
func (r *Runtime) Initialized() bool {
	return r.initialized
}

// Uninitialize tears the runtime down. It pairs with Initialize: call it
// exactly once at process end, never twice and never before Initialize.
func (r *Runtime) Uninitialize() {
	r.modules = nil
	r.predeclared = nil
	r.initialized = false
	log.Debug().Msg("Scripting runtime uninitialized")
}

// LoadCustomFacts discovers and executes custom fact definitions, then
// resolves every fact they registered into c.
//
// When initializeFramework is set, a fixed bootstrap script first wires in
// the external configuration framework; its failure is logged and non-fatal.
// When redirectOutput is set, the runtime's stdout is swapped to its stderr
// for the duration of resolution only and restored on every exit path, so
// user prints cannot corrupt structured host output.
func (r *Runtime) LoadCustomFacts(ctx context.Context, c *facts.Collection, initializeFramework, redirectOutput bool, searchPaths []string) {
	if !r.initialized {
		log.Debug().Msg("Scripting runtime not initialized; skipping custom facts")
		return
	}

	mod := newModule(r, c)
	if initializeFramework {
		if err := r.bootstrap(mod); err != nil {
			r.logScriptError(err, "Could not load framework integration; some facts may be unavailable")
		}
	}

	mod.search(searchPaths)
	mod.loadExternal()

	resolve := func() {
		if redirectOutput {
			guard := redirectStdout(r)
			defer guard.restore()
		}
		mod.resolveFacts(ctx)
	}
	resolve()
}

// AddLoadPath appends a directory to the module search path used by
// Starlark load() statements, skipping duplicates.
func (r *Runtime) AddLoadPath(dir string) {
	for _, existing := range r.loadPath {
		if existing == dir {
			return
		}
	}
	r.loadPath = append(r.loadPath, dir)
}

// LoadPath returns the current module search path.
func (r *Runtime) LoadPath() []string {
	return r.loadPath
}

// AddExternalDir appends a directory to the external fact search scope
// used by the next LoadCustomFacts cycle, skipping duplicates. Scripts
// can extend the scope further with facts.search_external.
func (r *Runtime) AddExternalDir(dir string) {
	for _, existing := range r.externalDirs {
		if existing == dir {
			return
		}
	}
	r.externalDirs = append(r.externalDirs, dir)
}

// newThread creates an interpreter thread whose print output follows the
// runtime's current stdout target, so an active output guard takes effect
// immediately.
func (r *Runtime) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(r.stdout, msg)
		},
		Load: r.loadModule,
	}
}

// loadModule implements Starlark load(), resolving the module name against
// the loading file's directory and then the configured load path. Modules
// execute once and are served from a cache afterwards.
func (r *Runtime) loadModule(thread *starlark.Thread, name string) (starlark.StringDict, error) {
	candidates := []string{}
	if !filepath.IsAbs(name) {
		if base := filepath.Dir(thread.Name); base != "." {
			candidates = append(candidates, filepath.Join(base, name))
		}
		for _, dir := range r.loadPath {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	} else {
		candidates = append(candidates, name)
	}

	var path string
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("module %q not found in load path", name)
	}

	if globals, ok := r.modules[path]; ok {
		return globals, nil
	}
	globals, err := starlark.ExecFile(r.newThread(path), path, nil, r.predeclared)
	if err != nil {
		return nil, err
	}
	r.modules[path] = globals
	return globals, nil
}

// logScriptError logs a recoverable script failure, including the Starlark
// backtrace when the runtime was initialized with stack traces enabled.
func (r *Runtime) logScriptError(err error, msg string) {
	event := log.Warn().Err(err)
	if evalErr, ok := err.(*starlark.EvalError); ok && r.includeStackTrace {
		event = event.Str("backtrace", evalErr.Backtrace())
	}
	event.Msg(msg)
}
