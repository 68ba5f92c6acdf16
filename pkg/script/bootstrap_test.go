package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openfacts/openfacts/pkg/facts"
)

// fakeFramework drives the bootstrap script without a real installation.
type fakeFramework struct {
	name        string
	settingsErr error
	libDir      string
	externalDir string
	version     string
	initialized bool
	initErr     error
}

func (f *fakeFramework) Name() string              { return f.name }
func (f *fakeFramework) InitializeSettings() error { return f.settingsErr }
func (f *fakeFramework) LibDir() string            { return f.libDir }
func (f *fakeFramework) ExternalFactsDir() string  { return f.externalDir }
func (f *fakeFramework) Version() string           { return f.version }

func (f *fakeFramework) InitializeFacts() (bool, error) {
	return f.initialized, f.initErr
}

func TestBootstrapRegistersVersionFact(t *testing.T) {
	libDir := t.TempDir()
	fw := &fakeFramework{
		name:        "froyo",
		libDir:      libDir,
		externalDir: t.TempDir(),
		version:     "2.4.1",
	}

	var stdout, stderr bytes.Buffer
	rt := NewRuntime(WithStdout(&stdout), WithStderr(&stderr), WithFramework(fw))
	if !rt.Initialize(false) {
		t.Fatal("Initialize() = false")
	}

	ctx := context.Background()
	c := facts.NewCollection()
	rt.LoadCustomFacts(ctx, c, true, false, nil)

	if v := c.Resolve(ctx, "froyo_version"); v == nil || v.Data() != "2.4.1" {
		t.Errorf("Resolve(froyo_version) = %v, want 2.4.1", v)
	}
	if got := rt.LoadPath(); len(got) != 1 || got[0] != libDir {
		t.Errorf("LoadPath() = %v, want the framework libdir", got)
	}
}

func TestBootstrapScopesExternalFacts(t *testing.T) {
	externalDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(externalDir, "env.yaml"), []byte("environment: staging\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fw := &fakeFramework{
		name:        "froyo",
		libDir:      t.TempDir(),
		externalDir: externalDir,
		version:     "2.4.1",
	}

	rt := NewRuntime(WithFramework(fw))
	if !rt.Initialize(false) {
		t.Fatal("Initialize() = false")
	}

	ctx := context.Background()
	c := facts.NewCollection()
	rt.LoadCustomFacts(ctx, c, true, false, nil)

	if v := c.Resolve(ctx, "environment"); v == nil || v.Data() != "staging" {
		t.Errorf("Resolve(environment) = %v, want staging", v)
	}
}

func TestBootstrapFailureIsSoft(t *testing.T) {
	fw := &fakeFramework{
		name:        "froyo",
		settingsErr: errors.New("no installation"),
	}

	rt := NewRuntime(WithFramework(fw))
	if !rt.Initialize(false) {
		t.Fatal("Initialize() = false")
	}

	ctx := context.Background()
	dir := t.TempDir()
	writeFactFile(t, dir, "local.star", `facts.add("local", value = "still loads")`)

	c := facts.NewCollection()
	rt.LoadCustomFacts(ctx, c, true, false, []string{dir})

	if v := c.Resolve(ctx, "froyo_version"); v != nil {
		t.Errorf("Resolve(froyo_version) = %v, want nil after bootstrap failure", v)
	}
	if v := c.Resolve(ctx, "local"); v == nil || v.Data() != "still loads" {
		t.Errorf("Resolve(local) = %v; bootstrap failure must not stop local facts", v)
	}
}

func TestBootstrapSkipsFallbackWhenFrameworkInitializes(t *testing.T) {
	fw := &fakeFramework{
		name:        "froyo",
		libDir:      t.TempDir(),
		externalDir: t.TempDir(),
		version:     "2.4.1",
		initialized: true,
	}

	rt := NewRuntime(WithFramework(fw))
	if !rt.Initialize(false) {
		t.Fatal("Initialize() = false")
	}

	ctx := context.Background()
	c := facts.NewCollection()
	rt.LoadCustomFacts(ctx, c, true, false, nil)

	if v := c.Resolve(ctx, "froyo_version"); v != nil {
		t.Errorf("Resolve(froyo_version) = %v, want no fallback fact", v)
	}
}
