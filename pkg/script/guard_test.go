package script

import (
	"context"
	"strings"
	"testing"

	"github.com/openfacts/openfacts/pkg/facts"
)

func TestRedirectOutputDuringResolution(t *testing.T) {
	rt, stdout, stderr := newTestRuntime(t)
	dir := t.TempDir()
	writeFactFile(t, dir, "noisy.star", `
def _noisy():
    print("diagnostic chatter")
    return "value"

facts.add("noisy", fn = _noisy)
`)

	c := facts.NewCollection()
	rt.LoadCustomFacts(context.Background(), c, false, true, []string{dir})

	if strings.Contains(stdout.String(), "diagnostic chatter") {
		t.Error("user print leaked to stdout while redirection was active")
	}
	if !strings.Contains(stderr.String(), "diagnostic chatter") {
		t.Error("user print did not appear on stderr")
	}
	if rt.stdout != stdout {
		t.Error("stdout target not restored after resolution")
	}
}

func TestRedirectRestoredOnFailure(t *testing.T) {
	rt, stdout, _ := newTestRuntime(t)
	dir := t.TempDir()
	writeFactFile(t, dir, "fails.star", `
def _fails():
    print("before failure")
    fail("resolution error")

facts.add("doomed", fn = _fails)
`)

	c := facts.NewCollection()
	rt.LoadCustomFacts(context.Background(), c, false, true, []string{dir})

	if rt.stdout != stdout {
		t.Error("stdout target not restored after a failing resolution")
	}
}

func TestNoRedirectKeepsStdout(t *testing.T) {
	rt, stdout, _ := newTestRuntime(t)
	dir := t.TempDir()
	writeFactFile(t, dir, "loud.star", `
def _loud():
    print("visible")
    return 1

facts.add("loud", fn = _loud)
`)

	c := facts.NewCollection()
	rt.LoadCustomFacts(context.Background(), c, false, false, []string{dir})

	if !strings.Contains(stdout.String(), "visible") {
		t.Error("print output missing from stdout without redirection")
	}
}
