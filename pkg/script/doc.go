// Package script embeds the Starlark runtime that powers custom facts.
//
// The runtime has a strict paired lifecycle: Initialize once at process
// start, Uninitialize once at shutdown. Initialization failure is soft --
// the host keeps running and simply resolves no runtime-backed facts.
//
// Custom fact definitions are Starlark files discovered from an ordered
// list of search directories. Inside the runtime they register facts
// through a small predeclared API:
//
//	facts.add("role", value = "builder")
//	facts.add("rack", fn = lambda: lookup_rack(), weight = 10,
//	          confine = {"kernel": "Linux"})
//	facts.value("os")      # read an already-resolved fact
//	sym("interned_key")    # symbolic mapping key
//
// LoadCustomFacts optionally bootstraps integration with an external
// configuration-management framework and can redirect the runtime's stdout
// to stderr for the duration of fact resolution, so diagnostic prints from
// user code never corrupt structured output emitted by the host.
package script
