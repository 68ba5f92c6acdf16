// Package engine wires the fact collection, native probes, the
// scripting runtime, and the persistent cache into one facade the CLI
// drives. The engine owns lifecycle: Initialize builds the collection
// and starts the runtime, Shutdown tears both down.
package engine
