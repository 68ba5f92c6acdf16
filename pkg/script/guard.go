package script

import (
	"io"

	"github.com/rs/zerolog/log"
)

// stdoutGuard redirects the runtime's stdout to its stderr for the duration
// of its scope. Custom facts that print during resolution would otherwise
// interleave with the structured output the host writes to stdout. The
// caller must pair redirectStdout with a deferred restore so the prior
// target comes back on every exit path.
type stdoutGuard struct {
	rt   *Runtime
	prev io.Writer
}

func redirectStdout(rt *Runtime) *stdoutGuard {
	log.Debug().Msg("Redirecting runtime stdout to stderr")
	guard := &stdoutGuard{rt: rt, prev: rt.stdout}
	rt.stdout = rt.stderr
	return guard
}

func (g *stdoutGuard) restore() {
	log.Debug().Msg("Restoring runtime stdout")
	g.rt.stdout = g.prev
}
