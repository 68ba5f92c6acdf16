// Package facts provides the core fact resolution engine for openfacts.
//
// # Overview
//
// Facts are named, dynamically typed values describing the local host. The
// package is built around three pieces:
//
//   - Value: a tagged dynamic value (nil, scalar, sequence, or mapping) with
//     a root-owned cache of resolved child views.
//   - Lookup: dotted-path navigation into a Value, memoized per root.
//   - Collection: the shared fact store. Facts are owned by resolver groups
//     that populate an entire cluster of related facts in a single pass the
//     first time any fact in the cluster is requested.
//
// # Resolution Model
//
// A fact resolves to exactly one value per process until Reset is called.
// Group population is lazy and batched: probing the kernel once yields the
// whole kernel cluster, so repeated queries never re-run native probes.
//
// # Error Handling
//
// Navigation failures (bad index, missing key, wrong container kind) are
// non-fatal. Lookup returns a not-found result and logs a debug diagnostic;
// nothing in this package escalates a malformed query into a hard failure.
//
// # Concurrency
//
// The engine is single-threaded by design. Neither the collection nor the
// per-root child caches are synchronized; callers that share a collection
// across goroutines must serialize access externally.
package facts
