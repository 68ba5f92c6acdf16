// Package stores provides the persistent fact cache for openfacts.
// It includes SQLite-based storage with WAL mode and connection pooling.
// Resolved fact groups are serialized to JSON and kept with a TTL so
// repeated runs can skip expensive probes.
package stores
