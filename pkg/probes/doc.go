// Package probes implements the built-in resolver groups that gather facts
// from the local host: system identity, memory, processors, mounted
// filesystems, networking, and load averages.
//
// Each probe is a facts.Group: one collection pass fills the whole cluster
// of related facts, so a query for any one of them costs a single native
// probe. Probe failures degrade to warnings; a host without a probe's data
// source simply lacks that cluster.
package probes
