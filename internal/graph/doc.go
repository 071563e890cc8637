// Package graph holds the authoritative model of a flow: the vertex and edge
// collections, the derived adjacency structures, branch activation marking,
// the incremental definition editor and the persistable snapshot form.
//
// The model is structural bookkeeping only. Scheduling lives in schedule,
// run-time bookkeeping in ledger, and execution in engine.
package graph
