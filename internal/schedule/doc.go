// Package schedule computes a layered, dependency-valid ordering of a flow
// graph: a Kahn-style layered BFS over an optionally frontier-filtered vertex
// subset, a refinement pass that defers vertices as close to their consumers
// as dependencies allow, and layer-local orderings that bias cheap builds and
// intra-layer dependencies first.
package schedule
