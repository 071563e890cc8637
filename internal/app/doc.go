// Package app wires the application together: configuration, logger,
// component registry, flow loading, graph construction and engine execution.
package app
