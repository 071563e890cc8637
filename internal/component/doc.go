// Package component defines the capability surface the engine requires from
// a vertex's computation, and the registry that maps component kinds to
// factories. The engine depends only on this minimal Build contract; what a
// component actually does is the component author's business.
package component
