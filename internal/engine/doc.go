// Package engine drives flow execution: it turns the scheduler's first layer
// into an initial wave, launches concurrent vertex builds, re-derives every
// following wave from live completion state through the run ledger, reuses
// frozen results from the cache, and reactivates state listeners through the
// state bus. One Engine instance manages one live graph; runs are sequential
// per engine while builds inside a wave are concurrent.
package engine
