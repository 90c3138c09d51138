// Package stats aggregates per-token trade windows into dashboard-level
// summary figures. The aggregator treats each window as read-only input; it
// never mutates tick data and holds only copies handed to it by the
// dispatcher.
package stats
