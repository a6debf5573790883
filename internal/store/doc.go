// Package store provides durable storage for dispatch outcomes.
//
// Results, flags, and unit exceptions reported during a run are written
// to SQLite so a run remains auditable after the process exits: which
// units fired against which targets, what they produced, and the
// provenance chain behind every flag.
//
// The store is a collaborator of the engine, not part of the dispatch
// core - the engine only ever talks to it through a Monitor
// implementation. Uses SQLite with WAL mode for concurrent read access.
package store
