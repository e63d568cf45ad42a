// Package store is the live relational client behind the hero database
// facade.
//
// It executes literal SQL against MySQL (production) or SQLite (local runs
// and tests) through database/sql and returns results as column maps, the
// same shape the simulated backend produces.
//
// # Connections
//
// The pool keeps no idle connections: every Execute acquires its own
// connection and releases it when done. Throughput under heavy parallel use
// is bounded by connection setup; that is accepted.
//
// # Errors
//
// Failures to reach the database (acquiring a connection, a dropped
// connection, network errors) are returned as *mode.ConnectionError so the
// facade can fall back to simulation. Errors the database reports over a
// working connection are returned wrapped but unclassified.
//
// # Schema
//
// SetupSchema creates WORKING_CLASS_HEROES, VOUCHERS and FILE if missing,
// using the DDL of the store's dialect.
package store
