// Package hero defines the records exchanged with the hero/voucher service.
//
// Payload types mirror the JSON accepted by the service's HTTP API
// (camelCase field names). Record types mirror rows of the service's
// relational schema (snake_case column names):
//
//	WORKING_CLASS_HEROES  one row per hero, keyed by natid
//	VOUCHERS              benefit entitlements referencing a hero natid
//	FILE                  generated file artifacts (e.g. TAX_RELIEF)
//
// The natid helpers encode the existence predicate used by the simulated
// persistence layer: a natid is considered present iff it carries the
// reserved "natid-" prefix and does not contain the "invalid" marker.
package hero
