// Package harness runs verification scenarios against the hero API and
// database facades.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	seed: 7
//	setup:
//	  - call: db.cleanup_all
//	flow:
//	  - call: hero.create
//	    fixture: invalid_hero:gender
//	    expect:
//	      status: 400
//	      body: { message: "Invalid gender. Must be MALE or FEMALE." }
//	  - call: hero.owe_money
//	    natid: $natid
//	    expect:
//	      status: 200
//	assertions:
//	  - type: trace_contains
//	    call: hero.create
//	    args: { payload: { gender: OTHER } }
//	    route: simulated
//	  - type: hero_exists
//	    natid: $natid
//	    exists: false
//
// Unknown fields are rejected, so a typo fails loudly instead of silently
// skipping a check.
//
// # Calls
//
// API calls: hero.create, hero.create_with_vouchers, hero.owe_money,
// voucher.statistics. Database calls: db.hero_exists, db.get_hero,
// db.get_vouchers, db.file_records, db.query, db.cleanup_hero,
// db.cleanup_all. Setup may only use database calls.
//
// A step's natid may be $natid, the natid of the most recent hero payload.
//
// # Assertion Types
//
//   - trace_contains: a call appears in the trace with matching args, and
//     optionally was served by a given route (live, simulated, fallback)
//   - trace_order: calls appear in the specified order
//   - trace_count: a call appears exactly N times
//   - hero_exists: the database holds (or does not hold) a hero
//
// # Deterministic Testing
//
// Fixture payloads come from a generator seeded by the scenario, and
// simulated bodies are stamped from Deps.Clock. With a fixed clock a fully
// simulated run produces identical traces every time, which is what the
// golden files under testdata/golden rely on.
//
// # Usage
//
//	scenarios, err := harness.LoadScenarios("testdata/scenarios", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := harness.RunAll(ctx, scenarios, harness.Simulated(nil), 4)
package harness
