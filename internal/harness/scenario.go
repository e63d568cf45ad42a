package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a verification scenario.
// Scenarios exercise the hero API and database facades with a flow of calls
// and assert on the resulting trace and on database state.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed drives the fixture generator. Zero means DefaultSeed, so payloads
	// and traces are reproducible.
	Seed int64 `yaml:"seed,omitempty"`

	// Setup contains database calls run before the flow, typically cleanup
	// or inserts. A setup call that returns an error aborts the scenario.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the calls under test, with expected results.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and database state.
	// Supported types: trace_contains, trace_order, trace_count, hero_exists
	Assertions []Assertion `yaml:"assertions"`
}

// DefaultSeed seeds the fixture generator of scenarios without a seed.
const DefaultSeed = 1

// LastNatID in a step's natid field stands for the natid of the most recent
// hero payload sent in the scenario.
const LastNatID = "$natid"

// Step is one call to a facade operation.
type Step struct {
	// Call is the operation name, e.g. "hero.create" or "db.hero_exists".
	Call string `yaml:"call"`

	// Fixture names a generated payload (see fixtures.Generator.Payload).
	// Used by the hero creation calls; mutually exclusive with Payload.
	Fixture string `yaml:"fixture,omitempty"`

	// Payload is a literal hero payload in wire form.
	Payload map[string]any `yaml:"payload,omitempty"`

	// NatID is the natid argument of owe-money and db calls. For hero
	// creation calls it overrides the payload's natid.
	NatID string `yaml:"natid,omitempty"`

	// FileType is the argument of db.file_records.
	FileType string `yaml:"file_type,omitempty"`

	// SQL and Params are the arguments of db.query.
	SQL    string `yaml:"sql,omitempty"`
	Params []any  `yaml:"params,omitempty"`

	// Expect specifies the expected outcome. If nil, only a call error
	// fails the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Status is the expected HTTP status of an API call. Zero skips the check.
	Status int `yaml:"status,omitempty"`

	// Body is matched against the call's result as a subset: only the
	// listed fields are compared, nested maps recursively.
	Body any `yaml:"body,omitempty"`

	// Error, when set, expects the call to fail with an error containing it.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates trace or database state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a call appears in the trace with matching args
	// - "trace_order": calls appear in order
	// - "trace_count": a call appears exactly N times
	// - "hero_exists": a hero is (or is not) in the database
	Type string `yaml:"type"`

	// Call is the operation name (trace_contains, trace_count).
	Call string `yaml:"call,omitempty"`

	// Args are the expected call arguments (trace_contains), subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Route optionally pins how the call was served (trace_contains):
	// live, simulated or fallback.
	Route string `yaml:"route,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Calls is the expected call order (trace_order).
	Calls []string `yaml:"calls,omitempty"`

	// NatID is the hero to look up (hero_exists). LastNatID is allowed.
	NatID string `yaml:"natid,omitempty"`

	// Exists is the expected outcome of hero_exists. Nil means true.
	Exists *bool `yaml:"exists,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertHeroExists    = "hero_exists"
)

// Call names accepted in steps.
const (
	CallCreateHero             = "hero.create"
	CallCreateHeroWithVouchers = "hero.create_with_vouchers"
	CallHeroOwesMoney          = "hero.owe_money"
	CallVoucherStatistics      = "voucher.statistics"
	CallHeroExists             = "db.hero_exists"
	CallGetHero                = "db.get_hero"
	CallGetVouchers            = "db.get_vouchers"
	CallFileRecords            = "db.file_records"
	CallQuery                  = "db.query"
	CallCleanupHero            = "db.cleanup_hero"
	CallCleanupAll             = "db.cleanup_all"
)

var knownCalls = map[string]bool{
	CallCreateHero:             true,
	CallCreateHeroWithVouchers: true,
	CallHeroOwesMoney:          true,
	CallVoucherStatistics:      true,
	CallHeroExists:             true,
	CallGetHero:                true,
	CallGetVouchers:            true,
	CallFileRecords:            true,
	CallQuery:                  true,
	CallCleanupHero:            true,
	CallCleanupAll:             true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. When filter is non-empty only scenarios whose name contains it are
// returned.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		if filter != "" && !strings.Contains(s.Name, filter) {
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if !strings.HasPrefix(step.Call, "db.") {
			return fmt.Errorf("setup[%d]: only db calls may be used in setup, got %q", i, step.Call)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step names a known call and carries the
// arguments that call needs.
func validateStep(step Step) error {
	if step.Call == "" {
		return fmt.Errorf("call is required")
	}
	if !knownCalls[step.Call] {
		return fmt.Errorf("unknown call %q", step.Call)
	}

	switch step.Call {
	case CallCreateHero, CallCreateHeroWithVouchers:
		if step.Fixture == "" && step.Payload == nil {
			return fmt.Errorf("%s needs a fixture or a payload", step.Call)
		}
		if step.Fixture != "" && step.Payload != nil {
			return fmt.Errorf("%s takes a fixture or a payload, not both", step.Call)
		}
	case CallHeroExists, CallGetHero, CallGetVouchers, CallCleanupHero:
		if step.NatID == "" {
			return fmt.Errorf("%s needs a natid", step.Call)
		}
	case CallFileRecords:
		if step.FileType == "" {
			return fmt.Errorf("%s needs a file_type", step.Call)
		}
	case CallQuery:
		if step.SQL == "" {
			return fmt.Errorf("%s needs sql", step.Call)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: calls list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertHeroExists:
		if a.NatID == "" {
			return fmt.Errorf("assertions[%d]: natid is required for hero_exists", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
