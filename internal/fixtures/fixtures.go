// Package fixtures builds hero payloads for scenarios and tests.
//
// A Generator owns its random source and clock, so a seeded generator with a
// fixed clock always produces the same payloads.
package fixtures

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/roach88/herocheck/internal/hero"
)

// MaxNatIDNumber is the largest number RandomNatID produces.
const MaxNatIDNumber = 9999999

// DateLayout is the layout of generated birth and death dates.
const DateLayout = "2006-01-02T15:04:05"

// Field names a hero field InvalidHero can break.
type Field string

const (
	FieldNatID     Field = "natid"
	FieldName      Field = "name"
	FieldGender    Field = "gender"
	FieldBirthDate Field = "birthDate"
	FieldSalary    Field = "salary"
	FieldTaxPaid   Field = "taxPaid"
)

// VoucherDefect names a way InvalidHeroWithVouchers breaks the voucher list.
type VoucherDefect string

const (
	EmptyVouchers      VoucherDefect = "emptyVouchers"
	NullVouchers       VoucherDefect = "nullVouchers"
	InvalidVoucherName VoucherDefect = "invalidVoucherName"
	InvalidVoucherType VoucherDefect = "invalidVoucherType"
)

// Override modifies a generated payload.
type Override func(*hero.HeroPayload)

// WithNatID sets the natid of a payload.
func WithNatID(natid string) Override {
	return func(p *hero.HeroPayload) { p.NatID = natid }
}

// WithName sets the name of a payload.
func WithName(name string) Override {
	return func(p *hero.HeroPayload) { p.Name = name }
}

// Generator produces payloads. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New returns a generator drawing from rng and reading time from now.
// A nil rng is seeded from the clock; a nil now means time.Now.
func New(rng *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}
	return &Generator{rng: rng, now: now}
}

// NewSeeded returns a generator with a fixed seed.
func NewSeeded(seed int64, now func() time.Time) *Generator {
	return New(rand.New(rand.NewSource(seed)), now)
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// RandomNatID returns a well-formed natid with a random number.
func (g *Generator) RandomNatID() string {
	return fmt.Sprintf("%s%d", hero.NatIDPrefix, g.intn(MaxNatIDNumber))
}

// TestNatID returns a natid unique to this run, of the form
// test-<unix millis>-<n>. It fails hero validation, which is what cleanup
// patterns rely on.
func (g *Generator) TestNatID() string {
	return fmt.Sprintf("test-%d-%d", g.now().UnixMilli(), g.intn(1000))
}

// PastDate returns midnight of a random day at least one year and at most
// yearsBack years before now. yearsBack below 1 is treated as 1.
func (g *Generator) PastDate(yearsBack int) string {
	if yearsBack < 1 {
		yearsBack = 1
	}
	now := g.now().UTC()
	d := time.Date(now.Year()-1-g.intn(yearsBack), time.Month(1+g.intn(12)), 1+g.intn(28), 0, 0, 0, 0, time.UTC)
	return d.Format(DateLayout)
}

// ValidHero returns a payload that passes every hero rule.
func (g *Generator) ValidHero(overrides ...Override) hero.HeroPayload {
	p := hero.HeroPayload{
		NatID:         g.RandomNatID(),
		Name:          "Test Hero",
		Gender:        hero.GenderMale,
		BirthDate:     "1990-01-01T00:00:00",
		Salary:        5000,
		TaxPaid:       500,
		BrowniePoints: ldvalue.NewOptionalInt(10),
	}
	for _, o := range overrides {
		o(&p)
	}
	return p
}

// InvalidHero returns a valid payload with field broken. An unknown field
// leaves the payload valid.
func (g *Generator) InvalidHero(field Field) hero.HeroPayload {
	p := g.ValidHero()
	switch field {
	case FieldNatID:
		p.NatID = "invalid-natid"
	case FieldName:
		p.Name = ""
	case FieldGender:
		p.Gender = "OTHER"
	case FieldBirthDate:
		p.BirthDate = "2050-01-01T00:00:00"
	case FieldSalary:
		p.Salary = -1000
	case FieldTaxPaid:
		p.TaxPaid = -100
	}
	return p
}

// HeroWithVouchers returns a valid payload with a TRAVEL and a FOOD voucher.
func (g *Generator) HeroWithVouchers(overrides ...Override) hero.HeroPayload {
	p := g.ValidHero(overrides...)
	p.Vouchers = []hero.VoucherPayload{
		{VoucherName: "Test Voucher 1", VoucherType: hero.VoucherTravel},
		{VoucherName: "Test Voucher 2", VoucherType: hero.VoucherFood},
	}
	return p
}

// InvalidHeroWithVouchers returns a hero-with-vouchers payload whose voucher
// list is broken by defect. An unknown defect leaves the payload valid.
func (g *Generator) InvalidHeroWithVouchers(defect VoucherDefect) hero.HeroPayload {
	p := g.HeroWithVouchers()
	switch defect {
	case EmptyVouchers:
		p.Vouchers = []hero.VoucherPayload{}
	case NullVouchers:
		p.Vouchers = nil
	case InvalidVoucherName:
		p.Vouchers[0].VoucherName = ""
	case InvalidVoucherType:
		p.Vouchers[0].VoucherType = "INVALID"
	}
	return p
}

// Payload resolves a fixture reference used by scenario files:
//
//	valid_hero
//	invalid_hero:<field>
//	hero_with_vouchers
//	invalid_hero_with_vouchers:<defect>
func (g *Generator) Payload(ref string) (hero.HeroPayload, error) {
	name, arg, _ := strings.Cut(ref, ":")
	switch name {
	case "valid_hero":
		return g.ValidHero(), nil
	case "invalid_hero":
		if !validField(Field(arg)) {
			return hero.HeroPayload{}, fmt.Errorf("fixture %q: unknown field %q", ref, arg)
		}
		return g.InvalidHero(Field(arg)), nil
	case "hero_with_vouchers":
		return g.HeroWithVouchers(), nil
	case "invalid_hero_with_vouchers":
		if !validDefect(VoucherDefect(arg)) {
			return hero.HeroPayload{}, fmt.Errorf("fixture %q: unknown voucher defect %q", ref, arg)
		}
		return g.InvalidHeroWithVouchers(VoucherDefect(arg)), nil
	default:
		return hero.HeroPayload{}, fmt.Errorf("unknown fixture %q", ref)
	}
}

func validField(f Field) bool {
	switch f {
	case FieldNatID, FieldName, FieldGender, FieldBirthDate, FieldSalary, FieldTaxPaid:
		return true
	}
	return false
}

func validDefect(d VoucherDefect) bool {
	switch d {
	case EmptyVouchers, NullVouchers, InvalidVoucherName, InvalidVoucherType:
		return true
	}
	return false
}
