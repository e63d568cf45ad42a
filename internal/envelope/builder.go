package envelope

import (
	"net/http"
	"regexp"

	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/validate"
)

// Response messages of the simulated service.
const (
	MsgCreated             = "Successfully created"
	MsgCreatedWithVouchers = "Successfully created hero with vouchers"
	MsgNatIDNotNumeric     = "National ID must be numeric"
)

var numeric = regexp.MustCompile(`^\d+$`)

// statisticsFixture is the canonical voucher statistics report.
var statisticsFixture = []VoucherCount{
	{Name: "Test Hero 1", VoucherType: string(hero.VoucherTravel), Count: 2},
	{Name: "Test Hero 1", VoucherType: string(hero.VoucherFood), Count: 2},
	{Name: "Test Hero 2", VoucherType: string(hero.VoucherTravel), Count: 1},
	{Name: "Test Hero 2", VoucherType: string(hero.VoucherFood), Count: 1},
	{Name: "Test Hero 3", VoucherType: string(hero.VoucherTravel), Count: 1},
	{Name: "Test Hero 3", VoucherType: string(hero.VoucherFood), Count: 1},
}

// Builder produces the envelopes the simulated service would return.
// The zero value uses the wall clock. A Builder holds no mutable state and
// is safe for concurrent use.
type Builder struct {
	// Clock is both the validation reference time and the timestamp source.
	Clock Clock
}

// CreateHero simulates POST /api/v1/hero.
func (b Builder) CreateHero(p hero.HeroPayload) Envelope {
	if r := validate.Hero(p, b.Clock.now()); !r.OK() {
		return NewMessage(http.StatusBadRequest, r.Message, b.Clock)
	}
	return NewMessage(http.StatusOK, MsgCreated, b.Clock)
}

// CreateHeroWithVouchers simulates POST /api/v1/hero/vouchers. Hero rules
// are checked before voucher rules.
func (b Builder) CreateHeroWithVouchers(p hero.HeroPayload) Envelope {
	if r := validate.Hero(p, b.Clock.now()); !r.OK() {
		return NewMessage(http.StatusBadRequest, r.Message, b.Clock)
	}
	if r := validate.Vouchers(p.Vouchers); !r.OK() {
		return NewMessage(http.StatusBadRequest, r.Message, b.Clock)
	}
	return NewMessage(http.StatusOK, MsgCreatedWithVouchers, b.Clock)
}

// HeroOwesMoney simulates GET /api/v1/hero/owe-money. natid is the raw
// numeric part, without the natid- prefix. Even numbers owe, odd ones don't.
func (b Builder) HeroOwesMoney(natid string) Envelope {
	if !numeric.MatchString(natid) {
		return NewMessage(http.StatusBadRequest, MsgNatIDNotNumeric, b.Clock)
	}
	return &DebtStatus{
		NatID:  hero.FormatNatID(natid),
		Status: Parity(natid),
		clock:  b.Clock,
	}
}

// VoucherStatistics simulates GET /api/v1/voucher/by-person-and-type.
func (b Builder) VoucherStatistics() Envelope {
	return &VoucherStatistics{Rows: StatisticsFixture()}
}

// StatisticsFixture returns a fresh copy of the canonical statistics rows.
func StatisticsFixture() []VoucherCount {
	return append([]VoucherCount(nil), statisticsFixture...)
}

// Parity decides the debt status of a decimal string from its last digit,
// so numbers of any length are accepted. digits must be non-empty.
func Parity(digits string) Owe {
	if (digits[len(digits)-1]-'0')%2 == 0 {
		return OweMoney
	}
	return OweNil
}
