package hero

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Gender is the closed set of genders accepted by the service.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

// VoucherType is the closed set of voucher categories.
type VoucherType string

const (
	VoucherTravel        VoucherType = "TRAVEL"
	VoucherFood          VoucherType = "FOOD"
	VoucherMedical       VoucherType = "MEDICAL"
	VoucherEntertainment VoucherType = "ENTERTAINMENT"
)

// Valid reports whether t is one of the accepted voucher types.
func (t VoucherType) Valid() bool {
	switch t {
	case VoucherTravel, VoucherFood, VoucherMedical, VoucherEntertainment:
		return true
	default:
		return false
	}
}

// HeroPayload is the request body of the hero creation endpoints.
//
// Vouchers is only sent to the hero-with-vouchers endpoint. A nil or empty
// slice is left off the wire; the service rejects a missing list the same
// way it rejects an empty one.
type HeroPayload struct {
	NatID         string              `json:"natid"`
	Name          string              `json:"name"`
	Gender        Gender              `json:"gender"`
	BirthDate     string              `json:"birthDate"`
	DeathDate     *string             `json:"deathDate"`
	Salary        float64             `json:"salary"`
	TaxPaid       float64             `json:"taxPaid"`
	BrowniePoints ldvalue.OptionalInt `json:"browniePoints"`
	Vouchers      []VoucherPayload    `json:"vouchers,omitempty"`
}

// VoucherPayload is one voucher attached to a hero creation request.
type VoucherPayload struct {
	VoucherName string      `json:"voucherName"`
	VoucherType VoucherType `json:"voucherType"`
}

// HeroRecord is a row of WORKING_CLASS_HEROES.
type HeroRecord struct {
	ID            int64               `json:"id"`
	NatID         string              `json:"natid"`
	Name          string              `json:"name"`
	Gender        Gender              `json:"gender"`
	BirthDate     string              `json:"birth_date"`
	DeathDate     *string             `json:"death_date"`
	Salary        float64             `json:"salary"`
	TaxPaid       float64             `json:"tax_paid"`
	BrowniePoints ldvalue.OptionalInt `json:"brownie_points"`
}

// VoucherRecord is a row of VOUCHERS.
type VoucherRecord struct {
	ID          int64       `json:"id"`
	NatID       string      `json:"natid"`
	VoucherName string      `json:"voucher_name"`
	VoucherType VoucherType `json:"voucher_type"`
}

// FileRecord is a row of FILE.
type FileRecord struct {
	ID         int64  `json:"id"`
	FileType   string `json:"file_type"`
	Status     string `json:"status"`
	TotalCount int64  `json:"total_count"`
	CreatedAt  string `json:"created_at"`
}

// File types and statuses known to the service.
const (
	FileTypeTaxRelief = "TAX_RELIEF"
	FileStatusDone    = "COMPLETED"
)
