// Package simdb answers hero persistence queries without a database.
//
// Every recognised query shape maps to a fixed synthetic result that depends
// only on the bound parameters. There is no store of previously written
// records: a hero "exists" when its natid passes hero.Exists, deletes change
// nothing, and the same query always returns identical rows. Dispatch is
// therefore safe under any amount of concurrency without locking.
package simdb

import (
	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/queryir"
	"github.com/roach88/herocheck/internal/querysql"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Rows is a result set. A statement with no result set yields empty Rows.
type Rows []Row

// Synthetic record values.
const (
	MockHeroID        int64 = 123
	MockHeroName            = "Mock Hero"
	MockBirthDate           = "1990-01-01T00:00:00"
	MockVoucherID     int64 = 456
	MockFileID        int64 = 789
	MockFileCount     int64 = 5
	MockFileCreated         = "2024-01-01T00:00:00.000Z"
	mockSalary              = 5000.0
	mockTaxPaid             = 500.0
	mockBrowniePoints int64 = 10
)

// Dispatch returns the synthetic result of q. A nil or unknown query yields
// empty rows.
//
// Dispatch is a pure function with no side effects.
func Dispatch(q queryir.Query) Rows {
	switch query := q.(type) {
	case queryir.CountHero:
		return countHero(query.NatID)
	case *queryir.CountHero:
		return countHero(query.NatID)
	case queryir.SelectHero:
		return selectHero(query.NatID)
	case *queryir.SelectHero:
		return selectHero(query.NatID)
	case queryir.SelectVouchers:
		return selectVouchers(query.NatID)
	case *queryir.SelectVouchers:
		return selectVouchers(query.NatID)
	case queryir.LatestFile:
		return latestFile(query.FileType)
	case *queryir.LatestFile:
		return latestFile(query.FileType)
	case queryir.Delete, *queryir.Delete:
		return Rows{}
	default:
		return Rows{}
	}
}

func countHero(natid string) Rows {
	var n int64
	if hero.Exists(natid) {
		n = 1
	}
	return Rows{{querysql.CountColumn: n}}
}

func selectHero(natid string) Rows {
	if !hero.Exists(natid) {
		return Rows{}
	}
	return Rows{{
		"id":             MockHeroID,
		"natid":          natid,
		"name":           MockHeroName,
		"gender":         string(hero.GenderMale),
		"birth_date":     MockBirthDate,
		"death_date":     nil,
		"salary":         mockSalary,
		"tax_paid":       mockTaxPaid,
		"brownie_points": mockBrowniePoints,
	}}
}

func selectVouchers(natid string) Rows {
	if !hero.Exists(natid) {
		return Rows{}
	}
	return Rows{
		{
			"id":           MockVoucherID,
			"natid":        natid,
			"voucher_name": "Mock Voucher 1",
			"voucher_type": string(hero.VoucherTravel),
		},
		{
			"id":           MockVoucherID + 1,
			"natid":        natid,
			"voucher_name": "Mock Voucher 2",
			"voucher_type": string(hero.VoucherFood),
		},
	}
}

func latestFile(fileType string) Rows {
	return Rows{{
		"id":          MockFileID,
		"file_type":   fileType,
		"status":      hero.FileStatusDone,
		"total_count": MockFileCount,
		"created_at":  MockFileCreated,
	}}
}
