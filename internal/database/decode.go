package database

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/simdb"
)

// DateLayout is how DATETIME values read back from a driver are rendered.
const DateLayout = "2006-01-02T15:04:05"

// Drivers disagree on column types: SQLite hands back int64 for DECIMAL
// columns holding whole numbers and time.Time for DATETIME, MySQL hands back
// strings for both, and simulated rows use Go values directly. The decoders
// below accept any of them.

func decodeHero(row simdb.Row) (hero.HeroRecord, error) {
	var (
		rec hero.HeroRecord
		err error
	)
	if rec.ID, err = asInt64(row["id"]); err != nil {
		return rec, fmt.Errorf("column id: %w", err)
	}
	rec.NatID = asString(row["natid"])
	rec.Name = asString(row["name"])
	rec.Gender = hero.Gender(asString(row["gender"]))
	rec.BirthDate = asString(row["birth_date"])
	if v := row["death_date"]; v != nil {
		s := asString(v)
		rec.DeathDate = &s
	}
	if rec.Salary, err = asFloat64(row["salary"]); err != nil {
		return rec, fmt.Errorf("column salary: %w", err)
	}
	if rec.TaxPaid, err = asFloat64(row["tax_paid"]); err != nil {
		return rec, fmt.Errorf("column tax_paid: %w", err)
	}
	if v := row["brownie_points"]; v != nil {
		n, err := asInt64(v)
		if err != nil {
			return rec, fmt.Errorf("column brownie_points: %w", err)
		}
		rec.BrowniePoints = ldvalue.NewOptionalInt(int(n))
	}
	return rec, nil
}

func decodeVoucher(row simdb.Row) (hero.VoucherRecord, error) {
	id, err := asInt64(row["id"])
	if err != nil {
		return hero.VoucherRecord{}, fmt.Errorf("column id: %w", err)
	}
	return hero.VoucherRecord{
		ID:          id,
		NatID:       asString(row["natid"]),
		VoucherName: asString(row["voucher_name"]),
		VoucherType: hero.VoucherType(asString(row["voucher_type"])),
	}, nil
}

func decodeFile(row simdb.Row) (hero.FileRecord, error) {
	var (
		rec hero.FileRecord
		err error
	)
	if rec.ID, err = asInt64(row["id"]); err != nil {
		return rec, fmt.Errorf("column id: %w", err)
	}
	if rec.TotalCount, err = asInt64(row["total_count"]); err != nil {
		return rec, fmt.Errorf("column total_count: %w", err)
	}
	rec.FileType = asString(row["file_type"])
	rec.Status = asString(row["status"])
	rec.CreatedAt = asString(row["created_at"])
	return rec, nil
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot read %T as integer", v)
	}
}

func asFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	case []byte:
		return strconv.ParseFloat(string(n), 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot read %T as number", v)
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.UTC().Format(DateLayout)
	default:
		return fmt.Sprint(v)
	}
}
