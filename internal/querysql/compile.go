// Package querysql translates between query IR variants and the SQL text the
// hero database accepts.
//
// Compile renders a variant to its canonical statement; Recognize maps a
// literal statement back to a variant. Statements are written once, here,
// and are valid for both MySQL and SQLite. All values are parameterized,
// never interpolated.
package querysql

import (
	"fmt"

	"github.com/roach88/herocheck/internal/queryir"
)

// Canonical statement texts.
const (
	sqlCountHero      = "SELECT COUNT(*) as count FROM WORKING_CLASS_HEROES WHERE natid = ?"
	sqlSelectHero     = "SELECT * FROM WORKING_CLASS_HEROES WHERE natid = ?"
	sqlSelectVouchers = "SELECT * FROM VOUCHERS WHERE natid = ?"
	sqlLatestFile     = "SELECT * FROM FILE WHERE FILE_TYPE = ? ORDER BY ID DESC LIMIT 1"
)

// CountColumn is the column name of the existence check result.
const CountColumn = "count"

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
func Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("compile: %w", err)
	}

	switch query := q.(type) {
	case queryir.CountHero:
		return sqlCountHero, []any{query.NatID}, nil
	case *queryir.CountHero:
		return sqlCountHero, []any{query.NatID}, nil
	case queryir.SelectHero:
		return sqlSelectHero, []any{query.NatID}, nil
	case *queryir.SelectHero:
		return sqlSelectHero, []any{query.NatID}, nil
	case queryir.SelectVouchers:
		return sqlSelectVouchers, []any{query.NatID}, nil
	case *queryir.SelectVouchers:
		return sqlSelectVouchers, []any{query.NatID}, nil
	case queryir.LatestFile:
		return sqlLatestFile, []any{query.FileType}, nil
	case *queryir.LatestFile:
		return sqlLatestFile, []any{query.FileType}, nil
	case queryir.Delete:
		return compileDelete(query), []any{query.Value}, nil
	case *queryir.Delete:
		return compileDelete(*query), []any{query.Value}, nil
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// MustCompile is like Compile but panics on error. For statically known
// queries only.
func MustCompile(q queryir.Query) (string, []any) {
	sql, params, err := Compile(q)
	if err != nil {
		panic(err)
	}
	return sql, params
}

func compileDelete(d queryir.Delete) string {
	return fmt.Sprintf("DELETE FROM %s WHERE natid %s ?", d.Table, d.Match)
}
