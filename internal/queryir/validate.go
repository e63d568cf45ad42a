package queryir

import (
	"errors"
	"fmt"
)

// ErrNilQuery is returned when a nil Query is validated.
var ErrNilQuery = errors.New("nil query")

// Validate checks the structural invariants of a query: a Delete targets a
// hero table with a known match. The other shapes are always well formed;
// their parameter values are data, not structure.
//
// Validate is a pure function with no side effects.
func Validate(q Query) error {
	switch query := q.(type) {
	case nil:
		return ErrNilQuery
	case CountHero, *CountHero, SelectHero, *SelectHero,
		SelectVouchers, *SelectVouchers, LatestFile, *LatestFile:
		return nil
	case Delete:
		return validateDelete(query)
	case *Delete:
		if query == nil {
			return ErrNilQuery
		}
		return validateDelete(*query)
	default:
		return fmt.Errorf("unknown query type: %T", q)
	}
}

func validateDelete(d Delete) error {
	switch d.Table {
	case TableHeroes, TableVouchers:
	default:
		return fmt.Errorf("delete from %q: only %s and %s may be deleted from", d.Table, TableHeroes, TableVouchers)
	}

	switch d.Match {
	case MatchEquals, MatchLike:
	default:
		return fmt.Errorf("delete from %s: unknown match %d", d.Table, int(d.Match))
	}

	return nil
}
