package querysql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/herocheck/internal/queryir"
)

// UnrecognizedQueryError reports SQL that matches none of the known shapes.
type UnrecognizedQueryError struct {
	SQL string
}

func (e *UnrecognizedQueryError) Error() string {
	return fmt.Sprintf("unrecognized query shape: %q", e.SQL)
}

// IsUnrecognized checks if err is an UnrecognizedQueryError.
func IsUnrecognized(err error) bool {
	var target *UnrecognizedQueryError
	return errors.As(err, &target)
}

// shape is one recognised statement. Patterns are anchored at both ends, so
// no statement matches two shapes and their order carries no meaning.
type shape struct {
	pattern *regexp.Regexp
	build   func(m []string, params []any) queryir.Query
}

var shapes = []shape{
	{
		pattern: pattern(`SELECT\s+COUNT\s*\(\s*\*\s*\)(?:\s+AS\s+count)?\s+FROM\s+WORKING_CLASS_HEROES\s+WHERE\s+natid\s*=\s*\?`),
		build: func(_ []string, params []any) queryir.Query {
			return queryir.CountHero{NatID: param(params, 0)}
		},
	},
	{
		pattern: pattern(`SELECT\s+\*\s+FROM\s+WORKING_CLASS_HEROES\s+WHERE\s+natid\s*=\s*\?`),
		build: func(_ []string, params []any) queryir.Query {
			return queryir.SelectHero{NatID: param(params, 0)}
		},
	},
	{
		pattern: pattern(`SELECT\s+\*\s+FROM\s+VOUCHERS\s+WHERE\s+natid\s*=\s*\?`),
		build: func(_ []string, params []any) queryir.Query {
			return queryir.SelectVouchers{NatID: param(params, 0)}
		},
	},
	{
		pattern: pattern(`SELECT\s+\*\s+FROM\s+FILE\s+WHERE\s+FILE_TYPE\s*=\s*\?\s+ORDER\s+BY\s+ID\s+DESC\s+LIMIT\s+1`),
		build: func(_ []string, params []any) queryir.Query {
			return queryir.LatestFile{FileType: param(params, 0)}
		},
	},
	{
		pattern: pattern(`DELETE\s+FROM\s+(VOUCHERS|WORKING_CLASS_HEROES)\s+WHERE\s+natid\s*(=|LIKE)\s*\?`),
		build: func(m []string, params []any) queryir.Query {
			d := queryir.Delete{
				Table: queryir.Table(strings.ToUpper(m[1])),
				Match: queryir.MatchEquals,
				Value: param(params, 0),
			}
			if strings.EqualFold(m[2], "LIKE") {
				d.Match = queryir.MatchLike
			}
			return d
		},
	},
}

// pattern anchors body, makes it case-insensitive and tolerates a trailing
// semicolon.
func pattern(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*` + body + `\s*;?\s*$`)
}

// Recognize maps literal SQL and its bound parameters to a query variant.
// Keywords and identifiers are matched case-insensitively and any run of
// whitespace is accepted between tokens. SQL matching no known shape yields
// an *UnrecognizedQueryError.
//
// Recognize is a pure function with no side effects.
func Recognize(sql string, params []any) (queryir.Query, error) {
	for _, s := range shapes {
		if m := s.pattern.FindStringSubmatch(sql); m != nil {
			return s.build(m, params), nil
		}
	}
	return nil, &UnrecognizedQueryError{SQL: sql}
}

// param returns params[i] as a string. A missing or nil parameter is the
// empty string.
func param(params []any, i int) string {
	if i >= len(params) {
		return ""
	}
	switch v := params[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
