package querysql

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/herocheck/internal/queryir"
)

func TestRecognize_Variations(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want queryir.Query
	}{
		{
			name: "lowercase keywords",
			sql:  "select count(*) as count from working_class_heroes where natid = ?",
			want: queryir.CountHero{NatID: "natid-1"},
		},
		{
			name: "count without alias",
			sql:  "SELECT COUNT(*) FROM WORKING_CLASS_HEROES WHERE natid = ?",
			want: queryir.CountHero{NatID: "natid-1"},
		},
		{
			name: "multiline with trailing semicolon",
			sql:  "\n  SELECT *\n  FROM WORKING_CLASS_HEROES\n  WHERE natid=?;\n",
			want: queryir.SelectHero{NatID: "natid-1"},
		},
		{
			name: "tabs",
			sql:  "SELECT\t*\tFROM\tVOUCHERS\tWHERE\tnatid\t=\t?",
			want: queryir.SelectVouchers{NatID: "natid-1"},
		},
		{
			name: "file lowercase",
			sql:  "select * from file where file_type = ? order by id desc limit 1",
			want: queryir.LatestFile{FileType: "natid-1"},
		},
		{
			name: "delete like lowercase",
			sql:  "delete from vouchers where natid like ?",
			want: queryir.Delete{Table: queryir.TableVouchers, Match: queryir.MatchLike, Value: "natid-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Recognize(tt.sql, []any{"natid-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecognize_Unrecognized(t *testing.T) {
	statements := []string{
		"",
		"SELECT 1",
		"SELECT * FROM USERS WHERE natid = ?",
		"INSERT INTO WORKING_CLASS_HEROES (natid) VALUES (?)",
		// anchored: a known shape embedded in a larger statement does not match
		"SELECT * FROM WORKING_CLASS_HEROES WHERE natid = ? AND name = ?",
		"SELECT * FROM VOUCHERS WHERE natid = ? ORDER BY id",
		"SELECT * FROM FILE WHERE FILE_TYPE = ?",
		"DELETE FROM FILE WHERE natid = ?",
		"DELETE FROM VOUCHERS",
	}

	for _, sql := range statements {
		t.Run(sql, func(t *testing.T) {
			q, err := Recognize(sql, []any{"natid-1"})
			assert.Nil(t, q)
			require.Error(t, err)
			assert.True(t, IsUnrecognized(err))

			var unrec *UnrecognizedQueryError
			require.ErrorAs(t, err, &unrec)
			assert.Equal(t, sql, unrec.SQL)
		})
	}
}

func TestIsUnrecognized_Wrapped(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", &UnrecognizedQueryError{SQL: "SELECT 1"})
	assert.True(t, IsUnrecognized(err))
	assert.False(t, IsUnrecognized(fmt.Errorf("other")))
	assert.Equal(t, `unrecognized query shape: "SELECT 1"`, (&UnrecognizedQueryError{SQL: "SELECT 1"}).Error())
}

type natidStringer struct{ n int }

func (s natidStringer) String() string { return fmt.Sprintf("natid-%d", s.n) }

func TestRecognize_Params(t *testing.T) {
	sql := "SELECT COUNT(*) as count FROM WORKING_CLASS_HEROES WHERE natid = ?"

	tests := []struct {
		name   string
		params []any
		want   string
	}{
		{"missing", nil, ""},
		{"nil", []any{nil}, ""},
		{"bytes", []any{[]byte("natid-7")}, "natid-7"},
		{"stringer", []any{natidStringer{8}}, "natid-8"},
		{"int", []any{42}, "42"},
		{"extra params ignored", []any{"natid-1", "natid-2"}, "natid-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Recognize(sql, tt.params)
			require.NoError(t, err)
			assert.Equal(t, queryir.CountHero{NatID: tt.want}, got)
		})
	}
}

// Shapes are disjoint: each canonical text matches exactly one pattern.
func TestShapes_Disjoint(t *testing.T) {
	statements := []string{
		sqlCountHero, sqlSelectHero, sqlSelectVouchers, sqlLatestFile,
		"DELETE FROM VOUCHERS WHERE natid = ?",
		"DELETE FROM WORKING_CLASS_HEROES WHERE natid LIKE ?",
	}

	for _, sql := range statements {
		matches := 0
		for _, s := range shapes {
			if s.pattern.MatchString(sql) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, sql)
	}
}
