package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/simdb"
)

//go:embed schema_mysql.sql
var schemaMySQL string

//go:embed schema_sqlite.sql
var schemaSQLite string

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DefaultConnectTimeout bounds connection acquisition when Options leaves it
// unset.
const DefaultConnectTimeout = 10 * time.Second

// Options configures a Store.
type Options struct {
	// ConnectTimeout bounds how long Execute waits for a connection.
	ConnectTimeout time.Duration

	// Logger receives per-statement debug logs. Nil discards them.
	Logger *zap.Logger
}

// Store executes SQL against a live database.
// Safe for concurrent use.
type Store struct {
	db             *sql.DB
	driver         string
	connectTimeout time.Duration
	logger         *zap.Logger
}

// Open prepares a Store for driver and dsn.
//
// Open does not connect: connections are made per call, so an unreachable
// database surfaces as a ConnectionError from Execute, not from Open. Use
// Ping to check reachability up front.
func Open(driverName, dsn string, opts Options) (*Store, error) {
	switch driverName {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection per call, released on return
	db.SetMaxIdleConns(0)

	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Store{
		db:             db,
		driver:         driverName,
		connectTimeout: opts.ConnectTimeout,
		logger:         opts.Logger,
	}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that a connection can be established.
func (s *Store) Ping(ctx context.Context) error {
	conn, err := s.conn(ctx, "ping")
	if err != nil {
		return err
	}
	return conn.Close()
}

// Execute runs one statement on a fresh connection.
//
// Statements that produce a result set (SELECT, WITH, SHOW, PRAGMA) return
// their rows as column maps, with []byte values converted to string. Other
// statements return empty rows.
func (s *Store) Execute(ctx context.Context, query string, params []any) (simdb.Rows, error) {
	conn, err := s.conn(ctx, "execute")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	start := time.Now()
	var rows simdb.Rows
	if returnsRows(query) {
		rows, err = queryRows(ctx, conn, query, params)
	} else {
		_, err = conn.ExecContext(ctx, query, params...)
		rows = simdb.Rows{}
	}
	if err != nil {
		return nil, classify("execute", fmt.Errorf("execute %q: %w", query, err))
	}

	s.logger.Debug("executed statement",
		zap.String("driver", s.driver),
		zap.String("sql", query),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}

// SetupSchema creates the hero tables if they don't exist.
// This function is idempotent.
func (s *Store) SetupSchema(ctx context.Context) error {
	conn, err := s.conn(ctx, "setup_schema")
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, stmt := range Statements(s.Schema()) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return classify("setup_schema", fmt.Errorf("failed to execute schema: %w", err))
		}
	}
	return nil
}

// Schema returns the DDL of the store's dialect.
func (s *Store) Schema() string {
	if s.driver == DriverSQLite {
		return schemaSQLite
	}
	return schemaMySQL
}

// conn acquires a connection within the connect timeout.
func (s *Store) conn(ctx context.Context, op string) (*sql.Conn, error) {
	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	conn, err := s.db.Conn(connectCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, mode.NewConnectionError(mode.SurfaceDB, op, err)
	}
	return conn, nil
}

// Statements splits a DDL script on semicolons, dropping empty statements.
// The hero DDL contains no semicolons inside literals.
func Statements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// classify marks errors caused by a lost connection as ConnectionErrors.
func classify(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || mode.IsNetworkError(err) {
		return mode.NewConnectionError(mode.SurfaceDB, op, err)
	}
	return err
}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(strings.TrimLeft(fields[0], "(")) {
	case "SELECT", "WITH", "SHOW", "PRAGMA", "EXPLAIN", "DESCRIBE":
		return true
	default:
		return false
	}
}

func queryRows(ctx context.Context, conn *sql.Conn, query string, params []any) (simdb.Rows, error) {
	rs, err := conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	rows := simdb.Rows{}
	for rs.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(simdb.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rows, nil
}
