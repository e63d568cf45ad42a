// Package database is the facade tests use to inspect and clean the hero
// database.
//
// Every operation issues one of the recognised query shapes through a
// mode.Controller: live statements go to the store, simulated ones to the
// simdb dispatcher, with per-call fallback when the live database cannot be
// reached and fallback is allowed.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/queryir"
	"github.com/roach88/herocheck/internal/querysql"
	"github.com/roach88/herocheck/internal/simdb"
	"github.com/roach88/herocheck/internal/store"
)

// Operation names, used in logs, errors and harness traces.
const (
	OpQuery       = "db.query"
	OpHeroExists  = "db.hero_exists"
	OpGetHero     = "db.get_hero"
	OpGetVouchers = "db.get_vouchers"
	OpFileRecords = "db.file_records"
	OpCleanupHero = "db.cleanup_hero"
	OpCleanupAll  = "db.cleanup_all"
	OpSetupSchema = "db.setup_schema"
)

// TestDataPatterns are the natid LIKE patterns CleanupAllTestData removes.
var TestDataPatterns = []string{"test-%", "natid-1%", "natid-2%"}

// ErrNoStore is returned by live calls on a DB built without a store.
var ErrNoStore = errors.New("database: no live store configured")

// DB is the database facade. Safe for concurrent use.
type DB struct {
	store *store.Store
	sim   *simdb.Dispatcher
	ctrl  *mode.Controller
}

// New creates a facade. st may be nil when ctrl is in SIMULATED mode.
func New(st *store.Store, sim *simdb.Dispatcher, ctrl *mode.Controller) *DB {
	if sim == nil {
		sim = simdb.NewDispatcher(nil)
	}
	return &DB{store: st, sim: sim, ctrl: ctrl}
}

// Mode returns the facade's execution mode.
func (d *DB) Mode() mode.Mode {
	return d.ctrl.Mode()
}

// Query executes literal SQL.
func (d *DB) Query(ctx context.Context, sql string, params []any) (simdb.Rows, error) {
	return d.execute(ctx, OpQuery, sql, params)
}

// HeroExists reports whether a hero with natid is stored.
func (d *DB) HeroExists(ctx context.Context, natid string) (bool, error) {
	rows, err := d.run(ctx, OpHeroExists, queryir.CountHero{NatID: natid})
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	n, err := asInt64(rows[0][querysql.CountColumn])
	if err != nil {
		return false, fmt.Errorf("%s: %w", OpHeroExists, err)
	}
	return n > 0, nil
}

// GetHero returns the hero with natid, or nil when there is none.
func (d *DB) GetHero(ctx context.Context, natid string) (*hero.HeroRecord, error) {
	rows, err := d.run(ctx, OpGetHero, queryir.SelectHero{NatID: natid})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec, err := decodeHero(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpGetHero, err)
	}
	return &rec, nil
}

// GetVouchers returns the vouchers of the hero with natid.
func (d *DB) GetVouchers(ctx context.Context, natid string) ([]hero.VoucherRecord, error) {
	rows, err := d.run(ctx, OpGetVouchers, queryir.SelectVouchers{NatID: natid})
	if err != nil {
		return nil, err
	}
	out := make([]hero.VoucherRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeVoucher(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", OpGetVouchers, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetFileRecords returns the latest FILE record of fileType, if any.
func (d *DB) GetFileRecords(ctx context.Context, fileType string) ([]hero.FileRecord, error) {
	rows, err := d.run(ctx, OpFileRecords, queryir.LatestFile{FileType: fileType})
	if err != nil {
		return nil, err
	}
	out := make([]hero.FileRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeFile(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", OpFileRecords, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// CleanupHero deletes a hero and its vouchers. Vouchers go first so the
// foreign key is never violated.
func (d *DB) CleanupHero(ctx context.Context, natid string) error {
	for _, table := range []queryir.Table{queryir.TableVouchers, queryir.TableHeroes} {
		q := queryir.Delete{Table: table, Match: queryir.MatchEquals, Value: natid}
		if _, err := d.run(ctx, OpCleanupHero, q); err != nil {
			return err
		}
	}
	return nil
}

// CleanupAllTestData deletes every hero and voucher whose natid matches one
// of TestDataPatterns.
func (d *DB) CleanupAllTestData(ctx context.Context) error {
	for _, pattern := range TestDataPatterns {
		for _, table := range []queryir.Table{queryir.TableVouchers, queryir.TableHeroes} {
			q := queryir.Delete{Table: table, Match: queryir.MatchLike, Value: pattern}
			if _, err := d.run(ctx, OpCleanupAll, q); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetupSchema creates the hero tables on the live database. It does nothing
// in SIMULATED mode, or on fallback.
func (d *DB) SetupSchema(ctx context.Context) error {
	_, err := mode.Do(ctx, d.ctrl, OpSetupSchema,
		func(ctx context.Context) (struct{}, error) {
			if d.store == nil {
				return struct{}{}, ErrNoStore
			}
			return struct{}{}, d.store.SetupSchema(ctx)
		},
		func() struct{} { return struct{}{} },
	)
	return err
}

func (d *DB) run(ctx context.Context, op string, q queryir.Query) (simdb.Rows, error) {
	sql, params, err := querysql.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d.execute(ctx, op, sql, params)
}

func (d *DB) execute(ctx context.Context, op, sql string, params []any) (simdb.Rows, error) {
	return mode.Do(ctx, d.ctrl, op,
		func(ctx context.Context) (simdb.Rows, error) {
			if d.store == nil {
				return nil, ErrNoStore
			}
			return d.store.Execute(ctx, sql, params)
		},
		func() simdb.Rows { return d.sim.Execute(sql, params) },
	)
}
