package cli

import (
	"fmt"

	"github.com/roach88/herocheck/internal/apiclient"
	"github.com/roach88/herocheck/internal/database"
	"github.com/roach88/herocheck/internal/harness"
	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/simdb"
	"github.com/roach88/herocheck/internal/store"
)

// backends holds the live clients a command needs. A nil field means its
// surface is fully simulated.
type backends struct {
	live  *apiclient.Client
	store *store.Store
}

// openBackends creates live clients for every surface that is not
// simulated. Neither client connects here, so an unreachable backend shows
// up on first use, where fallback can handle it.
func openBackends(opts *RootOptions) (*backends, error) {
	cfg := opts.Config
	b := &backends{}

	if !cfg.UseMockAPI {
		live, err := apiclient.New(cfg.BaseURL, apiclient.Options{
			Timeout: cfg.HTTPTimeout,
			Logger:  opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("hero API client: %w", err)
		}
		b.live = live
	}

	if !cfg.UseMockDB {
		st, err := store.Open(cfg.DB.Driver, cfg.DB.DSN(), store.Options{
			ConnectTimeout: cfg.DB.ConnectTimeout,
			Logger:         opts.Logger,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		b.store = st
	}

	return b, nil
}

// Close releases the live clients.
func (b *backends) Close() {
	if b.live != nil {
		b.live.Close()
	}
	if b.store != nil {
		_ = b.store.Close()
	}
}

// harnessDeps returns the scenario dependencies for the configured modes.
func (b *backends) harnessDeps(opts *RootOptions) harness.Deps {
	return harness.Deps{
		API:    opts.Config.APIMode(),
		DB:     opts.Config.DBMode(),
		Live:   b.live,
		Store:  b.store,
		Logger: opts.Logger,
	}
}

// db returns the persistence facade for the configured mode.
func (b *backends) db(opts *RootOptions) *database.DB {
	ctrl := mode.NewController(mode.SurfaceDB, opts.Config.DBMode(), mode.WithLogger(opts.Logger))
	return database.New(b.store, simdb.NewDispatcher(opts.Logger), ctrl)
}
