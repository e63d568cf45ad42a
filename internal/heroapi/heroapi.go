// Package heroapi is the facade tests use to call the hero API.
//
// Each operation is routed by a mode.Controller: in SIMULATED mode the
// envelope comes from an envelope.Builder, in LIVE mode from the HTTP
// client, with per-call fallback to the builder when the live API cannot be
// reached and fallback is allowed.
package heroapi

import (
	"context"
	"errors"
	"net/url"

	"github.com/roach88/herocheck/internal/apiclient"
	"github.com/roach88/herocheck/internal/envelope"
	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/mode"
)

// Operation names, used in logs, errors and harness traces.
const (
	OpCreateHero             = "hero.create"
	OpCreateHeroWithVouchers = "hero.create_with_vouchers"
	OpHeroOwesMoney          = "hero.owe_money"
	OpVoucherStatistics      = "voucher.statistics"
)

// ErrNoLiveClient is returned by live calls on a Client built without one.
var ErrNoLiveClient = errors.New("heroapi: no live client configured")

// Client is the hero API facade. Safe for concurrent use.
type Client struct {
	live *apiclient.Client
	sim  envelope.Builder
	ctrl *mode.Controller
}

// New creates a facade. live may be nil when ctrl is in SIMULATED mode.
func New(live *apiclient.Client, sim envelope.Builder, ctrl *mode.Controller) *Client {
	return &Client{live: live, sim: sim, ctrl: ctrl}
}

// Mode returns the facade's execution mode.
func (c *Client) Mode() mode.Mode {
	return c.ctrl.Mode()
}

// CreateHero creates a hero.
func (c *Client) CreateHero(ctx context.Context, p hero.HeroPayload) (envelope.Envelope, error) {
	return mode.Do(ctx, c.ctrl, OpCreateHero,
		func(ctx context.Context) (envelope.Envelope, error) {
			if c.live == nil {
				return nil, ErrNoLiveClient
			}
			return c.live.PostJSON(ctx, OpCreateHero, hero.PathHero, p)
		},
		func() envelope.Envelope { return c.sim.CreateHero(p) },
	)
}

// CreateHeroWithVouchers creates a hero together with its vouchers.
func (c *Client) CreateHeroWithVouchers(ctx context.Context, p hero.HeroPayload) (envelope.Envelope, error) {
	return mode.Do(ctx, c.ctrl, OpCreateHeroWithVouchers,
		func(ctx context.Context) (envelope.Envelope, error) {
			if c.live == nil {
				return nil, ErrNoLiveClient
			}
			return c.live.PostJSON(ctx, OpCreateHeroWithVouchers, hero.PathHeroWithVouchers, p)
		},
		func() envelope.Envelope { return c.sim.CreateHeroWithVouchers(p) },
	)
}

// CheckHeroOwesMoney asks whether a hero owes money. natid is the numeric
// part of the national id, without the natid- prefix.
func (c *Client) CheckHeroOwesMoney(ctx context.Context, natid string) (envelope.Envelope, error) {
	return mode.Do(ctx, c.ctrl, OpHeroOwesMoney,
		func(ctx context.Context) (envelope.Envelope, error) {
			if c.live == nil {
				return nil, ErrNoLiveClient
			}
			return c.live.Get(ctx, OpHeroOwesMoney, hero.PathHeroOwesMoney, url.Values{hero.QueryNatID: {natid}})
		},
		func() envelope.Envelope { return c.sim.HeroOwesMoney(natid) },
	)
}

// GetVoucherStatistics fetches voucher counts by person and type.
func (c *Client) GetVoucherStatistics(ctx context.Context) (envelope.Envelope, error) {
	return mode.Do(ctx, c.ctrl, OpVoucherStatistics,
		func(ctx context.Context) (envelope.Envelope, error) {
			if c.live == nil {
				return nil, ErrNoLiveClient
			}
			return c.live.Get(ctx, OpVoucherStatistics, hero.PathVoucherStatistics, nil)
		},
		func() envelope.Envelope { return c.sim.VoucherStatistics() },
	)
}
