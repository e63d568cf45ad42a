package simserver

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/goleak"

	"github.com/roach88/herocheck/internal/apiclient"
	"github.com/roach88/herocheck/internal/envelope"
	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/heroapi"
	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.FastHTTPLeakOptions()...)
}

var builder = envelope.Builder{Clock: testutil.FrozenClock().Now}

// start serves on a random loopback port until the test ends.
func start(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(builder, nil).Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return "http://" + ln.Addr().String()
}

func serve(method, uri, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	New(builder, nil).Handler(&ctx)
	return &ctx
}

func message(t *testing.T, ctx *fasthttp.RequestCtx) string {
	t.Helper()
	var body envelope.MessageBody
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body.Message
}

func heroPayload() hero.HeroPayload {
	return hero.HeroPayload{
		NatID:     "natid-31",
		Name:      "Served Hero",
		Gender:    hero.GenderFemale,
		BirthDate: "1988-08-08T00:00:00",
		Salary:    3000,
		TaxPaid:   300,
	}
}

func TestHandler_InvalidBody(t *testing.T) {
	for _, path := range []string{hero.PathHero, hero.PathHeroWithVouchers} {
		ctx := serve(fasthttp.MethodPost, path, "{not json")
		assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode(), path)
		assert.Equal(t, MsgInvalidBody, message(t, ctx))
		assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	ctx := serve(fasthttp.MethodGet, "/api/v1/villain", "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, MsgNotFound, message(t, ctx))
}

func TestHandler_WrongMethod(t *testing.T) {
	ctx := serve(fasthttp.MethodGet, hero.PathHero, "")
	assert.Equal(t, http.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assert.Equal(t, MsgMethodNotAllowed, message(t, ctx))
}

func TestHandler_OweMoneyQuery(t *testing.T) {
	ctx := serve(fasthttp.MethodGet, hero.PathHeroOwesMoney+"?natid=42", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	var body envelope.DebtBody
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, envelope.DebtResult{Data: "natid-42", Status: envelope.OweMoney}, body.Message)

	ctx = serve(fasthttp.MethodGet, hero.PathHeroOwesMoney, "")
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, envelope.MsgNatIDNotNumeric, message(t, ctx))
}

func TestHandler_ValidationErrors(t *testing.T) {
	p := heroPayload()
	p.Gender = "OTHER"
	data, err := json.Marshal(p)
	require.NoError(t, err)

	ctx := serve(fasthttp.MethodPost, hero.PathHero, string(data))
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "Invalid gender. Must be MALE or FEMALE.", message(t, ctx))

	// a hero without vouchers is rejected by the vouchers endpoint
	data, err = json.Marshal(heroPayload())
	require.NoError(t, err)
	ctx = serve(fasthttp.MethodPost, hero.PathHeroWithVouchers, string(data))
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "Vouchers cannot be empty.", message(t, ctx))
}

// The live facade against the simulated server must return exactly what the
// simulated facade returns.
func TestServe_LiveMatchesSimulated(t *testing.T) {
	baseURL := start(t)

	client, err := apiclient.New(baseURL, apiclient.Options{Timeout: 2 * time.Second})
	require.NoError(t, err)
	defer client.Close()

	live := heroapi.New(client, envelope.Builder{}, mode.NewController(mode.SurfaceAPI, mode.Config{}))
	sim := heroapi.New(nil, builder, mode.NewController(mode.SurfaceAPI, mode.Config{Simulate: true}))

	withVouchers := heroPayload()
	withVouchers.Vouchers = []hero.VoucherPayload{{VoucherName: "Test Voucher", VoucherType: hero.VoucherMedical}}
	invalid := heroPayload()
	invalid.NatID = "invalid-natid"

	calls := []struct {
		name string
		call func(*heroapi.Client) (envelope.Envelope, error)
	}{
		{"create", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.CreateHero(context.Background(), heroPayload())
		}},
		{"create invalid", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.CreateHero(context.Background(), invalid)
		}},
		{"create with vouchers", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.CreateHeroWithVouchers(context.Background(), withVouchers)
		}},
		{"owe money even", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.CheckHeroOwesMoney(context.Background(), "1234")
		}},
		{"owe money odd", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.CheckHeroOwesMoney(context.Background(), "1235")
		}},
		{"owe money not numeric", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.CheckHeroOwesMoney(context.Background(), "abc")
		}},
		{"statistics", func(c *heroapi.Client) (envelope.Envelope, error) {
			return c.GetVoucherStatistics(context.Background())
		}},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(live)
			require.NoError(t, err)
			want, err := tt.call(sim)
			require.NoError(t, err)

			assert.Equal(t, want.StatusCode(), got.StatusCode())
			wantBody, err := want.JSON(context.Background())
			require.NoError(t, err)
			gotBody, err := got.JSON(context.Background())
			require.NoError(t, err)
			assert.JSONEq(t, string(wantBody), string(gotBody))
		})
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	err := New(builder, nil).ListenAndServe(context.Background(), "127.0.0.1:99999")
	require.Error(t, err)
}
