// Package simserver serves the simulated hero API over HTTP.
//
// The server answers the same paths as the real service with the envelopes
// of an envelope.Builder, so the live code path of the API facade can be
// exercised end to end without the real service.
package simserver

import (
	"context"
	"net"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/roach88/herocheck/internal/apiclient"
	"github.com/roach88/herocheck/internal/envelope"
	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/logging"
)

// Messages of requests the builder never sees.
const (
	MsgInvalidBody      = "Invalid request body"
	MsgNotFound         = "Not Found"
	MsgMethodNotAllowed = "Method Not Allowed"
)

type route struct {
	method string
	handle func(s *Server, ctx *fasthttp.RequestCtx) envelope.Envelope
}

var routes = map[string]route{
	hero.PathHero:              {fasthttp.MethodPost, (*Server).createHero},
	hero.PathHeroWithVouchers:  {fasthttp.MethodPost, (*Server).createHeroWithVouchers},
	hero.PathHeroOwesMoney:     {fasthttp.MethodGet, (*Server).heroOwesMoney},
	hero.PathVoucherStatistics: {fasthttp.MethodGet, (*Server).voucherStatistics},
}

// Server is a simulated hero API server.
type Server struct {
	builder envelope.Builder
	logger  *zap.Logger
	srv     *fasthttp.Server
}

// New creates a server answering with envelopes from builder.
func New(builder envelope.Builder, logger *zap.Logger) *Server {
	s := &Server{builder: builder, logger: logging.OrNop(logger)}
	s.srv = &fasthttp.Server{
		Handler:         s.Handler,
		Name:            "herocheck-sim",
		CloseOnShutdown: true,
	}
	return s
}

// Handler is the request handler, usable with any fasthttp server.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	r, ok := routes[path]
	var env envelope.Envelope
	switch {
	case !ok:
		env = envelope.NewMessage(http.StatusNotFound, MsgNotFound, s.builder.Clock)
	case string(ctx.Method()) != r.method:
		env = envelope.NewMessage(http.StatusMethodNotAllowed, MsgMethodNotAllowed, s.builder.Clock)
	default:
		env = r.handle(s, ctx)
	}

	body, err := env.JSON(context.Background())
	if err != nil {
		s.logger.Error("encode response", zap.String("path", path), zap.Error(err))
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(env.StatusCode())
	ctx.SetContentType("application/json")
	ctx.SetBody(body)

	s.logger.Debug("served",
		zap.ByteString("method", ctx.Method()),
		zap.String("path", path),
		zap.Int("status", env.StatusCode()),
		zap.ByteString("request_id", ctx.Request.Header.Peek(apiclient.HeaderRequestID)),
	)
}

func (s *Server) createHero(ctx *fasthttp.RequestCtx) envelope.Envelope {
	p, ok := s.decode(ctx)
	if !ok {
		return envelope.NewMessage(http.StatusBadRequest, MsgInvalidBody, s.builder.Clock)
	}
	return s.builder.CreateHero(p)
}

func (s *Server) createHeroWithVouchers(ctx *fasthttp.RequestCtx) envelope.Envelope {
	p, ok := s.decode(ctx)
	if !ok {
		return envelope.NewMessage(http.StatusBadRequest, MsgInvalidBody, s.builder.Clock)
	}
	return s.builder.CreateHeroWithVouchers(p)
}

func (s *Server) heroOwesMoney(ctx *fasthttp.RequestCtx) envelope.Envelope {
	return s.builder.HeroOwesMoney(string(ctx.QueryArgs().Peek(hero.QueryNatID)))
}

func (s *Server) voucherStatistics(*fasthttp.RequestCtx) envelope.Envelope {
	return s.builder.VoucherStatistics()
}

func (s *Server) decode(ctx *fasthttp.RequestCtx) (hero.HeroPayload, bool) {
	var p hero.HeroPayload
	if err := json.Unmarshal(ctx.PostBody(), &p); err != nil {
		s.logger.Debug("rejecting request body", zap.ByteString("path", ctx.Path()), zap.Error(err))
		return p, false
	}
	return p, true
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil after a shutdown caused by ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("simulated API listening", zap.String("addr", ln.Addr().String()))

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		if err := s.srv.Shutdown(); err != nil {
			return err
		}
		// Serve may not have registered ln before Shutdown ran.
		_ = ln.Close()
		return <-errc
	}
}

// ListenAndServe listens on the TCP address addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
