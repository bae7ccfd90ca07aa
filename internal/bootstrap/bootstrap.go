package bootstrap

import (
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"edenhttp/internal/config"
	"edenhttp/internal/handler"
	"edenhttp/internal/metrics"
	"edenhttp/internal/middleware"
	"edenhttp/internal/registry"
	"edenhttp/internal/schema"
	"edenhttp/internal/transport"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RouteSetup registers application routes during the init pass.
type RouteSetup func(reg registry.Registry) error

type Bootstrap struct {
	Config     config.Config
	Registry   registry.Registry
	Metrics    *metrics.Collector
	Logger     zerolog.Logger
	ErrChan    chan error
	SignalChan chan os.Signal
}

// New runs the init pass: application routes, then the schema route, then the
// registry is frozen. Nothing registers after this returns.
func New(conf config.Config, logger zerolog.Logger, setups ...RouteSetup) (*Bootstrap, error) {
	reg, err := BuildRegistry(conf, setups...)
	if err != nil {
		return nil, err
	}

	return &Bootstrap{
		Config:     conf,
		Registry:   reg,
		Metrics:    metrics.New(),
		Logger:     logger,
		ErrChan:    make(chan error, 5),
		SignalChan: make(chan os.Signal, 1),
	}, nil
}

func BuildRegistry(conf config.Config, setups ...RouteSetup) (registry.Registry, error) {
	reg := registry.NewRegistry()
	for _, setup := range setups {
		if err := setup(reg); err != nil {
			return nil, fmt.Errorf("register routes: %w", err)
		}
	}
	if err := schema.Route(reg, conf.SchemaPath(), schema.Info{Title: conf.APITitle()}); err != nil {
		return nil, fmt.Errorf("register schema route: %w", err)
	}
	reg.Freeze()
	return reg, nil
}

func (b *Bootstrap) newMessageHandler() *handler.Handler {
	return handler.New(b.Registry,
		handler.WithLogger(b.Logger),
		handler.WithMetrics(b.Metrics),
		handler.WithHandlerMiddlewares(
			middleware.Timeout(b.Config.HandlerTimeout()),
			middleware.Logging(b.Logger),
		),
	)
}

func (b *Bootstrap) newLimiter() *rate.Limiter {
	if b.Config.RateLimit() <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(b.Config.RateLimit()), b.Config.RateBurst())
}

func (b *Bootstrap) startHTTPServer(errChan chan<- error) {
	httpserver := transport.NewHTTPServer(b.Config.HTTPPort(), b.newMessageHandler(), transport.Options{
		ReadTimeout:    b.Config.ReadTimeout(),
		MaxHeaderBytes: b.Config.MaxHeaderBytes(),
		MaxBodyBytes:   b.Config.MaxBodyBytes(),
		Limiter:        b.newLimiter(),
		Metrics:        b.Metrics,
		Logger:         b.Logger,
	})
	ln, err := httpserver.Listen()
	if err != nil {
		errChan <- fmt.Errorf("failed to start http server: %w", err)
		return
	}
	if err = httpserver.Serve(ln); err != nil {
		errChan <- fmt.Errorf("error when serving http server: %w", err)
	}
}

// newSideServer builds the listener for the metrics and pprof endpoints. Header
// reads share the engine's read timeout.
func (b *Bootstrap) newSideServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: b.Config.ReadTimeout(),
	}
}

func (b *Bootstrap) startMetricsServer(errChan chan<- error) {
	addr := net.JoinHostPort("", b.Config.MetricsPort())
	mux := http.NewServeMux()
	mux.Handle("/metrics", b.Metrics.Handler())
	b.Logger.Info().Str("addr", addr).Msg("starting metrics server")
	if err := b.newSideServer(addr, mux).ListenAndServe(); err != nil {
		errChan <- fmt.Errorf("metrics server error: %w", err)
	}
}

func (b *Bootstrap) startPprof(errChan chan<- error) {
	pprofAddr := fmt.Sprintf("localhost:%s", b.Config.PprofPort())
	b.Logger.Info().Msgf("Starting pprof server on http://%s/debug/pprof/", pprofAddr)
	if err := b.newSideServer(pprofAddr, http.DefaultServeMux).ListenAndServe(); err != nil {
		errChan <- fmt.Errorf("pprof server error: %w", err)
	}
}

func (b *Bootstrap) Run() error {
	signal.Notify(b.SignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(b.SignalChan)

	go b.startHTTPServer(b.ErrChan)

	if b.Config.MetricsEnabled() {
		go b.startMetricsServer(b.ErrChan)
	}

	if b.Config.PprofEnabled() {
		go b.startPprof(b.ErrChan)
	}

	b.Logger.Info().Int("routes", len(b.Registry.Routes())).Msg("All services started successfully")

	select {
	case err := <-b.ErrChan:
		return fmt.Errorf("service error: %w", err)
	case sig := <-b.SignalChan:
		b.Logger.Info().Str("signal", sig.String()).Msg("Received signal, initiating graceful shutdown")
		return nil
	}
}
