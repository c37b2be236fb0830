package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonwraymond/qrpreview/cache"
	"github.com/jonwraymond/qrpreview/config"
	"github.com/jonwraymond/qrpreview/health"
	"github.com/jonwraymond/qrpreview/observe"
	"github.com/jonwraymond/qrpreview/preview"
	"github.com/jonwraymond/qrpreview/render"
	"github.com/jonwraymond/qrpreview/resilience"
)

// app is the fully wired service.
type app struct {
	cfg     config.Config
	obs     observe.Observer
	svc     *preview.Service
	limiter *resilience.KeyedLimiter
	health  *health.Aggregator
	router  chi.Router
}

// newService builds the preview pipeline from cfg.
func newService(cfg config.Config, mw *observe.Middleware) (*preview.Service, error) {
	authn, err := cfg.Authenticator()
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	return preview.NewService(
		cache.NewStore(cfg.CachePolicy()),
		render.NewQREncoder(cfg.RenderConfig()),
		preview.Config{
			Limits:        cfg.Limits(),
			Defaults:      cfg.DefaultOptions(),
			Authenticator: authn,
			Keyer:         cfg.Keyer(),
			Executor:      cfg.Executor(),
			Middleware:    mw,
		},
	)
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}

	svc, err := newService(cfg, mw)
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}

	a := &app{
		cfg:     cfg,
		obs:     obs,
		svc:     svc,
		limiter: cfg.KeyedLimiter(),
		health:  health.NewAggregator(),
	}

	a.health.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))
	a.health.Register(health.NewCacheChecker(svc.Store(), health.CacheCheckerConfig{}))
	a.health.Register(health.NewProbeChecker("encoder", svc.Probe, cfg.Encoder.Timeout))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	preview.NewHandler(svc, preview.HandlerConfig{
		Limiter: a.limiter,
		Admin:   cfg.AdminAuthenticator(),
	}).Register(r)
	health.RegisterHandlers(r, a.health)
	r.Method(http.MethodGet, "/metrics", obs.MetricsHandler())

	a.router = r
	return a, nil
}

func (a *app) shutdown(ctx context.Context) error {
	return a.obs.Shutdown(ctx)
}
