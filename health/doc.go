// Package health reports whether the preview service can take traffic.
//
// Checkers report Healthy, Degraded or Unhealthy. An Aggregator runs them
// in parallel under a deadline and folds the results into one status,
// which the HTTP handlers expose as liveness (/healthz), readiness
// (/readyz) and a detailed JSON report (/health).
//
// Built-in checkers cover process memory, preview cache pressure and an
// encoder probe that renders a tiny payload end to end.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//	agg.Register(health.NewCacheChecker(store, health.CacheCheckerConfig{}))
//	agg.Register(health.NewProbeChecker("encoder", svc.Probe, time.Second))
//
//	r := chi.NewRouter()
//	health.RegisterHandlers(r, agg)
package health
