package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonwraymond/qrpreview/auth"
	"github.com/jonwraymond/qrpreview/cache"
	"github.com/jonwraymond/qrpreview/observe"
	"github.com/jonwraymond/qrpreview/resilience"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// HandlerConfig configures the HTTP adapter.
type HandlerConfig struct {
	// Limiter rate limits requests without an integrity token, keyed by
	// client IP. Nil disables limiting.
	Limiter *resilience.KeyedLimiter

	// Admin guards the stats and purge endpoints. Nil leaves them unmounted.
	Admin *auth.APIKeyAuthenticator
}

// Handler serves previews over HTTP.
type Handler struct {
	svc     *Service
	limiter *resilience.KeyedLimiter
	admin   *auth.APIKeyAuthenticator
	router  chi.Router
}

// NewHandler creates the HTTP adapter for svc.
func NewHandler(svc *Service, cfg HandlerConfig) *Handler {
	h := &Handler{
		svc:     svc,
		limiter: cfg.Limiter,
		admin:   cfg.Admin,
	}

	r := chi.NewRouter()
	h.Register(r)
	h.router = r
	return h
}

// Register mounts the preview routes on r.
//
//	GET|HEAD /preview        render a preview
//	GET      /preview/stats  cache and executor statistics (admin)
//	DELETE   /preview/cache  purge the cache (admin)
func (h *Handler) Register(r chi.Router) {
	r.Get("/preview", h.ServePreview)
	r.Head("/preview", h.ServePreview)

	if h.admin != nil {
		r.Get("/preview/stats", h.requireAdmin(h.serveStats))
		r.Delete("/preview/cache", h.requireAdmin(h.servePurge))
	}
}

// ServeHTTP implements http.Handler using the handler's own router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ServePreview handles GET and HEAD /preview.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	ctx := h.withRequestID(w, r)
	format := string(FormatSVG)

	defer func() {
		if v := recover(); v != nil {
			h.svc.Logger().Error(ctx, "preview handler panic", observe.F("panic", fmt.Sprint(v)))
			h.fail(ctx, w, format, newError(KindUnknown, "internal error", "", fmt.Errorf("panic: %v", v)))
		}
	}()

	req, err := RequestFromQuery(r.URL.Query())
	if err != nil {
		h.fail(ctx, w, format, err)
		return
	}
	if f, ok := ParseFormat(req.options[OptFormat]); ok {
		format = string(f)
	}

	if !req.HasToken() && h.limiter != nil {
		if ok, retry := h.limiter.Allow(clientIP(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
			h.fail(ctx, w, format, newError(KindRateLimited, "rate limit exceeded", "", ErrRateLimited))
			return
		}
	}

	job, err := h.svc.Prepare(ctx, req)
	if err != nil {
		h.fail(ctx, w, format, err)
		return
	}

	etag := job.ETag()
	cacheControl := h.svc.Formatter().CacheControl()
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", cacheControl)
		w.WriteHeader(http.StatusNotModified)
		h.svc.Metrics().RecordRequest(ctx, observe.OutcomeNotModified, format)
		return
	}

	result, err := h.svc.Run(ctx, job)
	if err != nil {
		h.fail(ctx, w, format, err)
		return
	}
	resp, err := h.svc.Respond(result)
	if err != nil {
		h.fail(ctx, w, format, err)
		return
	}

	xcache := "MISS"
	if result.Cached() {
		xcache = "HIT"
	}

	hdr := w.Header()
	hdr.Set("Content-Type", resp.ContentType)
	hdr.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	hdr.Set("Cache-Control", resp.CacheControl)
	hdr.Set("ETag", etag)
	hdr.Set("X-Cache", xcache)
	hdr.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}

	h.svc.Metrics().RecordRequest(ctx, observe.OutcomeOK, format)
}

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, format string, err error) {
	var pe *Error
	if !errors.As(err, &pe) {
		pe = newError(KindUnknown, "internal error", "", err)
	}

	outcome := observe.OutcomeUnknown
	switch pe.Kind {
	case KindBadRequest:
		outcome = observe.OutcomeBadRequest
		h.svc.Logger().Debug(ctx, "preview request rejected",
			observe.F("reason", pe.Message), observe.F("details", pe.Details))
	case KindRateLimited:
		outcome = observe.OutcomeRateLimited
	case KindEncodingFailure:
		outcome = observe.OutcomeEncoding
	case KindUnknown:
		if pe.Err != nil {
			h.svc.Logger().Error(ctx, "preview request failed", observe.F("error", pe.Err.Error()))
		}
	}
	h.svc.Metrics().RecordRequest(ctx, outcome, format)

	writeJSON(w, pe.Kind.HTTPStatus(), ErrorBody{Error: pe.Message, Details: pe.Details})
}

// StatsBody is the JSON body of GET /preview/stats.
type StatsBody struct {
	Cache     cache.Stats                `json:"cache"`
	Executor  resilience.ExecutorMetrics `json:"executor"`
	RateLimit *RateLimitStats            `json:"rate_limit,omitempty"`
}

// RateLimitStats summarizes the per-client limiter.
type RateLimitStats struct {
	Clients  int   `json:"clients"`
	Rejected int64 `json:"rejected"`
}

func (h *Handler) serveStats(w http.ResponseWriter, _ *http.Request) {
	body := StatsBody{
		Cache:    h.svc.Store().Stats(),
		Executor: h.svc.Executor().Metrics(),
	}
	if h.limiter != nil {
		body.RateLimit = &RateLimitStats{Clients: h.limiter.Len(), Rejected: h.limiter.Rejected()}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) servePurge(w http.ResponseWriter, r *http.Request) {
	n := h.svc.Store().Len()
	h.svc.Store().Purge()
	h.svc.Logger().Info(r.Context(), "preview cache purged", observe.F("entries", n))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.withRequestID(w, r)
		res, err := h.admin.AuthenticateKey(ctx, h.admin.KeyFromRequest(r))
		if err != nil || !res.Authenticated {
			writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "unauthorized"})
			return
		}
		h.svc.Logger().Debug(ctx, "admin request", observe.F("principal", res.Principal), observe.F("path", r.URL.Path))
		next(w, r.WithContext(ctx))
	}
}

// withRequestID echoes the caller's request id or generates one.
func (h *Handler) withRequestID(w http.ResponseWriter, r *http.Request) context.Context {
	id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	return observe.WithRequestID(r.Context(), id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// clientIP returns the host part of RemoteAddr. Proxy headers are
// expected to have been applied to RemoteAddr by middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
