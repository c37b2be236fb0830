package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/qrpreview/auth"
	"github.com/jonwraymond/qrpreview/cache"
	"github.com/jonwraymond/qrpreview/observe"
	"github.com/jonwraymond/qrpreview/resilience"
)

// probeContent is rendered by Probe. It never touches the cache.
const probeContent = "qrpreview-probe"

// Config configures a Service. Zero fields take defaults.
type Config struct {
	// Limits bounds content length, width and margin.
	Limits Limits

	// Defaults are the options used for absent or invalid fields.
	// Zero value: DefaultOptions()
	Defaults RenderOptions

	// Authenticator verifies integrity tokens. When nil, requests without
	// a token are accepted and every token is rejected.
	Authenticator auth.TokenAuthenticator

	// Keyer derives cache keys. Default: cache.NewDefaultKeyer("")
	Keyer cache.Keyer

	// Executor bounds encoder calls. A nil executor calls the encoder directly.
	Executor *resilience.Executor

	// Middleware instruments encoder calls. Default: no-op telemetry.
	Middleware *observe.Middleware
}

// RenderResult is a rendered preview, served from cache or freshly encoded.
type RenderResult struct {
	Artifact []byte
	Format   Format
	Key      cache.Key
	Options  RenderOptions
	Outcome  cache.Outcome
}

// Cached reports whether this caller did not run the encoder itself.
func (r RenderResult) Cached() bool {
	return r.Outcome != cache.OutcomeComputed
}

// Job is a validated, authenticated and keyed request, ready to run.
type Job struct {
	content string

	Options RenderOptions
	Key     cache.Key
	Auth    *auth.Result
}

// ContentLen returns the content length in bytes.
func (j Job) ContentLen() int {
	return len(j.content)
}

// ETag returns a strong entity tag derived from the cache key.
func (j Job) ETag() string {
	k := string(j.Key)
	if i := strings.LastIndexByte(k, ':'); i >= 0 {
		k = k[i+1:]
	}
	if len(k) > 16 {
		k = k[:16]
	}
	return `"` + k + `"`
}

// Service runs the preview pipeline.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: every returned error is an *Error; use KindOf to classify.
//   - Ownership: RenderResult.Artifact is a copy owned by the caller.
type Service struct {
	validator  *Validator
	normalizer *Normalizer
	auth       auth.TokenAuthenticator
	keyer      cache.Keyer
	store      *cache.Store
	encoder    Encoder
	executor   *resilience.Executor
	formatter  *Formatter
	mw         *observe.Middleware
	metrics    observe.Metrics
	logger     observe.Logger
}

// NewService creates a service around store and encoder. The formatter's
// Cache-Control max-age follows the store TTL.
func NewService(store *cache.Store, encoder Encoder, cfg Config) (*Service, error) {
	if store == nil || encoder == nil {
		return nil, ErrMissingDependency
	}

	if cfg.Defaults == (RenderOptions{}) {
		cfg.Defaults = DefaultOptions()
	}
	if cfg.Authenticator == nil {
		cfg.Authenticator = anonymousOnly{}
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer("")
	}
	if cfg.Middleware == nil {
		cfg.Middleware = observe.NewMiddleware(nil, nil, nil)
	}

	limits := cfg.Limits.WithDefaults()
	s := &Service{
		validator:  NewValidator(limits.MaxContentBytes),
		normalizer: NewNormalizer(cfg.Defaults, limits),
		auth:       cfg.Authenticator,
		keyer:      cfg.Keyer,
		store:      store,
		encoder:    encoder,
		executor:   cfg.Executor,
		formatter:  NewFormatter(store.Policy().TTL),
		mw:         cfg.Middleware,
		metrics:    cfg.Middleware.Metrics(),
		logger:     cfg.Middleware.Logger(),
	}

	if err := s.metrics.ObserveCache(s.CacheSnapshot); err != nil {
		return nil, fmt.Errorf("preview: observe cache: %w", err)
	}
	return s, nil
}

// Render runs the full pipeline for req.
func (s *Service) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	job, err := s.Prepare(ctx, req)
	if err != nil {
		return RenderResult{}, err
	}
	return s.Run(ctx, job)
}

// Prepare validates, authenticates, normalizes and keys req. It never
// touches the cache or the encoder.
func (s *Service) Prepare(ctx context.Context, req RenderRequest) (Job, error) {
	content := req.Content()

	if res := s.validator.Validate(content); !res.Valid {
		return Job{}, newError(KindBadRequest, "invalid data", res.Reason, ErrInvalidContent)
	}

	if req.HasToken() && strings.TrimSpace(req.Token()) == "" {
		return Job{}, newError(KindBadRequest, "invalid integrity token", "token is empty", ErrInvalidToken)
	}

	ar, err := s.auth.Authenticate(ctx, content, req.Token())
	if err != nil {
		return Job{}, newError(KindUnknown, "token verification failed", "", err)
	}
	if !ar.Authenticated {
		cause := ErrInvalidToken
		if ar.Error != nil {
			cause = fmt.Errorf("%w: %w", ErrInvalidToken, ar.Error)
		}
		return Job{}, newError(KindBadRequest, "invalid integrity token", "", cause)
	}

	opts := s.normalizer.Normalize(req.options)
	if res := ValidateCapacity(content, opts.ErrorCorrection); !res.Valid {
		return Job{}, newError(KindBadRequest, "invalid data", res.Reason, ErrInvalidContent)
	}

	return Job{
		content: content,
		Options: opts,
		Key:     s.keyer.Key(content, opts.Canonical()),
		Auth:    ar,
	}, nil
}

// Run serves job from the cache, rendering it at most once concurrently
// on a miss.
func (s *Service) Run(ctx context.Context, job Job) (RenderResult, error) {
	entry, outcome, err := s.store.GetOrCompute(ctx, job.Key, func(ctx context.Context) (cache.Entry, error) {
		body, err := s.encode(ctx, job.content, job.Options, string(job.Key))
		if err != nil {
			return cache.Entry{}, err
		}
		return cache.Entry{Artifact: body, Format: string(job.Options.Format)}, nil
	})
	if err != nil {
		return RenderResult{}, s.classify(ctx, job, err)
	}

	s.metrics.RecordCacheLookup(ctx, outcome != cache.OutcomeComputed)

	return RenderResult{
		Artifact: entry.Artifact,
		Format:   job.Options.Format,
		Key:      job.Key,
		Options:  job.Options,
		Outcome:  outcome,
	}, nil
}

// Respond formats result for the HTTP layer.
func (s *Service) Respond(result RenderResult) (Response, error) {
	resp, err := s.formatter.Format(result)
	if err != nil {
		return Response{}, newError(KindEncodingFailure, "failed to render preview", "", err)
	}
	return resp, nil
}

// Probe renders a fixed payload with the default options, bypassing the
// cache. It runs under the executor timeout only: its failures are not
// counted by the circuit breaker and it takes no bulkhead slot.
func (s *Service) Probe(ctx context.Context) error {
	_, err := s.encodeWith(ctx, s.executor.ExecuteTimed, probeContent, s.normalizer.Defaults(), "")
	return err
}

// encode calls the encoder under the executor and converts its output to
// a raw body, so malformed output fails the flight and is never cached.
func (s *Service) encode(ctx context.Context, content string, opts RenderOptions, key string) ([]byte, error) {
	return s.encodeWith(ctx, s.executor.Execute, content, opts, key)
}

func (s *Service) encodeWith(ctx context.Context, run func(context.Context, func(context.Context) error) error, content string, opts RenderOptions, key string) ([]byte, error) {
	meta := observe.RenderMeta{
		Format:     string(opts.Format),
		ECL:        string(opts.ErrorCorrection),
		Width:      opts.Width,
		Margin:     opts.Margin,
		ContentLen: len(content),
		Key:        key,
	}
	render := s.mw.Wrap(func(ctx context.Context, _ observe.RenderMeta) ([]byte, error) {
		artifact, err := s.encoder.Encode(ctx, content, opts)
		if err != nil {
			return nil, err
		}
		return Body(opts.Format, artifact)
	})

	var body []byte
	err := run(ctx, func(ctx context.Context) error {
		var err error
		body, err = render(ctx, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Service) classify(ctx context.Context, job Job, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return newError(KindUnknown, "request cancelled", "", err)
	}

	level := s.logger.Error
	if resilience.IsOverload(err) {
		level = s.logger.Warn
	}
	level(ctx, "preview request failed",
		observe.F("content_len", job.ContentLen()),
		observe.F("options", job.Options.String()),
		observe.F("format", string(job.Options.Format)),
		observe.F("key", string(job.Key)),
		observe.F("error", err.Error()),
	)

	if !errors.Is(err, ErrMalformedArtifact) {
		err = fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return newError(KindEncodingFailure, "failed to render preview", "", err)
}

// CacheSnapshot reports store gauges for telemetry.
func (s *Service) CacheSnapshot() observe.CacheSnapshot {
	st := s.store.Stats()
	return observe.CacheSnapshot{
		Entries:     int64(st.Entries),
		Bytes:       st.Bytes,
		Evictions:   st.Evictions,
		Expirations: st.Expirations,
	}
}

// Store returns the backing cache.
func (s *Service) Store() *cache.Store { return s.store }

// Executor returns the encoder executor, which may be nil.
func (s *Service) Executor() *resilience.Executor { return s.executor }

// Normalizer returns the option normalizer.
func (s *Service) Normalizer() *Normalizer { return s.normalizer }

// Formatter returns the response formatter.
func (s *Service) Formatter() *Formatter { return s.formatter }

// Metrics returns the telemetry recorder.
func (s *Service) Metrics() observe.Metrics { return s.metrics }

// Logger returns the service logger.
func (s *Service) Logger() observe.Logger { return s.logger }

// Signer returns the authenticator as a Signer, if it can sign.
func (s *Service) Signer() (auth.Signer, bool) {
	signer, ok := s.auth.(auth.Signer)
	return signer, ok
}

// anonymousOnly accepts untokened requests and rejects every token.
type anonymousOnly struct{}

func (anonymousOnly) Name() string         { return string(auth.MethodAnonymous) }
func (anonymousOnly) Supports(string) bool { return false }
func (anonymousOnly) Authenticate(_ context.Context, _, token string) (*auth.Result, error) {
	if token == "" {
		return auth.Success(auth.MethodAnonymous), nil
	}
	return auth.Failure(auth.ErrUnsupportedToken, auth.MethodAnonymous), nil
}
