// Package preview renders QR previews on demand and serves them from a
// content-addressed cache.
//
// A request flows through five stages before the encoder is ever called:
//
//  1. Validator rejects empty, oversized or unrepresentable content.
//  2. A [auth.TokenAuthenticator] checks the optional integrity token.
//  3. Normalizer maps loosely typed options to a canonical RenderOptions.
//  4. The content and canonical options are hashed into a cache key.
//  5. The cache collapses concurrent misses for the key into one render.
//
// Service runs the pipeline. Handler adapts it to HTTP, adding ETags,
// per-client rate limiting for untokened callers and admin endpoints.
//
// Malformed options never fail a request; they fall back to defaults or
// are clamped. Malformed content and forged tokens always do, and never
// reach the cache or the encoder.
package preview
