// Package auth verifies integrity tokens that bind a preview request to
// the exact content a trusted caller vouched for.
//
// A token is recomputed from the content with a server-held secret and
// compared in constant time. Requests without a token are anonymous; a
// present token that does not match is a rejection. HMAC-SHA256 hex tokens
// are the default, HS256 JWTs carrying a content digest are supported for
// callers that need expiry. API keys guard operator endpoints.
package auth
