package auth

import "context"

// Method indicates how a request was authenticated.
type Method string

const (
	MethodAnonymous Method = "anonymous"
	MethodHMAC      Method = "hmac"
	MethodJWT       Method = "jwt"
	MethodAPIKey    Method = "api_key"
	MethodComposite Method = "composite"
)

// TokenAuthenticator verifies that a token was issued for content.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Tokens: an empty token yields an anonymous success.
// - Errors: Authenticate returns (nil, error) for internal errors;
//   returns (Result, nil) for verification failures (check result.Authenticated).
type TokenAuthenticator interface {
	// Name returns a unique identifier for this authenticator.
	Name() string

	// Supports returns true if the token has the shape this authenticator issues.
	Supports(token string) bool

	// Authenticate recomputes the token for content and compares it.
	Authenticate(ctx context.Context, content, token string) (*Result, error)
}

// Signer issues tokens for content. Trusted callers attach the token to
// preview requests as the "h" parameter.
type Signer interface {
	Sign(content string) (string, error)
}

// Result is the outcome of a verification attempt.
type Result struct {
	// Authenticated is true if verification succeeded.
	Authenticated bool

	// Method indicates which mechanism produced the result.
	Method Method

	// Principal identifies the caller for API key results.
	Principal string

	// Error is the verification error (only if Authenticated=false).
	Error error
}

// Anonymous reports whether the request carried no token.
func (r *Result) Anonymous() bool {
	return r != nil && r.Authenticated && r.Method == MethodAnonymous
}

// Success creates a successful result.
func Success(method Method) *Result {
	return &Result{
		Authenticated: true,
		Method:        method,
	}
}

// Failure creates a failed result.
func Failure(err error, method Method) *Result {
	return &Result{
		Authenticated: false,
		Error:         err,
		Method:        method,
	}
}

// Verify is a boolean convenience around Authenticate. Internal errors
// count as a rejection.
func Verify(ctx context.Context, a TokenAuthenticator, content, token string) bool {
	res, err := a.Authenticate(ctx, content, token)
	if err != nil || res == nil {
		return false
	}
	return res.Authenticated
}
