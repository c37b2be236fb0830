package auth

import "errors"

// Sentinel errors for token verification and API keys.
var (
	// Token errors
	ErrTokenMismatch    = errors.New("auth: token does not match content")
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrUnsupportedToken = errors.New("auth: no authenticator supports token")
	ErrMissingSecret    = errors.New("auth: signing secret is empty")
	ErrSecretTooShort   = errors.New("auth: signing secret is too short")

	// API key errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)
