package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// MinSecretLength is the minimum accepted signing secret length in bytes.
const MinSecretLength = 16

// HMACConfig configures the HMAC token authenticator.
type HMACConfig struct {
	// Secret is the server-held signing key.
	Secret []byte

	// TokenBytes is how many bytes of the MAC are kept in the token.
	// Default: 32 (full SHA-256). Values below 16 are raised to 16.
	TokenBytes int
}

// HMACAuthenticator issues and verifies hex HMAC-SHA256 tokens over the
// raw content bytes.
type HMACAuthenticator struct {
	secret     []byte
	tokenBytes int
}

// NewHMACAuthenticator creates an HMAC authenticator.
func NewHMACAuthenticator(config HMACConfig) (*HMACAuthenticator, error) {
	if len(config.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if len(config.Secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	// Apply defaults
	if config.TokenBytes <= 0 || config.TokenBytes > sha256.Size {
		config.TokenBytes = sha256.Size
	}
	if config.TokenBytes < 16 {
		config.TokenBytes = 16
	}

	secret := make([]byte, len(config.Secret))
	copy(secret, config.Secret)

	return &HMACAuthenticator{
		secret:     secret,
		tokenBytes: config.TokenBytes,
	}, nil
}

// Name returns "hmac".
func (a *HMACAuthenticator) Name() string {
	return string(MethodHMAC)
}

// Supports returns true for lower-case hex strings of the configured
// token length, the form Sign produces.
func (a *HMACAuthenticator) Supports(token string) bool {
	if len(token) != 2*a.tokenBytes {
		return false
	}
	for i := 0; i < len(token); i++ {
		if !isLowerHex(token[i]) {
			return false
		}
	}
	return true
}

// Sign returns the token for content.
func (a *HMACAuthenticator) Sign(content string) (string, error) {
	return a.compute(content), nil
}

// Authenticate recomputes the MAC for content and compares it to token
// byte for byte in constant time. The token must be exactly what Sign
// returned: no case folding or whitespace trimming is applied.
func (a *HMACAuthenticator) Authenticate(_ context.Context, content, token string) (*Result, error) {
	if token == "" {
		return Success(MethodAnonymous), nil
	}

	expected := a.compute(content)
	if !ConstantTimeCompare(token, expected) {
		return Failure(ErrTokenMismatch, MethodHMAC), nil
	}
	return Success(MethodHMAC), nil
}

func (a *HMACAuthenticator) compute(content string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil)[:a.tokenBytes])
}

// ConstantTimeCompare performs constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isLowerHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}

// Ensure HMACAuthenticator implements TokenAuthenticator and Signer
var (
	_ TokenAuthenticator = (*HMACAuthenticator)(nil)
	_ Signer             = (*HMACAuthenticator)(nil)
)
