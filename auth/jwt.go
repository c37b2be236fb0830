package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT token authenticator.
type JWTConfig struct {
	// Secret is the HS256 signing key.
	Secret []byte

	// Issuer is set on issued tokens and required on verified ones (optional).
	Issuer string

	// TTL bounds the lifetime of issued tokens. Zero issues tokens without exp.
	TTL time.Duration

	// Leeway tolerates clock skew when validating exp/iat.
	// Default: 30 seconds
	Leeway time.Duration
}

// contentClaims binds a JWT to the SHA-256 digest of the content.
type contentClaims struct {
	Digest string `json:"dig"`
	jwt.RegisteredClaims
}

// JWTAuthenticator issues and verifies HS256 tokens whose "dig" claim is
// the hex SHA-256 of the content.
type JWTAuthenticator struct {
	config JWTConfig
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(config JWTConfig) (*JWTAuthenticator, error) {
	if len(config.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if len(config.Secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	// Apply defaults
	if config.Leeway <= 0 {
		config.Leeway = 30 * time.Second
	}

	return &JWTAuthenticator{config: config}, nil
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string {
	return string(MethodJWT)
}

// Supports returns true for compact JWS strings.
func (a *JWTAuthenticator) Supports(token string) bool {
	return strings.Count(token, ".") == 2
}

// Sign issues a token for content.
func (a *JWTAuthenticator) Sign(content string) (string, error) {
	now := time.Now()
	claims := contentClaims{
		Digest: contentDigest(content),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   a.config.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if a.config.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.config.TTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.config.Secret)
}

// Authenticate validates the signature, expiry and issuer, then compares
// the digest claim with the digest of content in constant time.
func (a *JWTAuthenticator) Authenticate(_ context.Context, content, token string) (*Result, error) {
	if token == "" {
		return Success(MethodAnonymous), nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.config.Leeway),
	}
	if a.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.config.Issuer))
	}

	claims := &contentClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return a.config.Secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Failure(ErrTokenExpired, MethodJWT), nil
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return Failure(ErrTokenMismatch, MethodJWT), nil
		default:
			return Failure(ErrTokenMalformed, MethodJWT), nil
		}
	}

	if claims.Digest == "" || !ConstantTimeCompare(claims.Digest, contentDigest(content)) {
		return Failure(ErrTokenMismatch, MethodJWT), nil
	}
	return Success(MethodJWT), nil
}

func contentDigest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Ensure JWTAuthenticator implements TokenAuthenticator and Signer
var (
	_ TokenAuthenticator = (*JWTAuthenticator)(nil)
	_ Signer             = (*JWTAuthenticator)(nil)
)
