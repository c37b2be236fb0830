package auth

import "context"

// CompositeAuthenticator dispatches a token to the first authenticator
// that supports its shape.
type CompositeAuthenticator struct {
	// Authenticators is the ordered list of authenticators to try.
	Authenticators []TokenAuthenticator
}

// NewCompositeAuthenticator creates a composite authenticator.
func NewCompositeAuthenticator(auths ...TokenAuthenticator) *CompositeAuthenticator {
	return &CompositeAuthenticator{Authenticators: auths}
}

// Name returns "composite".
func (c *CompositeAuthenticator) Name() string {
	return string(MethodComposite)
}

// Supports returns true if any authenticator supports the token.
func (c *CompositeAuthenticator) Supports(token string) bool {
	for _, a := range c.Authenticators {
		if a.Supports(token) {
			return true
		}
	}
	return false
}

// Authenticate verifies the token with the first supporting authenticator.
// A token no authenticator recognizes is a failure, not an anonymous call.
func (c *CompositeAuthenticator) Authenticate(ctx context.Context, content, token string) (*Result, error) {
	if token == "" {
		return Success(MethodAnonymous), nil
	}

	for _, a := range c.Authenticators {
		if !a.Supports(token) {
			continue
		}
		return a.Authenticate(ctx, content, token)
	}

	return Failure(ErrUnsupportedToken, MethodComposite), nil
}

// Sign issues a token with the first authenticator that can sign.
func (c *CompositeAuthenticator) Sign(content string) (string, error) {
	for _, a := range c.Authenticators {
		if s, ok := a.(Signer); ok {
			return s.Sign(content)
		}
	}
	return "", ErrUnsupportedToken
}

// Ensure CompositeAuthenticator implements TokenAuthenticator and Signer
var (
	_ TokenAuthenticator = (*CompositeAuthenticator)(nil)
	_ Signer             = (*CompositeAuthenticator)(nil)
)
