package jwt

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Strategy defines which signing algorithm family to use.
type Strategy string

const StrategyHMAC Strategy = "hmac"

// Options configures the token manager.
type Options struct {
	Strategy Strategy

	// Secret is the shared HMAC key, at least 32 bytes.
	Secret []byte

	// Algorithm is "HS256" (default), "HS384" or "HS512".
	Algorithm string

	// Issuer is the default "iss" claim and, when set, the only issuer
	// Verify accepts.
	Issuer string

	Audience []string

	// TTL determines the "exp" claim. Zero means tokens do not expire.
	TTL time.Duration
}

// Claims are the registered claims plus the OAuth-style space-delimited
// "scope" claim, held here as a slice.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	NotBefore time.Time
	ID        string
	Scopes    []string
}

// HasScope reports whether the token grants scope. An empty scope is always
// granted.
func (c *Claims) HasScope(scope string) bool {
	if scope == "" {
		return true
	}
	if c == nil {
		return false
	}
	return slices.Contains(c.Scopes, scope)
}

// ParseScopes splits a space-delimited scope claim.
func ParseScopes(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Signer creates signed JWT tokens. Implementations must be safe for
// concurrent use.
type Signer interface {
	Sign(ctx context.Context, claims Claims) (string, error)
}

// Verifier validates and parses JWT tokens. Implementations must be safe for
// concurrent use.
type Verifier interface {
	Verify(ctx context.Context, tokenString string) (*Claims, error)
}

type TokenManager interface {
	Signer
	Verifier
}

func New(opts Options) (TokenManager, error) {
	switch opts.Strategy {
	case StrategyHMAC, "":
		return NewHMAC(opts)
	default:
		return nil, fmt.Errorf("jwt: unknown strategy %q", opts.Strategy)
	}
}
