package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/pkg/logger"
	"github.com/quillpress/blog-api/pkg/metrics"
)

const (
	ClaimsKey   = "claims"
	IdentityKey = "identity"
	TokenKey    = "token"

	msgNotAuthorized = "Not authorized to access this route"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// IdentityResolver maps verified claims to the caller. It fails when the account no longer exists.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims map[string]interface{}) (models.Identity, error)
}

// Revocations reports whether a raw access token has been revoked.
type Revocations interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// AuthOption configures AuthMiddleware.
type AuthOption func(*authConfig)

type authConfig struct {
	revoked Revocations
}

// WithRevocations rejects tokens present in r.
func WithRevocations(r Revocations) AuthOption {
	return func(c *authConfig) { c.revoked = r }
}

// Chain tries each verifier in order and returns the first success.
func Chain(vs ...Verifier) Verifier {
	return chain(vs)
}

type chain []Verifier

func (ch chain) Verify(ctx context.Context, raw string) (Token, error) {
	errs := make([]error, 0, len(ch))
	for _, v := range ch {
		if v == nil {
			continue
		}
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no verifier configured")
	}
	return nil, errors.Join(errs...)
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// AuthMiddleware returns a Gin middleware that admits requests carrying a valid Bearer token
// for an existing account. Every rejection is a 401 with the same message.
func AuthMiddleware(ver Verifier, resolver IdentityResolver, opts ...AuthOption) gin.HandlerFunc {
	cfg := authConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	reject := func(c *gin.Context, reason string, err error) {
		metrics.AuthFailures.WithLabelValues(reason).Inc()
		if err != nil {
			logger.Debugf("auth rejected (%s): %v", reason, err)
		}
		apierr.Abort(c, apierr.Unauthenticated(msgNotAuthorized))
	}
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			reject(c, "missing_token", nil)
			return
		}
		ctx := c.Request.Context()

		if cfg.revoked != nil {
			revoked, err := cfg.revoked.Contains(ctx, token)
			if err != nil {
				logger.Warnf("blacklist lookup failed: %v", err)
			}
			if revoked {
				reject(c, "revoked", nil)
				return
			}
		}

		verified, err := ver.Verify(ctx, token)
		if err != nil {
			reject(c, "invalid_token", err)
			return
		}
		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			reject(c, "bad_claims", err)
			return
		}
		id, err := resolver.ResolveIdentity(ctx, claims)
		if err != nil {
			reject(c, "unknown_user", err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(IdentityKey, id)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// IdentityFrom returns the caller admitted by AuthMiddleware.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

// ClaimsFrom returns the verified token claims.
func ClaimsFrom(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(ClaimsKey); ok {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

// RawToken returns the bearer token admitted by AuthMiddleware.
func RawToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, raw string) (Token, error)

func (f VerifierFunc) Verify(ctx context.Context, raw string) (Token, error) { return f(ctx, raw) }
