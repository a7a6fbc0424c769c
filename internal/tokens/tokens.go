package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/pkg/middleware"
)

// Claims carried by locally issued access tokens. Subject is the user's ObjectID hex.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed HS256 access token for the user.
func GenerateAccessToken(cfg config.JWTConfig, u *models.User) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.Hex(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Secret))
}

// Verifier validates locally issued tokens.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// token exposes verified claims through the middleware.Token interface.
type token struct {
	claims jwt.MapClaims
}

func (t *token) Claims(v interface{}) error {
	switch out := v.(type) {
	case *map[string]interface{}:
		*out = t.claims
		return nil
	case *jwt.MapClaims:
		*out = t.claims
		return nil
	}
	return fmt.Errorf("unsupported claims type %T", v)
}

// Parse validates raw and returns its claims.
func (v *Verifier) Parse(raw string) (jwt.MapClaims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}

// Verify implements middleware.Verifier.
func (v *Verifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims, err := v.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &token{claims: claims}, nil
}

// RemainingTTL reports how long raw stays valid; zero when it cannot be parsed or has expired.
func (v *Verifier) RemainingTTL(raw string) time.Duration {
	claims, err := v.Parse(raw)
	if err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	if d := time.Until(exp.Time); d > 0 {
		return d
	}
	return 0
}
