// File: internal/infra/identity/jwt_verifier.go
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"content-paywall/internal/config"
	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/adapter"
)

var _ adapter.IdentityVerifier = (*JWTVerifier)(nil)

// Claims carried in tokens minted by the identity service. Expiry uses the
// registered `exp` claim; signature is HS256 over a shared secret.
type Claims struct {
	Active bool `json:"active"`
	Admin  bool `json:"admin"`
	jwt.RegisteredClaims
}

type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(cfg *config.IdentityConfig) *JWTVerifier {
	return &JWTVerifier{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}
}

func (v *JWTVerifier) IdentityFromToken(ctx context.Context, token string) (*model.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &model.Identity{
		UserID:   claims.Subject,
		IsActive: claims.Active,
		IsAdmin:  claims.Admin,
	}, nil
}

// Mint signs a token for the given identity. Only tests and dev tooling call
// this; production tokens come from the identity service itself.
func (v *JWTVerifier) Mint(id model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Active: id.IsActive,
		Admin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
