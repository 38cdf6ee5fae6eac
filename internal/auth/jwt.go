// Package auth verifies the bearer tokens issued by the hosted identity
// provider and exposes the signed-in user to handlers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/core/common"
)

var ErrInvalidToken = fmt.Errorf("invalid token: %w", common.ErrUnauthenticated)

// Identity is the signed-in user as asserted by a verified token.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens signed with the identity provider's secret.
type Verifier struct {
	secret   []byte
	audience string
	issuer   string
}

func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{
		secret:   []byte(cfg.JWTSecret),
		audience: cfg.Audience,
		issuer:   cfg.Issuer,
	}
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("jwt secret: %w", common.ErrMisconfigured)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// Sign issues a token for userID. Used by the token command and tests.
func (v *Verifier) Sign(userID, email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("jwt secret: %w", common.ErrMisconfigured)
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}

	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
