package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrInvalidIdentityToken indicates a malformed, unsigned or foreign token.
	ErrInvalidIdentityToken = errors.New("invalid identity token")
	// ErrExpiredIdentityToken indicates the token is past its expiry.
	ErrExpiredIdentityToken = errors.New("identity token expired")
)

// IdentityClaims are the claims issued by the authentication service for a signed-in user.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *IdentityClaims) UserID() string {
	return c.Subject
}

// IdentityVerifier validates HS256 identity tokens shared with the authentication service.
type IdentityVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIdentityVerifier constructs a verifier. An empty issuer disables the issuer check.
func NewIdentityVerifier(secret, issuer string) (*IdentityVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("identity token secret is required")
	}
	return &IdentityVerifier{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Verify parses and validates the token, returning its claims.
func (v *IdentityVerifier) Verify(token string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredIdentityToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentityToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidIdentityToken
	}
	return claims, nil
}

// Issue signs a token for userID. Used by local tooling and tests; production tokens come from the authentication service.
func (v *IdentityVerifier) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := IdentityClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}
