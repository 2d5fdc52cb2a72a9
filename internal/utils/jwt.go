package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"

	"github.com/iliyamo/edu-leads/internal/model"
)

// SessionClaims is the payload of an admin session token. The subject
// (sub) carries the admin ID and the token ID (jti) identifies the token
// for revocation.
// ExpiresAtMillis is the exact expiry in Unix milliseconds; exp is that
// instant rounded up to the next whole second.
type SessionClaims struct {
	Username        string `json:"username"`
	Role            string `json:"role"`
	ExpiresAtMillis int64  `json:"exp_ms"`
	jwt.RegisteredClaims
}

// Principal returns the identity embedded in the claims.
func (c *SessionClaims) Principal() model.Principal {
	return model.Principal{AdminID: c.Subject, Username: c.Username, Role: c.Role}
}

// Expiry is the instant the token stops being valid.
func (c *SessionClaims) Expiry() time.Time {
	return time.UnixMilli(c.ExpiresAtMillis).UTC()
}

// SessionToken is a signed token along with its ID and expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	ID    string    // jti claim
	Exp   time.Time // UTC expiration time
}

var errEmptySecret = errors.New("empty signing secret")

// NewSessionToken builds and signs an HS256 JWT for an admin that expires
// exactly ttl after now, at millisecond precision.
func NewSessionToken(secret string, p model.Principal, ttl time.Duration, now time.Time) (SessionToken, error) {
	if secret == "" {
		return SessionToken{}, errEmptySecret
	}
	iat := now.UTC().Truncate(time.Millisecond)
	exp := iat.Add(ttl)
	id := uuid.NewString()
	claims := SessionClaims{
		Username:        p.Username,
		Role:            p.Role,
		ExpiresAtMillis: exp.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   p.AdminID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp.Add(time.Second - time.Nanosecond)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: id, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of raw as of now. A
// token is rejected once now reaches its exact expiry.
func ParseSessionToken(secret, raw string, now time.Time) (*SessionClaims, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &SessionClaims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" || claims.ExpiresAtMillis == 0 {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if !now.Before(claims.Expiry()) {
		return nil, jwt.ErrTokenExpired
	}
	return claims, nil
}
