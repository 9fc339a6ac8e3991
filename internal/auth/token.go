// Package auth issues and validates session tokens for guest and registered owners.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

// ErrInvalidToken is returned for malformed, expired or forged tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the owner snapshot; the subject is the user id
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Type  user.Type `json:"type"`
}

// Owner returns the owner snapshot carried by the token
func (c *Claims) Owner() user.Owner {
	return user.Owner{Email: c.Email, Name: c.Name, Type: c.Type}
}

// IsGuest reports whether the session belongs to a guest
func (c *Claims) IsGuest() bool {
	return c.Type == user.TypeGuest
}

// Issuer signs and parses HS256 session tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer; tokens expire after ttl
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for u
func (i *Issuer) Issue(u *user.User) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email: u.Email,
		Name:  u.Name,
		Type:  u.Type,
	})
	return token.SignedString(i.secret)
}

// Parse validates tokenString and returns its claims
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, ErrInvalidToken
	}
	if _, ok := user.ParseType(string(claims.Type)); !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
