// Package token issues and parses the signed bearer credentials handed to
// mobile clients. Tokens are compact HS256 JWTs; expiry is left to callers.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the validity window stamped on freshly issued tokens.
const DefaultTTL = 30 * 24 * time.Hour

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
)

// Claims is the token payload. JSON keys match the payload the mobile client
// already understands.
type Claims struct {
	Subject   int64  `json:"userId"`
	Email     string `json:"email"`
	Issuer    string `json:"iss,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (c Claims) GetIssuer() (string, error) {
	return c.Issuer, nil
}

func (c Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewCodec(secret string, issuer string, ttl time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// SetClock replaces the clock used by Issue.
func (c *Codec) SetClock(now func() time.Time) {
	c.now = now
}

// Issue stamps issuer, issued-at and expiry on a new set of claims and encodes them.
func (c *Codec) Issue(subject int64, email string) (string, Claims, error) {
	issuedAt := c.now().Unix()
	claims := Claims{
		Subject:   subject,
		Email:     email,
		Issuer:    c.issuer,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + int64(c.ttl/time.Second),
	}

	signed, err := c.Encode(claims)
	if err != nil {
		return "", Claims{}, err
	}

	return signed, claims, nil
}

func (c *Codec) Encode(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Decode verifies the signature and returns the payload. It does not look at exp.
func (c *Codec) Decode(raw string) (Claims, error) {
	if strings.Count(raw, ".") != 2 {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	_, err := c.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return claims, nil
}
