package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MinSecretLength is the shortest HS256 secret NewTokens accepts.
const MinSecretLength = 32

// Claims is the payload of an access token. Only sub, iat and exp are set.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens. It holds no mutable state
// after construction and is safe for concurrent use.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokensOption configures Tokens.
type TokensOption func(*Tokens)

// WithClock replaces time.Now for issuing and for expiry checks.
func WithClock(now func() time.Time) TokensOption {
	return func(t *Tokens) { t.now = now }
}

// NewTokens returns a token issuer/verifier bound to secret.
func NewTokens(secret string, ttl time.Duration, opts ...TokensOption) (*Tokens, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	t := &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(t.now),
	)
	return t, nil
}

// TTL is the lifetime of every issued token.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for userID with exp = iat + TTL.
func (t *Tokens) Issue(userID bson.ObjectID) (string, error) {
	if userID.IsZero() {
		return "", fmt.Errorf("%w: zero user id", ErrGenAccessToken)
	}

	iat := t.now().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenAccessToken, err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// The error wraps exactly one of ErrTokenMalformed, ErrTokenSignature or
// ErrTokenExpired.
func (t *Tokens) Verify(raw string) (bson.ObjectID, error) {
	var claims Claims
	_, err := t.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return bson.NilObjectID, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return bson.NilObjectID, fmt.Errorf("%w: %w", ErrTokenSignature, err)
		default:
			return bson.NilObjectID, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}

	id, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: subject: %w", ErrTokenMalformed, err)
	}
	return id, nil
}
