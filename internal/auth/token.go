package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 12 * time.Hour

// ErrInvalidToken is the single rejection a verify can produce. Malformed,
// forged, and expired tokens are deliberately indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity payload carried inside a token. Claims are
// immutable once issued; expiry rides in the registered "exp" field.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a process-wide symmetric
// key. It is constructed once at startup and is safe for concurrent use;
// the key is never mutated afterwards.
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec decodes the base64-encoded app secret into the signing key.
// A secret that does not decode is a startup failure.
func NewCodec(base64Secret string, ttl time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode app secret: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("app secret is empty")
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{key: key, ttl: ttl}, nil
}

// Issue signs a token for the given user, expiring after the codec's TTL.
func (c *Codec) Issue(userID, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims. Every
// failure mode collapses into ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
