package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/elskow/registry-auth/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims binds a bearer token to a session. The session itself is the source
// of truth; the token expiry only mirrors its initial TTL.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	config *config.AuthConfig
	ttl    time.Duration
}

func NewTokenIssuer(config *config.AuthConfig, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		config: config,
		ttl:    ttl,
	}
}

// Enabled reports whether bearer tokens are minted and enforced.
func (i *TokenIssuer) Enabled() bool {
	return i.config.EnforceSessions && i.config.JWTSecret != ""
}

func (i *TokenIssuer) Issue(sessionID, accountID string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.config.JWTSecret))
}

func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(i.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
