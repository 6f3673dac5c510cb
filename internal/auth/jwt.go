package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidClient = errors.New("invalid client credentials")
	ErrInvalidToken  = errors.New("invalid token")
)

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 tokens for API clients
type TokenService struct {
	secret       []byte
	clientSecret []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service. Clients exchange clientSecret for a token signed with secret.
func NewTokenService(secret, clientSecret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret:       []byte(secret),
		clientSecret: []byte(clientSecret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// IssueToken returns a token for clientID when secret matches the shared client secret
func (s *TokenService) IssueToken(clientID, secret string) (string, time.Time, error) {
	if clientID == "" || subtle.ConstantTimeCompare([]byte(secret), s.clientSecret) != 1 {
		return "", time.Time{}, ErrInvalidClient
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &JWTClaims{
		ClientID: clientID,
		Role:     "client",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *TokenService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
