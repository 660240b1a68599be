package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-pulse/domain"
	"chat-pulse/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID int  `json:"user_id"`
	Guest  bool `json:"guest"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates the bearer tokens handed out after
// registration and login. The secret comes from configuration.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
}

func NewTokenIssuer(secret string, duration time.Duration) TokenIssuer {
	return TokenIssuer{secret: []byte(secret), duration: duration}
}

// Generate creates a signed JWT for a specific user.
func (t TokenIssuer) Generate(userID domain.UserID, guest bool) (string, error) {
	expirationTime := time.Now().Add(t.duration)

	claims := &CustomClaims{
		UserID: int(userID),
		Guest:  guest,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-pulse",
		},
	}

	// HS256, HMAC with SHA256.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Validate parses and validates the signature and expiration of a JWT string.
func (t TokenIssuer) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, errors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.ErrInvalidToken
}
