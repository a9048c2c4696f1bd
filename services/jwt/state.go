package jwt

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const stateTTL = 10 * time.Minute

const stateAudience = "oauth-state"

// GenerateState signs a short lived value for the OAuth state parameter.
func GenerateState(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret key is missing")
	}
	now := time.Now()
	claims := jwt.StandardClaims{
		Id:        uuid.NewString(),
		Audience:  stateAudience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(stateTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyState rejects a state that was not issued by GenerateState or has expired.
func VerifyState(state, secret string) error {
	if state == "" {
		return ErrMissingToken
	}
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	if !claims.VerifyAudience(stateAudience, true) {
		return ErrInvalidToken
	}
	return nil
}
