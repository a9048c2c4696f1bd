package jwt

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	errs "github.com/techagentng/bookclub/errors"
)

// Blacklist reports tokens revoked before their expiry.
type Blacklist interface {
	TokenInBlacklist(token string) bool
}

// Gate resolves bearer tokens to user ids. The request middleware and the
// socket handshake both go through Authenticate.
type Gate struct {
	secret    string
	blacklist Blacklist
}

func NewGate(secret string, blacklist Blacklist) *Gate {
	return &Gate{secret: secret, blacklist: blacklist}
}

// Authenticate fails with an auth error for a missing, malformed, expired or revoked token.
func (g *Gate) Authenticate(token string) (uuid.UUID, error) {
	claims, err := ValidateAndGetClaims(token, g.secret)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingToken):
			return uuid.Nil, errs.Auth("Unauthorized")
		case errors.Is(err, ErrExpiredToken):
			return uuid.Nil, errs.Auth("Token has expired")
		default:
			return uuid.Nil, errs.Auth("Invalid token")
		}
	}
	if g.blacklist != nil && g.blacklist.TokenInBlacklist(token) {
		return uuid.Nil, errs.Auth("Token has been revoked")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, errs.Auth("Invalid token")
	}
	return userID, nil
}

// Claims returns the verified claims of token, used by logout to read the expiry.
func (g *Gate) Claims(token string) (*Claims, error) {
	claims, err := ValidateAndGetClaims(token, g.secret)
	if err != nil {
		return nil, errs.Auth("Invalid token")
	}
	return claims, nil
}
