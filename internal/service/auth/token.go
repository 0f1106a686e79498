package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SignToken issues an HS256 token in the identity service's format. The
// server never calls it; cmd/devtoken and tests do.
func SignToken(secret string, learnerID uuid.UUID, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		LearnerID: learnerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   learnerID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
