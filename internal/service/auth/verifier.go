// Package auth verifies bearer tokens issued by the external identity
// service. The planner never issues tokens itself.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/config"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

// Claims is the verified identity carried by a token.
type Claims struct {
	// LearnerID comes from the "uid" claim, or from "sub" when uid is absent.
	LearnerID uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	// Verify checks the signature and time claims of token and extracts
	// the learner it was issued for.
	Verify(ctx context.Context, token string) (*Claims, error)
}

type tokenClaims struct {
	LearnerID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

type hmacVerifier struct {
	signingKey []byte
	clockSkew  time.Duration
	timeFunc   func() time.Time
}

var _ TokenVerifier = (*hmacVerifier)(nil)

// NewVerifier creates an HS256 token verifier.
func NewVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	return newVerifier(cfg, time.Now)
}

func newVerifier(cfg config.AuthConfig, timeFunc func() time.Time) (*hmacVerifier, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	return &hmacVerifier{
		signingKey: []byte(cfg.JWTSecret),
		clockSkew:  time.Duration(cfg.ClockSkewSeconds) * time.Second,
		timeFunc:   timeFunc,
	}, nil
}

func (v *hmacVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := v.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token rejected: expired")
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token rejected: not yet valid")
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token rejected", "error", err, "error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	raw := claims.LearnerID
	if raw == "" {
		raw = claims.Subject
	}
	learnerID, err := uuid.Parse(raw)
	if err != nil || learnerID == uuid.Nil {
		log.Debug("token rejected: no learner id", "subject", claims.Subject)
		return nil, ErrMissingLearner
	}

	out := &Claims{
		LearnerID: learnerID,
		Subject:   claims.Subject,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
