// Command devtoken prints a bearer token for local development. It signs
// with the same secret the server verifies with, so the learner it names
// can call the API without an identity service.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/service/auth"
	"github.com/google/uuid"
)

func main() {
	secret := flag.String("secret", os.Getenv("PLANNER_AUTH_JWT_SECRET"), "signing secret (defaults to PLANNER_AUTH_JWT_SECRET)")
	learner := flag.String("learner", "", "learner ID; a random one is generated when empty")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	token, learnerID, err := issue(*secret, *learner, *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Learner: %s\nToken: %s\n", learnerID, token)
}

func issue(secret, learner string, ttl time.Duration, now time.Time) (string, uuid.UUID, error) {
	if len(secret) < auth.MinSecretLength {
		return "", uuid.Nil, fmt.Errorf("secret must be at least %d characters", auth.MinSecretLength)
	}
	if ttl <= 0 {
		return "", uuid.Nil, fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	learnerID := uuid.New()
	if learner != "" {
		var err error
		if learnerID, err = uuid.Parse(learner); err != nil {
			return "", uuid.Nil, fmt.Errorf("invalid learner ID %q: %w", learner, err)
		}
	}

	token, err := auth.SignToken(secret, learnerID, now, ttl)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("signing token: %w", err)
	}
	return token, learnerID, nil
}
