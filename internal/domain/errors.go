package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDifficulty is returned when a difficulty is not easy, medium or hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidAction is returned when a reward action is not recognised.
	ErrInvalidAction = errors.New("invalid reward action")

	// ErrAlreadyCompleted is returned when completing a topic that is already completed.
	ErrAlreadyCompleted = errors.New("topic already completed")

	// ErrNotYetCompleted is returned when reviewing a topic that has not been completed.
	ErrNotYetCompleted = errors.New("topic not yet completed")

	// ErrInconsistentTopic is returned when a topic's lifecycle fields disagree
	// with its state.
	ErrInconsistentTopic = errors.New("topic state is inconsistent")
)
