package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is raised when a learner, subject, topic or ledger
	// entry is inserted with an ID that already exists.
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is raised when a row points at a learner or
	// subject that does not exist.
	foreignKeyViolationCode = "23503"

	// checkViolationCode is raised by the schema's CHECK constraints, such
	// as the non-negative balance and the subject date range.
	checkViolationCode = "23514"

	// notNullViolationCode is raised when a required column is missing.
	notNullViolationCode = "23502"
)

// MapError maps a database error to a store error, keeping the original
// error in the message. Every store funnels its driver errors through it,
// so callers only ever match on store sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	// Constraint violations become invalid-entity errors naming the
	// constraint or column.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	// Anything else, such as a lost connection, passes through unchanged.
	return err
}

// mapEntityError is MapError with a specific sentinel for missing rows and
// for foreign key violations, which here always mean a missing parent.
func mapEntityError(err error, notFound, missingParent error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if missingParent != nil && IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", missingParent, err)
	}
	return MapError(err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
// Learner creation uses it to report ErrLearnerExists.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// IsCheckConstraintViolation checks if the given error is a PostgreSQL check constraint violation.
// AddPoints uses it to detect a balance that would go negative.
func IsCheckConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == checkViolationCode
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE matched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}
	return nil
}
