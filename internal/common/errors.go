package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer = errors.New("internal server error")

	// Competition-semantic errors. Each one is a distinct, expected
	// outcome a submitter may see; they are never collapsed into a
	// generic message.
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeClosed   = errors.New("challenge is not open")
	ErrChallengeBroken   = errors.New("challenge is broken")
	ErrAlreadySolved     = errors.New("already solved by your team")
	ErrTemporarilyLocked = errors.New("challenge cannot be solved right now")

	// ErrStorageUnavailable marks a persistence-layer failure. It must
	// stay distinguishable from every competition-semantic error, in
	// particular it is never reported as an incorrect flag.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrChallengeNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadySolved) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrChallengeClosed) || errors.Is(err, ErrChallengeBroken) {
		return http.StatusLocked
	}
	if errors.Is(err, ErrTemporarilyLocked) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return http.StatusServiceUnavailable
	}

	// Check for pgx specific errors (example for unique constraint)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == UniqueViolationCode {
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// UniqueViolationCode is the Postgres error code for a unique-constraint
// violation, used by repositories to detect first-writer-wins races.
const UniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolationCode
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
