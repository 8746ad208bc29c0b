package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced to the service layer for expected constraint
// violations. Anything else from the driver propagates unchanged.
var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrDuplicateToken = errors.New("refresh token value already exists")
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
