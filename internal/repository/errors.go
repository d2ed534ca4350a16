package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// isUniqueViolation recognises duplicate-key failures from both supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func conflict(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}
