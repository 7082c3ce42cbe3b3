package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vkurushin/wordchain/internal/repository"
)

// Postgres error classes the engine and handlers act on.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wrapErr attaches context and maps constraint failures onto the
// repository sentinels so callers can branch with errors.Is without
// importing lib/pq.
func wrapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, repository.ErrUniqueViolation)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, repository.ErrForeignKeyViolation)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
