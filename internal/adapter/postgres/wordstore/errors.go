package wordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

// mapError converts pgx/pgconn errors to domain errors. Everything that is
// not a context error also matches domain.ErrStorage, which callers treat as
// a cache miss.
func mapError(err error, op, word string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("word cache %s %q: %w", op, word, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("word cache %s %q: %w: %w", op, word, domain.ErrStorage, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("word cache %s %q: %w: %w", op, word, domain.ErrStorage, domain.ErrAlreadyExists)
		case "23514", "22P02": // check_violation, invalid_text_representation
			return fmt.Errorf("word cache %s %q: %w: %w", op, word, domain.ErrStorage, domain.ErrValidation)
		}
	}

	return fmt.Errorf("word cache %s %q: %w: %w", op, word, domain.ErrStorage, err)
}
