package postgres

import (
	"context"
	"fmt"
)

// TxManager runs callbacks inside a transaction carried by the context.
// Repositories pick it up through QuerierFromCtx. Nesting is not supported:
// an inner RunInTx opens an independent transaction.
type TxManager struct {
	db DB
}

// NewTxManager creates a TxManager over db.
func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx commits when fn returns nil and rolls back on error or panic.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	finished := false
	defer func() {
		if !finished {
			// fn panicked.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	fnErr := fn(withTx(ctx, tx))
	finished = true

	if fnErr != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, fnErr)
		}
		return fnErr
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
