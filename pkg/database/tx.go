package database

import (
	"context"
	"fmt"
)

// TxRunner executes a function inside a database transaction. Services
// depend on this interface so multi-row operations stay atomic while
// unit tests can substitute a pass-through implementation.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(q Querier) error) error
}

type scopeTxRunner struct{}

// NewTxRunner creates a TxRunner that opens transactions on the
// project-scoped connection from the context.
func NewTxRunner() TxRunner {
	return &scopeTxRunner{}
}

var _ TxRunner = (*scopeTxRunner)(nil)

func (scopeTxRunner) WithTx(ctx context.Context, fn func(q Querier) error) error {
	scope, ok := GetProjectScope(ctx)
	if !ok {
		return fmt.Errorf("no project scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
