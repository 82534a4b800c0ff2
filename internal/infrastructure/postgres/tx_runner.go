package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool (o una tx, que anida con savepoints).
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunForOwner igual que Run, pero serializa los cambios estructurales de un mismo proveedor
// con un advisory lock de transacción. Proveedores distintos no se bloquean entre sí.
func (r *TxRunner) RunForOwner(ctx context.Context, ownerID string, fn func(tx pgx.Tx) error) error {
	return r.Run(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "categories:"+ownerID); err != nil {
			return fmt.Errorf("lock owner: %w", err)
		}
		return fn(tx)
	})
}
