package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcastano/entregas-api/internal/application/fulfillment"
	"github.com/jcastano/entregas-api/internal/application/ledger"
	"github.com/jcastano/entregas-api/internal/domain/repository"
)

// Ensure TxRunner implements fulfillment.TxRunner and ledger.TxRunner.
var _ fulfillment.TxRunner = (*TxRunner)(nil)
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Lo usa la reconciliación de ventas: el GetForUpdate
// del repo de ventas bloquea la fila dentro de esta tx.
func (r *TxRunner) Run(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	deliveryRepo repository.DeliveryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saleRepo := NewSaleRepository(tx)
	deliveryRepo := NewDeliveryRepository(tx)

	if err := fn(saleRepo, deliveryRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSerialized inicia una transacción tomando primero un advisory lock
// por transportista (pg_advisory_xact_lock sobre hashtext del id). Dos
// asientos concurrentes del mismo transportista quedan en fila, así el
// último saldo leído sigue siendo el último al escribir el nuevo
// movimiento. El lock se libera solo al terminar la transacción.
func (r *TxRunner) RunSerialized(ctx context.Context, carrierID string, fn func(
	movRepo repository.CarrierMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, carrierID); err != nil {
		return fmt.Errorf("advisory lock transportista: %w", err)
	}

	if err := fn(NewCarrierMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
