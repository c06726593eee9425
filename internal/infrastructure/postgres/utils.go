package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// Querier abstrae pool y tx para que el diario escriba igual dentro o fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// nullIfEmpty convierte "" en NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// refColumns separa la referencia opcional de una transacción en sus tres columnas.
func refColumns(ref *entity.LotTxnRef) (po, wo, so *string) {
	if ref == nil {
		return nil, nil, nil
	}
	return nullIfEmpty(ref.PurchaseOrderID), nullIfEmpty(ref.WorkOrderID), nullIfEmpty(ref.SalesOrderID)
}
