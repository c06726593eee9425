package inventory

import (
	"context"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// Journal refleja fuera del proceso los cambios del libro de lotes (auditoría de solo anexado).
// Recibe los lotes tocados por el comando y las transacciones nuevas, más reciente primero.
type Journal interface {
	RecordLotChanges(ctx context.Context, lots []entity.Lot, txns []entity.LotTransaction) error
}

// TraceReportGenerator genera el reporte de trazabilidad de un lote (PDF u otro formato binario).
type TraceReportGenerator interface {
	GenerateLotTrace(lot entity.Lot, txns []entity.LotTransaction) ([]byte, error)
}
