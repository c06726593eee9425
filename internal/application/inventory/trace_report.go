package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/bakery-ops/internal/domain"
)

// TraceReportUseCase arma el reporte de trazabilidad de un lote a partir del libro.
type TraceReportUseCase struct {
	ledger    *Ledger
	generator TraceReportGenerator
}

// NewTraceReportUseCase construye el caso de uso.
func NewTraceReportUseCase(ledger *Ledger, generator TraceReportGenerator) *TraceReportUseCase {
	return &TraceReportUseCase{ledger: ledger, generator: generator}
}

// Generate devuelve el reporte del lote. Lote desconocido: domain.ErrNotFound.
func (uc *TraceReportUseCase) Generate(_ context.Context, lotID string) ([]byte, error) {
	lot, ok, err := uc.ledger.Lot(lotID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	txns, err := uc.ledger.TransactionsForLot(lotID)
	if err != nil {
		return nil, err
	}
	out, err := uc.generator.GenerateLotTrace(lot, txns)
	if err != nil {
		return nil, fmt.Errorf("reporte de trazabilidad %s: %w", lotID, err)
	}
	return out, nil
}
