package inventory

import (
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Discrepancy lote cuya existencia no coincide con su historial.
type Discrepancy struct {
	LotID     string
	QtyOnHand decimal.Decimal
	TxnTotal  decimal.Decimal
}

// Reconcile verifica que cada lote tenga QtyOnHand igual a la suma de AppliedQty
// de sus transacciones. Devuelve los lotes que no cuadran (vacío si todo cuadra).
func Reconcile(s State) []Discrepancy {
	totals := make(map[string]decimal.Decimal, len(s.Lots))
	for _, t := range s.Transactions {
		totals[t.LotID] = totals[t.LotID].Add(t.AppliedQty)
	}
	var out []Discrepancy
	for _, l := range s.Lots {
		if !l.QtyOnHand.Equal(totals[l.ID]) {
			out = append(out, Discrepancy{LotID: l.ID, QtyOnHand: l.QtyOnHand, TxnTotal: totals[l.ID]})
		}
	}
	return out
}

// IssueSummary resultado de un consumo: lo solicitado, lo emitido y el faltante.
type IssueSummary struct {
	Requested    decimal.Decimal
	Issued       decimal.Decimal
	Shortfall    decimal.Decimal
	Transactions []entity.LotTransaction
}

// Partial indica si el consumo no cubrió lo solicitado.
func (s IssueSummary) Partial() bool { return s.Shortfall.IsPositive() }

// SummarizeIssue calcula el resumen a partir de las transacciones de consumo emitidas.
func SummarizeIssue(requested decimal.Decimal, emitted []entity.LotTransaction) IssueSummary {
	issued := decimal.Zero
	var txns []entity.LotTransaction
	for _, t := range emitted {
		if t.Type != entity.LotTxnTypeIssue {
			continue
		}
		issued = issued.Add(t.Qty.Neg())
		txns = append(txns, t)
	}
	shortfall := decimal.Max(decimal.Zero, requested.Sub(issued))
	return IssueSummary{Requested: requested, Issued: issued, Shortfall: shortfall, Transactions: txns}
}
