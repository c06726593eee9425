package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de lote.
const (
	LotTxnTypeReceive  = "receive"  // recepción
	LotTxnTypeIssue    = "issue"    // consumo / salida
	LotTxnTypeTransfer = "transfer" // traslado (par salida/entrada)
	LotTxnTypeAdjust   = "adjust"   // ajuste de conteo
)

// LotTxnRef referencia opcional al documento que originó el movimiento.
// Son claves foráneas opacas: no se valida su existencia.
type LotTxnRef struct {
	PurchaseOrderID string
	WorkOrderID     string
	SalesOrderID    string
}

// LotTransaction registro inmutable de un evento que afecta la cantidad de un lote.
type LotTransaction struct {
	ID    string
	LotID string
	Ts    time.Time
	Type  string
	// Qty es la cantidad registrada (positivo entrada, negativo salida).
	// En ajustes es el delta solicitado, aunque se haya recortado en cero.
	Qty decimal.Decimal
	// AppliedQty es el efecto real sobre QtyOnHand.
	AppliedQty decimal.Decimal
	Ref        *LotTxnRef
	Notes      string
}

// Clone devuelve una copia sin punteros compartidos.
func (t LotTransaction) Clone() LotTransaction {
	if t.Ref != nil {
		ref := *t.Ref
		t.Ref = &ref
	}
	return t
}
