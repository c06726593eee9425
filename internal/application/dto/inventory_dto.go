package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
)

// DateLayout formato de fechas de vencimiento en el API.
const DateLayout = "2006-01-02"

// LotDTO lote en respuestas.
type LotDTO struct {
	ID         string          `json:"id"`
	SKUID      string          `json:"sku_id"`
	LotCode    string          `json:"lot_code"`
	QtyOnHand  decimal.Decimal `json:"qty_on_hand"`
	LocationID string          `json:"location_id"`
	Expiration *string         `json:"expiration,omitempty"` // YYYY-MM-DD
	Supplier   string          `json:"supplier,omitempty"`
	ReceivedTs time.Time       `json:"received_ts"`
}

// LotTxnRefDTO referencia a documento de origen.
type LotTxnRefDTO struct {
	PurchaseOrderID string `json:"purchase_order_id,omitempty"`
	WorkOrderID     string `json:"work_order_id,omitempty"`
	SalesOrderID    string `json:"sales_order_id,omitempty"`
}

// LotTransactionDTO transacción de lote en respuestas.
// qty es lo registrado; applied_qty lo aplicado al lote (difieren en ajustes recortados).
type LotTransactionDTO struct {
	ID         string          `json:"id"`
	LotID      string          `json:"lot_id"`
	Ts         time.Time       `json:"ts"`
	Type       string          `json:"type"`
	Qty        decimal.Decimal `json:"qty"`
	AppliedQty decimal.Decimal `json:"applied_qty"`
	Ref        *LotTxnRefDTO   `json:"ref,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// ReceiveLotRequest body para POST /api/inventory/lots.
type ReceiveLotRequest struct {
	SKUID      string          `json:"sku_id"`
	LotCode    string          `json:"lot_code"`
	QtyOnHand  decimal.Decimal `json:"qty_on_hand"`
	LocationID string          `json:"location_id"`
	Expiration string          `json:"expiration,omitempty"` // YYYY-MM-DD o RFC3339
	Supplier   string          `json:"supplier,omitempty"`
	ReceivedTs *time.Time      `json:"received_ts,omitempty"`
}

// ReceiveLotResponse lote creado y su transacción.
type ReceiveLotResponse struct {
	Lot         LotDTO            `json:"lot"`
	Transaction LotTransactionDTO `json:"transaction"`
}

// SelectionDTO lote y cantidad elegidos en consumo manual.
type SelectionDTO struct {
	LotID string          `json:"lot_id"`
	Qty   decimal.Decimal `json:"qty"`
}

// IssueRequest body para POST /api/inventory/issues. strategy: FEFO (defecto) o manual.
type IssueRequest struct {
	SKUID      string          `json:"sku_id"`
	Qty        decimal.Decimal `json:"qty"`
	Strategy   string          `json:"strategy,omitempty"`
	Selections []SelectionDTO  `json:"selections,omitempty"`
	Ref        *LotTxnRefDTO   `json:"ref,omitempty"`
}

// IssueResponse resultado del consumo. partial=true cuando shortfall > 0.
type IssueResponse struct {
	Requested    decimal.Decimal     `json:"requested"`
	Issued       decimal.Decimal     `json:"issued"`
	Shortfall    decimal.Decimal     `json:"shortfall"`
	Partial      bool                `json:"partial"`
	Transactions []LotTransactionDTO `json:"transactions"`
}

// TransferRequest body para POST /api/inventory/lots/:id/transfer.
type TransferRequest struct {
	ToLocationID string          `json:"to_location_id"`
	Qty          decimal.Decimal `json:"qty"`
}

// AdjustRequest body para POST /api/inventory/lots/:id/adjust.
type AdjustRequest struct {
	Delta decimal.Decimal `json:"delta"`
	Notes string          `json:"notes,omitempty"`
}

// LotChangeResponse lotes tocados por un comando y las transacciones emitidas (vacías = sin efecto).
type LotChangeResponse struct {
	Lots         []LotDTO            `json:"lots"`
	Transactions []LotTransactionDTO `json:"transactions"`
}

// AvailabilityDTO existencia total de un SKU.
type AvailabilityDTO struct {
	SKUID     string          `json:"sku_id"`
	Available decimal.Decimal `json:"available"`
	Lots      []LotDTO        `json:"lots"`
}

// ParseDate acepta YYYY-MM-DD o RFC3339. Vacío = nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ToReceiveInput convierte el body en la entrada del libro.
func (r ReceiveLotRequest) ToReceiveInput() (invdomain.ReceiveInput, error) {
	exp, err := ParseDate(r.Expiration)
	if err != nil {
		return invdomain.ReceiveInput{}, err
	}
	return invdomain.ReceiveInput{
		SKUID:      r.SKUID,
		LotCode:    r.LotCode,
		QtyOnHand:  r.QtyOnHand,
		LocationID: r.LocationID,
		Expiration: exp,
		Supplier:   r.Supplier,
		ReceivedTs: r.ReceivedTs,
	}, nil
}

// ToIssueParams convierte el body en la solicitud de consumo.
func (r IssueRequest) ToIssueParams() invdomain.IssueParams {
	p := invdomain.IssueParams{SKUID: r.SKUID, Qty: r.Qty, Strategy: r.Strategy}
	for _, s := range r.Selections {
		p.Selections = append(p.Selections, invdomain.Selection{LotID: s.LotID, Qty: s.Qty})
	}
	if r.Ref != nil {
		p.Ref = &entity.LotTxnRef{
			PurchaseOrderID: r.Ref.PurchaseOrderID,
			WorkOrderID:     r.Ref.WorkOrderID,
			SalesOrderID:    r.Ref.SalesOrderID,
		}
	}
	return p
}

// FromLot mapea un lote.
func FromLot(l entity.Lot) LotDTO {
	out := LotDTO{
		ID:         l.ID,
		SKUID:      l.SKUID,
		LotCode:    l.LotCode,
		QtyOnHand:  l.QtyOnHand,
		LocationID: l.LocationID,
		Supplier:   l.Supplier,
		ReceivedTs: l.ReceivedTs,
	}
	if l.Expiration != nil {
		d := l.Expiration.Format(DateLayout)
		out.Expiration = &d
	}
	return out
}

// FromLots mapea una lista de lotes (nunca nil).
func FromLots(lots []entity.Lot) []LotDTO {
	out := make([]LotDTO, 0, len(lots))
	for _, l := range lots {
		out = append(out, FromLot(l))
	}
	return out
}

// FromLotTransaction mapea una transacción.
func FromLotTransaction(t entity.LotTransaction) LotTransactionDTO {
	out := LotTransactionDTO{
		ID:         t.ID,
		LotID:      t.LotID,
		Ts:         t.Ts,
		Type:       t.Type,
		Qty:        t.Qty,
		AppliedQty: t.AppliedQty,
		Notes:      t.Notes,
	}
	if t.Ref != nil {
		out.Ref = &LotTxnRefDTO{
			PurchaseOrderID: t.Ref.PurchaseOrderID,
			WorkOrderID:     t.Ref.WorkOrderID,
			SalesOrderID:    t.Ref.SalesOrderID,
		}
	}
	return out
}

// FromLotTransactions mapea una lista de transacciones (nunca nil).
func FromLotTransactions(txns []entity.LotTransaction) []LotTransactionDTO {
	out := make([]LotTransactionDTO, 0, len(txns))
	for _, t := range txns {
		out = append(out, FromLotTransaction(t))
	}
	return out
}

// FromIssueSummary mapea el resumen de consumo.
func FromIssueSummary(s invdomain.IssueSummary) IssueResponse {
	return IssueResponse{
		Requested:    s.Requested,
		Issued:       s.Issued,
		Shortfall:    s.Shortfall,
		Partial:      s.Partial(),
		Transactions: FromLotTransactions(s.Transactions),
	}
}
