package inventory

import (
	"time"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Estrategias de consumo.
const (
	StrategyFEFO   = "FEFO"
	StrategyManual = "manual"
)

// ReceiveInput datos de una recepción. ReceivedTs nil = instante del comando.
type ReceiveInput struct {
	SKUID      string
	LotCode    string
	QtyOnHand  decimal.Decimal
	LocationID string
	Expiration *time.Time
	Supplier   string
	ReceivedTs *time.Time
}

// Selection par lote→cantidad para consumo manual.
type Selection struct {
	LotID string
	Qty   decimal.Decimal
}

// IssueParams solicitud de consumo. Strategy vacío = FEFO.
// En modo manual solo se consideran los lotes de Selections.
type IssueParams struct {
	SKUID      string
	Qty        decimal.Decimal
	Strategy   string
	Selections []Selection
	Ref        *entity.LotTxnRef
}

// Receive crea un lote nuevo y su transacción de recepción.
// La cantidad se toma en valor absoluto para que lote y transacción cuadren.
func Receive(s State, in ReceiveInput, st Stamp) State {
	qty := in.QtyOnHand.Abs()
	received := st.Now
	if in.ReceivedTs != nil {
		received = *in.ReceivedTs
	}
	lot := entity.Lot{
		ID:         st.NewID(),
		SKUID:      in.SKUID,
		LotCode:    in.LotCode,
		QtyOnHand:  qty,
		LocationID: in.LocationID,
		Supplier:   in.Supplier,
		ReceivedTs: received,
	}
	if in.Expiration != nil {
		exp := *in.Expiration
		lot.Expiration = &exp
	}
	txn := entity.LotTransaction{
		ID:         st.NewID(),
		LotID:      lot.ID,
		Ts:         st.Now,
		Type:       entity.LotTxnTypeReceive,
		Qty:        qty,
		AppliedQty: qty,
	}
	return State{
		Lots:         append(cloneLots(s.Lots), lot),
		Transactions: prepend([]entity.LotTransaction{txn}, s.Transactions),
	}
}

// Issue consume existencia de los lotes candidatos en orden hasta cubrir p.Qty.
// Si no alcanza, consume lo disponible sin error: el faltante se obtiene comparando
// lo solicitado con la suma de las transacciones emitidas (ver SummarizeIssue).
func Issue(s State, p IssueParams, st Stamp) State {
	if !p.Qty.IsPositive() {
		return s
	}
	lots := cloneLots(s.Lots)
	manual := p.Strategy == StrategyManual

	var candidates []int
	var selected map[string]decimal.Decimal
	if manual {
		selected = make(map[string]decimal.Decimal, len(p.Selections))
		for _, sel := range p.Selections {
			if _, dup := selected[sel.LotID]; !dup {
				selected[sel.LotID] = sel.Qty
			}
		}
		for i, l := range lots {
			if _, ok := selected[l.ID]; ok {
				candidates = append(candidates, i)
			}
		}
	} else {
		candidates = fefoCandidates(lots, p.SKUID)
	}

	remaining := p.Qty
	var emitted []entity.LotTransaction
	for _, i := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, lots[i].QtyOnHand)
		if manual {
			take = decimal.Min(take, decimal.Max(decimal.Zero, selected[lots[i].ID]))
		}
		if !take.IsPositive() {
			continue
		}
		lots[i].QtyOnHand = lots[i].QtyOnHand.Sub(take)
		remaining = remaining.Sub(take)

		txn := entity.LotTransaction{
			ID:         st.NewID(),
			LotID:      lots[i].ID,
			Ts:         st.Now,
			Type:       entity.LotTxnTypeIssue,
			Qty:        take.Neg(),
			AppliedQty: take.Neg(),
		}
		if p.Ref != nil {
			ref := *p.Ref
			txn.Ref = &ref
		}
		emitted = append(emitted, txn)
	}
	if len(emitted) == 0 {
		return s
	}
	return State{Lots: lots, Transactions: prepend(emitted, s.Transactions)}
}

// Transfer mueve hasta min(qty, existencia) a un lote nuevo en la ubicación destino,
// conservando SKU, código, vencimiento, proveedor y fecha de recepción.
// Lote inexistente o cantidad efectiva cero: estado sin cambios.
func Transfer(s State, lotID, toLocationID string, qty decimal.Decimal, st Stamp) State {
	src, idx, ok := s.FindLot(lotID)
	if !ok {
		return s
	}
	amount := decimal.Min(qty, src.QtyOnHand)
	if !amount.IsPositive() {
		return s
	}

	lots := cloneLots(s.Lots)
	lots[idx].QtyOnHand = src.QtyOnHand.Sub(amount)

	dest := src.Clone()
	dest.ID = st.NewID()
	dest.LocationID = toLocationID
	dest.QtyOnHand = amount
	lots = append(lots, dest)

	out := entity.LotTransaction{
		ID: st.NewID(), LotID: src.ID, Ts: st.Now, Type: entity.LotTxnTypeTransfer,
		Qty: amount.Neg(), AppliedQty: amount.Neg(),
	}
	in := entity.LotTransaction{
		ID: st.NewID(), LotID: dest.ID, Ts: st.Now, Type: entity.LotTxnTypeTransfer,
		Qty: amount, AppliedQty: amount,
	}
	return State{Lots: lots, Transactions: prepend([]entity.LotTransaction{in, out}, s.Transactions)}
}

// Adjust aplica delta a la existencia con piso en cero. La transacción registra el delta
// solicitado en Qty y el efecto real en AppliedQty. Lote inexistente: estado sin cambios.
func Adjust(s State, lotID string, delta decimal.Decimal, notes string, st Stamp) State {
	lot, idx, ok := s.FindLot(lotID)
	if !ok {
		return s
	}
	newQty := decimal.Max(decimal.Zero, lot.QtyOnHand.Add(delta))

	lots := cloneLots(s.Lots)
	lots[idx].QtyOnHand = newQty

	txn := entity.LotTransaction{
		ID:         st.NewID(),
		LotID:      lotID,
		Ts:         st.Now,
		Type:       entity.LotTxnTypeAdjust,
		Qty:        delta,
		AppliedQty: newQty.Sub(lot.QtyOnHand),
		Notes:      notes,
	}
	return State{Lots: lots, Transactions: prepend([]entity.LotTransaction{txn}, s.Transactions)}
}
