// Package inventory contiene la lógica pura del libro de lotes: cada comando es una
// función (estado, comando) -> nuevo estado que nunca modifica el estado recibido.
package inventory

import (
	"time"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// State instantánea del libro de lotes.
// Lots conserva el orden de alta; Transactions va de la más reciente a la más antigua.
type State struct {
	Lots         []entity.Lot
	Transactions []entity.LotTransaction
}

// Stamp agrupa lo que una transición lee del entorno: el instante y el generador de ids.
type Stamp struct {
	Now   time.Time
	NewID func() string
}

// Clone devuelve una copia profunda del estado.
func (s State) Clone() State {
	out := State{}
	if s.Lots != nil {
		out.Lots = make([]entity.Lot, len(s.Lots))
		for i, l := range s.Lots {
			out.Lots[i] = l.Clone()
		}
	}
	if s.Transactions != nil {
		out.Transactions = make([]entity.LotTransaction, len(s.Transactions))
		for i, t := range s.Transactions {
			out.Transactions[i] = t.Clone()
		}
	}
	return out
}

// FindLot busca un lote por id y devuelve su posición.
func (s State) FindLot(id string) (entity.Lot, int, bool) {
	for i, l := range s.Lots {
		if l.ID == id {
			return l, i, true
		}
	}
	return entity.Lot{}, -1, false
}

// LotsBySKU devuelve los lotes de un SKU en orden de alta.
func (s State) LotsBySKU(skuID string) []entity.Lot {
	var out []entity.Lot
	for _, l := range s.Lots {
		if l.SKUID == skuID {
			out = append(out, l.Clone())
		}
	}
	return out
}

// TransactionsForLot historial de un lote, más reciente primero.
func (s State) TransactionsForLot(lotID string) []entity.LotTransaction {
	var out []entity.LotTransaction
	for _, t := range s.Transactions {
		if t.LotID == lotID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Available suma la existencia de todos los lotes de un SKU.
func (s State) Available(skuID string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lots {
		if l.SKUID == skuID {
			total = total.Add(l.QtyOnHand)
		}
	}
	return total
}

// NewSince devuelve las transacciones que next agregó sobre prev.
// Válido porque el registro solo crece por la cabeza.
func NewSince(prev, next State) []entity.LotTransaction {
	n := len(next.Transactions) - len(prev.Transactions)
	if n <= 0 {
		return nil
	}
	out := make([]entity.LotTransaction, n)
	for i := 0; i < n; i++ {
		out[i] = next.Transactions[i].Clone()
	}
	return out
}

func cloneLots(lots []entity.Lot) []entity.Lot {
	out := make([]entity.Lot, len(lots))
	for i, l := range lots {
		out[i] = l.Clone()
	}
	return out
}

func prepend(head []entity.LotTransaction, tail []entity.LotTransaction) []entity.LotTransaction {
	out := make([]entity.LotTransaction, 0, len(head)+len(tail))
	out = append(out, head...)
	return append(out, tail...)
}
