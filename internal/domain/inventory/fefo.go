package inventory

import (
	"sort"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// fefoLess ordena por vencimiento ascendente; los lotes sin vencimiento van al final
// (se tratan como que nunca vencen, menor prioridad de consumo).
func fefoLess(a, b entity.Lot) bool {
	switch {
	case a.Expiration == nil:
		return false
	case b.Expiration == nil:
		return true
	default:
		return a.Expiration.Before(*b.Expiration)
	}
}

// SortFEFO ordena una copia de los lotes en orden FEFO. Empates conservan el orden de entrada.
func SortFEFO(lots []entity.Lot) []entity.Lot {
	out := cloneLots(lots)
	sort.SliceStable(out, func(i, j int) bool { return fefoLess(out[i], out[j]) })
	return out
}

// fefoCandidates índices de los lotes del SKU con existencia, en orden FEFO.
func fefoCandidates(lots []entity.Lot, skuID string) []int {
	idx := make([]int, 0, len(lots))
	for i, l := range lots {
		if l.SKUID == skuID && l.QtyOnHand.IsPositive() {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool { return fefoLess(lots[idx[i]], lots[idx[j]]) })
	return idx
}
