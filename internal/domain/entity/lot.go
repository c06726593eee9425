package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa una recepción trazable de un SKU en una ubicación.
// QtyOnHand nunca es negativo; un lote en cero se conserva para trazabilidad.
type Lot struct {
	ID         string
	SKUID      string
	LotCode    string // etiqueta humana, no es única entre SKUs
	QtyOnHand  decimal.Decimal
	LocationID string
	Expiration *time.Time // nil = sin vencimiento
	Supplier   string
	ReceivedTs time.Time
}

// Clone devuelve una copia sin punteros compartidos.
func (l Lot) Clone() Lot {
	if l.Expiration != nil {
		exp := *l.Expiration
		l.Expiration = &exp
	}
	return l
}

// Sku describe un artículo inventariable (insumo o producto terminado).
type Sku struct {
	ID   string
	Name string
	UOM  string
	Type string // ingredient | finished
}

// Location es un sitio físico donde se almacenan lotes.
type Location struct {
	ID   string
	Name string
}
