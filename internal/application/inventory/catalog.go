package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// Catalog maestro de SKUs y ubicaciones cargado al arranque. Es de solo lectura:
// el libro acepta recepciones de SKUs y ubicaciones que no estén aquí.
type Catalog struct {
	ledger    *Ledger
	skus      []entity.Sku
	locations []entity.Location
}

// SkuStock SKU del catálogo con su existencia actual en el libro.
type SkuStock struct {
	entity.Sku
	Available decimal.Decimal
	LotCount  int
}

// NewCatalog construye el catálogo sobre el libro.
func NewCatalog(ledger *Ledger, skus []entity.Sku, locations []entity.Location) *Catalog {
	return &Catalog{
		ledger:    ledger,
		skus:      append([]entity.Sku(nil), skus...),
		locations: append([]entity.Location(nil), locations...),
	}
}

// SKUs lista los SKUs del catálogo con su existencia.
func (c *Catalog) SKUs() ([]SkuStock, error) {
	out := make([]SkuStock, 0, len(c.skus))
	for _, s := range c.skus {
		st, err := c.stock(s)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// SKU busca un SKU por id.
func (c *Catalog) SKU(id string) (SkuStock, bool, error) {
	for _, s := range c.skus {
		if s.ID == id {
			st, err := c.stock(s)
			return st, err == nil, err
		}
	}
	return SkuStock{}, false, nil
}

// Locations lista las ubicaciones del catálogo.
func (c *Catalog) Locations() []entity.Location {
	return append([]entity.Location(nil), c.locations...)
}

func (c *Catalog) stock(s entity.Sku) (SkuStock, error) {
	lots, err := c.ledger.LotsBySKU(s.ID)
	if err != nil {
		return SkuStock{}, err
	}
	available, err := c.ledger.Available(s.ID)
	if err != nil {
		return SkuStock{}, err
	}
	return SkuStock{Sku: s, Available: available, LotCount: len(lots)}, nil
}
