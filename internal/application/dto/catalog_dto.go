package dto

import (
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// SkuResponse SKU del catálogo con su existencia.
type SkuResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UOM       string          `json:"uom"`
	Type      string          `json:"type,omitempty"`
	Available decimal.Decimal `json:"available"`
	LotCount  int             `json:"lot_count"`
}

// LocationResponse ubicación física.
type LocationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FromSkuStock mapea un SKU del catálogo.
func FromSkuStock(s appinventory.SkuStock) SkuResponse {
	return SkuResponse{ID: s.ID, Name: s.Name, UOM: s.UOM, Type: s.Type, Available: s.Available, LotCount: s.LotCount}
}

// FromSkuStocks mapea una lista (nunca nil).
func FromSkuStocks(ss []appinventory.SkuStock) []SkuResponse {
	out := make([]SkuResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, FromSkuStock(s))
	}
	return out
}

// FromLocations mapea ubicaciones (nunca nil).
func FromLocations(ls []entity.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, LocationResponse{ID: l.ID, Name: l.Name})
	}
	return out
}
