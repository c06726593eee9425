package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bakery-ops/internal/application/dto"
	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
)

// CatalogHandler expone el maestro de SKUs y ubicaciones (protegido, solo lectura).
type CatalogHandler struct {
	catalog *appinventory.Catalog
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(catalog *appinventory.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListSKUs godoc
// @Summary      Listar SKUs del catálogo
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SkuResponse
// @Router       /api/inventory/skus [get]
func (h *CatalogHandler) ListSKUs(c *fiber.Ctx) error {
	skus, err := h.catalog.SKUs()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSkuStocks(skus))
}

// GetSKU godoc
// @Summary      Obtener SKU con su existencia
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del SKU"
// @Success      200  {object}  dto.SkuResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/skus/{id} [get]
func (h *CatalogHandler) GetSKU(c *fiber.Ctx) error {
	sku, ok, err := h.catalog.SKU(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return notFound(c, "sku no encontrado")
	}
	return c.JSON(dto.FromSkuStock(sku))
}

// ListLocations godoc
// @Summary      Listar ubicaciones
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/inventory/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	return c.JSON(dto.FromLocations(h.catalog.Locations()))
}
