package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bakery-ops/internal/application/dto"
	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de lotes (protegido).
type InventoryHandler struct {
	ledger *appinventory.Ledger
	trace  *appinventory.TraceReportUseCase
}

// NewInventoryHandler construye el handler. trace puede ser nil (sin reporte PDF).
func NewInventoryHandler(ledger *appinventory.Ledger, trace *appinventory.TraceReportUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, trace: trace}
}

// ListLots godoc
// @Summary      Listar lotes
// @Description  Lotes en orden de alta. Con sku_id devuelve además la existencia total del SKU.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sku_id  query  string  false  "Filtrar por SKU"
// @Success      200  {object}  dto.AvailabilityDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	sku := c.Query("sku_id")
	if sku == "" {
		lots, err := h.ledger.Lots()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"total": len(lots), "lots": dto.FromLots(lots)})
	}
	lots, err := h.ledger.LotsBySKU(sku)
	if err != nil {
		return respondError(c, err)
	}
	available, err := h.ledger.Available(sku)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AvailabilityDTO{SKUID: sku, Available: available, Lots: dto.FromLots(lots)})
}

// GetLot godoc
// @Summary      Obtener lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id} [get]
func (h *InventoryHandler) GetLot(c *fiber.Ctx) error {
	lot, ok, err := h.ledger.Lot(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return notFound(c, "lote no encontrado")
	}
	return c.JSON(dto.FromLot(lot))
}

// LotTransactions godoc
// @Summary      Historial de un lote (trazabilidad)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}   dto.LotTransactionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/transactions [get]
func (h *InventoryHandler) LotTransactions(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok, err := h.ledger.Lot(id); err != nil {
		return respondError(c, err)
	} else if !ok {
		return notFound(c, "lote no encontrado")
	}
	txns, err := h.ledger.TransactionsForLot(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromLotTransactions(txns))
}

// LotTracePDF godoc
// @Summary      Reporte PDF de trazabilidad del lote
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/trace.pdf [get]
func (h *InventoryHandler) LotTracePDF(c *fiber.Ctx) error {
	if h.trace == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "reporte no configurado"})
	}
	id := c.Params("id")
	pdf, err := h.trace.Generate(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="lote-`+id+`.pdf"`)
	return c.Send(pdf)
}

// ListTransactions godoc
// @Summary      Listar transacciones de lotes
// @Description  Más reciente primero, paginado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo (defecto 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	txns, err := h.ledger.Transactions()
	if err != nil {
		return respondError(c, err)
	}
	total := len(txns)
	from := min(page.Offset, total)
	to := min(from+page.Limit, total)
	return c.JSON(fiber.Map{
		"page":         dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		"transactions": dto.FromLotTransactions(txns[from:to]),
	})
}

// Receive godoc
// @Summary      Recibir lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveLotRequest  true  "sku_id, lot_code, qty_on_hand, location_id, expiration (YYYY-MM-DD)"
// @Success      201   {object}  dto.ReceiveLotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.SKUID == "" || in.LocationID == "" {
		return badRequest(c, "VALIDATION", "sku_id y location_id son obligatorios")
	}
	input, err := in.ToReceiveInput()
	if err != nil {
		return badRequest(c, "VALIDATION", "expiration debe ser YYYY-MM-DD o RFC3339")
	}
	state, added, err := h.ledger.Receive(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	lot, _, _ := state.FindLot(added[0].LotID)
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiveLotResponse{
		Lot:         dto.FromLot(lot),
		Transaction: dto.FromLotTransaction(added[0]),
	})
}

// Issue godoc
// @Summary      Consumir existencia (FEFO o manual)
// @Description  Un faltante no es error: se responde 200 con partial=true y shortfall > 0.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "sku_id, qty, strategy (FEFO|manual), selections, ref"
// @Success      200   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/issues [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	switch in.Strategy {
	case "", invdomain.StrategyFEFO:
		if in.SKUID == "" {
			return badRequest(c, "VALIDATION", "sku_id es obligatorio en FEFO")
		}
	case invdomain.StrategyManual:
		if len(in.Selections) == 0 {
			return badRequest(c, "VALIDATION", "selections es obligatorio en modo manual")
		}
	default:
		return badRequest(c, "VALIDATION", "strategy debe ser FEFO o manual")
	}
	_, summary, err := h.ledger.Issue(c.UserContext(), in.ToIssueParams())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromIssueSummary(summary))
}

// Transfer godoc
// @Summary      Trasladar existencia a otra ubicación
// @Description  Mueve hasta min(qty, existencia) a un lote nuevo. Sin transacciones = sin efecto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote origen"
// @Param        body  body  dto.TransferRequest  true  "to_location_id, qty"
// @Success      200   {object}  dto.LotChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ToLocationID == "" {
		return badRequest(c, "VALIDATION", "to_location_id es obligatorio")
	}
	if _, ok, err := h.ledger.Lot(id); err != nil {
		return respondError(c, err)
	} else if !ok {
		return notFound(c, "lote no encontrado")
	}
	state, added, err := h.ledger.Transfer(c.UserContext(), id, in.ToLocationID, in.Qty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(changeResponse(state, id, added))
}

// Adjust godoc
// @Summary      Ajustar existencia de un lote
// @Description  La existencia resultante nunca es negativa; applied_qty muestra el efecto real.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.AdjustRequest  true  "delta, notes"
// @Success      200   {object}  dto.LotChangeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if _, ok, err := h.ledger.Lot(id); err != nil {
		return respondError(c, err)
	} else if !ok {
		return notFound(c, "lote no encontrado")
	}
	state, added, err := h.ledger.Adjust(c.UserContext(), id, in.Delta, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(changeResponse(state, id, added))
}

// changeResponse arma la respuesta con el lote pedido y los lotes tocados por las transacciones.
func changeResponse(state invdomain.State, lotID string, added []entity.LotTransaction) dto.LotChangeResponse {
	ids := []string{lotID}
	for _, t := range added {
		if t.LotID != lotID {
			ids = append(ids, t.LotID)
		}
	}
	lots := make([]entity.Lot, 0, len(ids))
	for _, id := range ids {
		if lot, _, ok := state.FindLot(id); ok {
			lots = append(lots, lot)
		}
	}
	return dto.LotChangeResponse{Lots: dto.FromLots(lots), Transactions: dto.FromLotTransactions(added)}
}
