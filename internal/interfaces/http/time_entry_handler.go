package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bakery-ops/internal/application/dto"
	appworkorder "github.com/jhoicas/bakery-ops/internal/application/workorder"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// TimeEntryHandler maneja las marcaciones de tiempo (protegido).
type TimeEntryHandler struct {
	ledger *appworkorder.Ledger
}

// NewTimeEntryHandler construye el handler.
func NewTimeEntryHandler(ledger *appworkorder.Ledger) *TimeEntryHandler {
	return &TimeEntryHandler{ledger: ledger}
}

// List godoc
// @Summary      Listar marcaciones
// @Tags         time-entries
// @Security     Bearer
// @Produce      json
// @Param        work_order_id  query  string  false  "Filtrar por orden"
// @Param        open           query  bool    false  "Solo abiertas"
// @Success      200  {array}  dto.TimeEntryDTO
// @Router       /api/time-entries [get]
func (h *TimeEntryHandler) List(c *fiber.Ctx) error {
	woID := c.Query("work_order_id")
	if c.QueryBool("open") {
		open, err := h.ledger.OpenTimeEntries(woID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromTimeEntries(open))
	}
	entries, err := h.ledger.TimeEntries()
	if err != nil {
		return respondError(c, err)
	}
	if woID != "" {
		filtered := make([]entity.TimeEntry, 0, len(entries))
		for _, e := range entries {
			if e.WorkOrderID == woID {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return c.JSON(dto.FromTimeEntries(entries))
}

// Create godoc
// @Summary      Registrar marcación
// @Tags         time-entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Description  Sin employee_id la marcación queda a nombre del operario autenticado.
// @Param        body  body  dto.AddTimeEntryRequest  true  "work_order_id, employee_id, employee_name, start_time"
// @Success      201   {object}  dto.TimeEntryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/time-entries [post]
func (h *TimeEntryHandler) Create(c *fiber.Ctx) error {
	var in dto.AddTimeEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.EmployeeID == "" {
		in.EmployeeID, in.EmployeeName = GetUserID(c), GetUserName(c)
	}
	if in.WorkOrderID == "" || in.EmployeeID == "" {
		return badRequest(c, "VALIDATION", "work_order_id y employee_id son obligatorios")
	}
	state, err := h.ledger.AddTimeEntry(c.UserContext(), in.ToInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTimeEntry(state.TimeEntries[0]))
}

// End godoc
// @Summary      Cerrar marcación
// @Description  Cerrar una marcación ya cerrada no cambia la hora de salida.
// @Tags         time-entries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la marcación"
// @Success      200  {object}  dto.TimeEntryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/time-entries/{id}/end [post]
func (h *TimeEntryHandler) End(c *fiber.Ctx) error {
	id := c.Params("id")
	state, err := h.ledger.EndTimeEntry(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	for _, e := range state.TimeEntries {
		if e.ID == id {
			return c.JSON(dto.FromTimeEntry(e))
		}
	}
	return notFound(c, "marcación no encontrada")
}
