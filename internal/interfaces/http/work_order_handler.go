package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bakery-ops/internal/application/dto"
	"github.com/jhoicas/bakery-ops/internal/application/production"
	appworkorder "github.com/jhoicas/bakery-ops/internal/application/workorder"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	wodomain "github.com/jhoicas/bakery-ops/internal/domain/workorder"
)

// WorkOrderHandler maneja las peticiones HTTP de órdenes de trabajo (protegido).
type WorkOrderHandler struct {
	ledger  *appworkorder.Ledger
	consume *production.ConsumeRecipeUseCase
}

// NewWorkOrderHandler construye el handler.
func NewWorkOrderHandler(ledger *appworkorder.Ledger, consume *production.ConsumeRecipeUseCase) *WorkOrderHandler {
	return &WorkOrderHandler{ledger: ledger, consume: consume}
}

// List godoc
// @Summary      Listar órdenes de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        area    query  string  false  "Filtrar por área de producción"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/work-orders [get]
func (h *WorkOrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.ledger.WorkOrders()
	if err != nil {
		return respondError(c, err)
	}
	status, area := c.Query("status"), c.Query("area")
	filtered := orders[:0]
	for _, w := range orders {
		if status != "" && string(w.Status) != status {
			continue
		}
		if area != "" && string(w.ProductionArea) != area {
			continue
		}
		filtered = append(filtered, w)
	}
	return c.JSON(fiber.Map{"total": len(filtered), "work_orders": dto.FromWorkOrders(filtered)})
}

// Create godoc
// @Summary      Crear orden de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkOrderRequest  true  "sku, planned_qty, production_area, priority, schedule"
// @Success      201   {object}  dto.WorkOrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/work-orders [post]
func (h *WorkOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWorkOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	state, err := h.ledger.Create(c.UserContext(), in.ToInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromWorkOrder(state.WorkOrders[0]))
}

// Get godoc
// @Summary      Obtener orden de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.WorkOrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id} [get]
func (h *WorkOrderHandler) Get(c *fiber.Ctx) error {
	wo, ok, err := h.ledger.WorkOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return notFound(c, "orden no encontrada")
	}
	return c.JSON(dto.FromWorkOrder(wo))
}

// ByPlanning godoc
// @Summary      Buscar orden por franja de planeación
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        planningId  path  string  true  "ID de planeación (pp-<id>)"
// @Success      200  {object}  dto.WorkOrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/by-planning/{planningId} [get]
func (h *WorkOrderHandler) ByPlanning(c *fiber.Ctx) error {
	wo, ok, err := h.ledger.ByPlanningID(c.Params("planningId"))
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return notFound(c, "no hay orden para esa franja")
	}
	return c.JSON(dto.FromWorkOrder(wo))
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la orden
// @Description  Estados: pending, active, paused, completed, cancelled. En modo estricto una
//
//	transición ilegal responde 409.
//
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la orden"
// @Param        body  body  dto.UpdateStatusRequest  true  "status, notes"
// @Success      200   {object}  dto.WorkOrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/status [patch]
func (h *WorkOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	state, err := h.ledger.UpdateStatus(c.UserContext(), c.Params("id"), entity.WorkOrderStatus(in.Status), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, state)
}

// UpdateQuantities godoc
// @Summary      Registrar cantidades reales, merma y congelado
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la orden"
// @Param        body  body  dto.UpdateQuantitiesRequest  true  "actual_qty, waste_qty, freeze_qty"
// @Success      200   {object}  dto.WorkOrderDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/quantities [patch]
func (h *WorkOrderHandler) UpdateQuantities(c *fiber.Ctx) error {
	var in dto.UpdateQuantitiesRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ActualQty == nil && in.WasteQty == nil && in.FreezeQty == nil {
		return badRequest(c, "VALIDATION", "se requiere al menos una cantidad")
	}
	state, err := h.ledger.UpdateQuantities(c.UserContext(), c.Params("id"), wodomain.QuantityUpdate{
		ActualQty: in.ActualQty, WasteQty: in.WasteQty, FreezeQty: in.FreezeQty,
	})
	if err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, state)
}

// AssignEmployees godoc
// @Summary      Asignar empleados a la orden
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la orden"
// @Param        body  body  dto.AssignEmployeesRequest  true  "employee_ids"
// @Success      200   {object}  dto.WorkOrderDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/employees [post]
func (h *WorkOrderHandler) AssignEmployees(c *fiber.Ctx) error {
	var in dto.AssignEmployeesRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	state, err := h.ledger.AssignEmployees(c.UserContext(), c.Params("id"), in.EmployeeIDs)
	if err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, state)
}

// AddNote godoc
// @Summary      Agregar nota a la orden
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la orden"
// @Param        body  body  dto.AddNoteRequest  true  "note"
// @Success      200   {object}  dto.WorkOrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/notes [post]
func (h *WorkOrderHandler) AddNote(c *fiber.Ctx) error {
	var in dto.AddNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if strings.TrimSpace(in.Note) == "" {
		return badRequest(c, "VALIDATION", "note es obligatorio")
	}
	state, err := h.ledger.AddNote(c.UserContext(), c.Params("id"), in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, state)
}

// Consume godoc
// @Summary      Consumir ingredientes de la receta (FEFO)
// @Description  Escala la receta por planned_qty / yield_qty. Los faltantes se informan por ingrediente.
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}   dto.IngredientIssueDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/consume [post]
func (h *WorkOrderHandler) Consume(c *fiber.Ctx) error {
	issues, err := h.consume.Consume(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromIngredientIssues(issues))
}

// FromPlanning godoc
// @Summary      Generar orden desde una franja de planeación
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlanningSlotRequest  true  "id, sku, line, time_slot (HH:MM-HH:MM), pans"
// @Success      201   {object}  dto.WorkOrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/work-orders/from-planning [post]
func (h *WorkOrderHandler) FromPlanning(c *fiber.Ctx) error {
	var in dto.PlanningSlotRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	state, err := h.ledger.GenerateFromPlanning(c.UserContext(), in.ToSlot())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromWorkOrder(state.WorkOrders[0]))
}

// Updates godoc
// @Summary      Auditoría de órdenes
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        work_order_id  query  string  false  "Filtrar por orden"
// @Success      200  {array}  dto.WorkOrderUpdateDTO
// @Router       /api/work-orders/updates [get]
func (h *WorkOrderHandler) Updates(c *fiber.Ctx) error {
	var (
		updates []entity.WorkOrderUpdate
		err     error
	)
	if id := c.Query("work_order_id"); id != "" {
		updates, err = h.ledger.UpdatesFor(id)
	} else {
		updates, err = h.ledger.Updates()
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromUpdates(updates))
}

// respondOrder responde con la orden de la ruta tomada del estado devuelto por el comando.
// Orden desconocida: 404 (el libro no cambió).
func (h *WorkOrderHandler) respondOrder(c *fiber.Ctx, state wodomain.State) error {
	wo, _, ok := state.FindWorkOrder(c.Params("id"))
	if !ok {
		return notFound(c, "orden no encontrada")
	}
	return c.JSON(dto.FromWorkOrder(wo))
}
