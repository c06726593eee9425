package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-ops/internal/application/production"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	wodomain "github.com/jhoicas/bakery-ops/internal/domain/workorder"
)

// RecipeIngredientDTO insumo de receta.
type RecipeIngredientDTO struct {
	SKUID string          `json:"sku_id"`
	Name  string          `json:"name"`
	Qty   decimal.Decimal `json:"qty"`
	Unit  string          `json:"unit"`
	Notes string          `json:"notes,omitempty"`
}

// RecipeDTO receta asociada a la orden.
type RecipeDTO struct {
	ID           string                `json:"id,omitempty"`
	Name         string                `json:"name"`
	Ingredients  []RecipeIngredientDTO `json:"ingredients"`
	Instructions []string              `json:"instructions,omitempty"`
	YieldQty     decimal.Decimal       `json:"yield_qty"`
	YieldUnit    string                `json:"yield_unit"`
}

// WorkOrderDTO orden de trabajo en respuestas.
type WorkOrderDTO struct {
	ID                   string           `json:"id"`
	WONumber             string           `json:"wo_number"`
	SKU                  string           `json:"sku"`
	ProductionArea       string           `json:"production_area"`
	PlannedQty           decimal.Decimal  `json:"planned_qty"`
	ActualQty            *decimal.Decimal `json:"actual_qty,omitempty"`
	WasteQty             *decimal.Decimal `json:"waste_qty,omitempty"`
	FreezeQty            *decimal.Decimal `json:"freeze_qty,omitempty"`
	Status               string           `json:"status"`
	Priority             string           `json:"priority"`
	ScheduledStart       time.Time        `json:"scheduled_start"`
	ScheduledEnd         time.Time        `json:"scheduled_end"`
	ActualStart          *time.Time       `json:"actual_start,omitempty"`
	ActualEnd            *time.Time       `json:"actual_end,omitempty"`
	AssignedEmployees    []string         `json:"assigned_employees"`
	MachineID            string           `json:"machine_id,omitempty"`
	Recipe               *RecipeDTO       `json:"recipe,omitempty"`
	ProductionPlanningID string           `json:"production_planning_id,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// CreateWorkOrderRequest body para POST /api/work-orders.
type CreateWorkOrderRequest struct {
	WONumber          string          `json:"wo_number,omitempty"`
	SKU               string          `json:"sku"`
	ProductionArea    string          `json:"production_area,omitempty"`
	PlannedQty        decimal.Decimal `json:"planned_qty"`
	Priority          string          `json:"priority,omitempty"`
	ScheduledStart    time.Time       `json:"scheduled_start"`
	ScheduledEnd      time.Time       `json:"scheduled_end"`
	AssignedEmployees []string        `json:"assigned_employees,omitempty"`
	MachineID         string          `json:"machine_id,omitempty"`
	Recipe            *RecipeDTO      `json:"recipe,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// UpdateStatusRequest body para PATCH /api/work-orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// UpdateQuantitiesRequest body para PATCH /api/work-orders/:id/quantities (campos ausentes no se tocan).
type UpdateQuantitiesRequest struct {
	ActualQty *decimal.Decimal `json:"actual_qty,omitempty"`
	WasteQty  *decimal.Decimal `json:"waste_qty,omitempty"`
	FreezeQty *decimal.Decimal `json:"freeze_qty,omitempty"`
}

// AssignEmployeesRequest body para POST /api/work-orders/:id/employees.
type AssignEmployeesRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// AddNoteRequest body para POST /api/work-orders/:id/notes.
type AddNoteRequest struct {
	Note string `json:"note"`
}

// PlanningSlotRequest franja de la vista de planeación (POST /api/work-orders/from-planning).
type PlanningSlotRequest struct {
	ID             int    `json:"id"`
	SKU            string `json:"sku"`
	Line           string `json:"line"`
	TimeSlot       string `json:"time_slot"` // HH:MM-HH:MM
	PansFromOrders int    `json:"pans_from_orders"`
	PansStandard   int    `json:"pans_standard"`
}

// WorkOrderUpdateDTO registro de auditoría.
type WorkOrderUpdateDTO struct {
	ID          string    `json:"id"`
	WorkOrderID string    `json:"work_order_id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Details     string    `json:"details"`
	UpdatedBy   string    `json:"updated_by"`
}

// TimeEntryDTO marcación de tiempo.
type TimeEntryDTO struct {
	ID           string     `json:"id"`
	WorkOrderID  string     `json:"work_order_id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	BreakMinutes *int       `json:"break_minutes,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// AddTimeEntryRequest body para POST /api/time-entries. start_time vacío = ahora.
type AddTimeEntryRequest struct {
	WorkOrderID  string     `json:"work_order_id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	BreakMinutes *int       `json:"break_minutes,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// IngredientIssueDTO consumo de un ingrediente de la receta.
type IngredientIssueDTO struct {
	SKUID string `json:"sku_id"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	IssueResponse
}

// ToInput convierte el body en la entrada del libro.
func (r CreateWorkOrderRequest) ToInput() wodomain.WorkOrderInput {
	in := wodomain.WorkOrderInput{
		WONumber:          r.WONumber,
		SKU:               r.SKU,
		ProductionArea:    entity.ProductionArea(r.ProductionArea),
		PlannedQty:        r.PlannedQty,
		Priority:          entity.Priority(r.Priority),
		ScheduledStart:    r.ScheduledStart,
		ScheduledEnd:      r.ScheduledEnd,
		AssignedEmployees: r.AssignedEmployees,
		MachineID:         r.MachineID,
		Notes:             r.Notes,
	}
	if r.Recipe != nil {
		rec := r.Recipe.ToEntity()
		in.Recipe = &rec
	}
	return in
}

// ToEntity convierte la receta del body.
func (r RecipeDTO) ToEntity() entity.Recipe {
	out := entity.Recipe{
		ID:           r.ID,
		Name:         r.Name,
		Instructions: r.Instructions,
		YieldQty:     r.YieldQty,
		YieldUnit:    r.YieldUnit,
	}
	for _, i := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, entity.RecipeIngredient{
			SKUID: i.SKUID, Name: i.Name, Qty: i.Qty, Unit: i.Unit, Notes: i.Notes,
		})
	}
	return out
}

// ToSlot convierte el body en la franja de planeación.
func (r PlanningSlotRequest) ToSlot() wodomain.PlanningSlot {
	return wodomain.PlanningSlot{
		ID:             r.ID,
		SKU:            r.SKU,
		Line:           r.Line,
		TimeSlot:       r.TimeSlot,
		PansFromOrders: r.PansFromOrders,
		PansStandard:   r.PansStandard,
	}
}

// ToInput convierte el body en la marcación a registrar.
func (r AddTimeEntryRequest) ToInput() wodomain.TimeEntryInput {
	in := wodomain.TimeEntryInput{
		WorkOrderID:  r.WorkOrderID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		EndTime:      r.EndTime,
		BreakMinutes: r.BreakMinutes,
		Notes:        r.Notes,
	}
	if r.StartTime != nil {
		in.StartTime = *r.StartTime
	}
	return in
}

// FromWorkOrder mapea una orden.
func FromWorkOrder(w entity.WorkOrder) WorkOrderDTO {
	out := WorkOrderDTO{
		ID:                   w.ID,
		WONumber:             w.WONumber,
		SKU:                  w.SKU,
		ProductionArea:       string(w.ProductionArea),
		PlannedQty:           w.PlannedQty,
		ActualQty:            w.ActualQty,
		WasteQty:             w.WasteQty,
		FreezeQty:            w.FreezeQty,
		Status:               string(w.Status),
		Priority:             string(w.Priority),
		ScheduledStart:       w.ScheduledStart,
		ScheduledEnd:         w.ScheduledEnd,
		ActualStart:          w.ActualStart,
		ActualEnd:            w.ActualEnd,
		AssignedEmployees:    w.AssignedEmployees,
		MachineID:            w.MachineID,
		ProductionPlanningID: w.ProductionPlanningID,
		Notes:                w.Notes,
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}
	if out.AssignedEmployees == nil {
		out.AssignedEmployees = []string{}
	}
	if w.Recipe != nil {
		r := RecipeDTO{
			ID: w.Recipe.ID, Name: w.Recipe.Name, Instructions: w.Recipe.Instructions,
			YieldQty: w.Recipe.YieldQty, YieldUnit: w.Recipe.YieldUnit,
			Ingredients: make([]RecipeIngredientDTO, 0, len(w.Recipe.Ingredients)),
		}
		for _, i := range w.Recipe.Ingredients {
			r.Ingredients = append(r.Ingredients, RecipeIngredientDTO{
				SKUID: i.SKUID, Name: i.Name, Qty: i.Qty, Unit: i.Unit, Notes: i.Notes,
			})
		}
		out.Recipe = &r
	}
	return out
}

// FromWorkOrders mapea una lista de órdenes (nunca nil).
func FromWorkOrders(ws []entity.WorkOrder) []WorkOrderDTO {
	out := make([]WorkOrderDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, FromWorkOrder(w))
	}
	return out
}

// FromUpdates mapea la auditoría (nunca nil).
func FromUpdates(us []entity.WorkOrderUpdate) []WorkOrderUpdateDTO {
	out := make([]WorkOrderUpdateDTO, 0, len(us))
	for _, u := range us {
		out = append(out, WorkOrderUpdateDTO{
			ID: u.ID, WorkOrderID: u.WorkOrderID, Timestamp: u.Timestamp,
			Type: u.Type, Details: u.Details, UpdatedBy: u.UpdatedBy,
		})
	}
	return out
}

// FromTimeEntry mapea una marcación.
func FromTimeEntry(e entity.TimeEntry) TimeEntryDTO {
	return TimeEntryDTO{
		ID: e.ID, WorkOrderID: e.WorkOrderID, EmployeeID: e.EmployeeID, EmployeeName: e.EmployeeName,
		StartTime: e.StartTime, EndTime: e.EndTime, BreakMinutes: e.BreakMinutes, Notes: e.Notes,
	}
}

// FromTimeEntries mapea una lista de marcaciones (nunca nil).
func FromTimeEntries(es []entity.TimeEntry) []TimeEntryDTO {
	out := make([]TimeEntryDTO, 0, len(es))
	for _, e := range es {
		out = append(out, FromTimeEntry(e))
	}
	return out
}

// FromIngredientIssues mapea el resultado de consumir una receta.
func FromIngredientIssues(issues []production.IngredientIssue) []IngredientIssueDTO {
	out := make([]IngredientIssueDTO, 0, len(issues))
	for _, i := range issues {
		out = append(out, IngredientIssueDTO{
			SKUID: i.SKUID, Name: i.Name, Unit: i.Unit, IssueResponse: FromIssueSummary(i.Summary),
		})
	}
	return out
}
