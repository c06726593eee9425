package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderStatus estado de una orden de trabajo.
type WorkOrderStatus string

const (
	WorkOrderPending   WorkOrderStatus = "pending"
	WorkOrderActive    WorkOrderStatus = "active"
	WorkOrderPaused    WorkOrderStatus = "paused"
	WorkOrderCompleted WorkOrderStatus = "completed"
	WorkOrderCancelled WorkOrderStatus = "cancelled"
)

// Valid indica si el estado pertenece al enumerado.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderPending, WorkOrderActive, WorkOrderPaused, WorkOrderCompleted, WorkOrderCancelled:
		return true
	}
	return false
}

// ProductionArea estación física/proceso a la que se asigna una orden.
type ProductionArea string

const (
	AreaMixingRoom    ProductionArea = "mixing-room"
	AreaMixingPrep    ProductionArea = "mixing-prep"
	AreaPreBakePrep   ProductionArea = "pre-bake-prep"
	AreaRollsBakeRoom ProductionArea = "rolls-bake-room"
	AreaBakeRoom      ProductionArea = "bake-room"
	AreaPreFinishing  ProductionArea = "pre-finishing"
	AreaFinishing     ProductionArea = "finishing"
	AreaShippingPrep  ProductionArea = "shipping-prep"
)

// Valid indica si el área pertenece al enumerado.
func (a ProductionArea) Valid() bool {
	switch a {
	case AreaMixingRoom, AreaMixingPrep, AreaPreBakePrep, AreaRollsBakeRoom,
		AreaBakeRoom, AreaPreFinishing, AreaFinishing, AreaShippingPrep:
		return true
	}
	return false
}

// Priority prioridad de una orden de trabajo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid indica si la prioridad pertenece al enumerado.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WorkOrder unidad programada de trabajo de producción.
// ActualStart se fija una sola vez al pasar por primera vez a active;
// ActualEnd una sola vez al pasar por primera vez a completed.
type WorkOrder struct {
	ID                   string
	WONumber             string
	SKU                  string
	ProductionArea       ProductionArea
	PlannedQty           decimal.Decimal
	ActualQty            *decimal.Decimal
	WasteQty             *decimal.Decimal
	FreezeQty            *decimal.Decimal
	Status               WorkOrderStatus
	Priority             Priority
	ScheduledStart       time.Time
	ScheduledEnd         time.Time
	ActualStart          *time.Time
	ActualEnd            *time.Time
	AssignedEmployees    []string
	MachineID            string
	Recipe               *Recipe
	ProductionPlanningID string
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Clone devuelve una copia profunda de la orden.
func (w WorkOrder) Clone() WorkOrder {
	w.ActualQty = cloneDecimal(w.ActualQty)
	w.WasteQty = cloneDecimal(w.WasteQty)
	w.FreezeQty = cloneDecimal(w.FreezeQty)
	w.ActualStart = cloneTime(w.ActualStart)
	w.ActualEnd = cloneTime(w.ActualEnd)
	if w.AssignedEmployees != nil {
		emps := make([]string, len(w.AssignedEmployees))
		copy(emps, w.AssignedEmployees)
		w.AssignedEmployees = emps
	}
	if w.Recipe != nil {
		r := w.Recipe.Clone()
		w.Recipe = &r
	}
	return w
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
