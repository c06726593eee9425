package entity

import "time"

// Tipos de registro de auditoría de órdenes de trabajo.
const (
	UpdateTypeStatusChange          = "status_change"
	UpdateTypeQuantityUpdate        = "quantity_update"
	UpdateTypeEmployeeAssigned      = "employee_assigned"
	UpdateTypeNoteAdded             = "note_added"
	UpdateTypeGeneratedFromPlanning = "generated_from_planning"
)

// WorkOrderUpdate registro de auditoría inmutable.
type WorkOrderUpdate struct {
	ID          string
	WorkOrderID string
	Timestamp   time.Time
	Type        string
	Details     string
	UpdatedBy   string
}
