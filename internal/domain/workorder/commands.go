package workorder

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QuantityUpdate campos de cantidad a fusionar; nil = no se toca.
type QuantityUpdate struct {
	ActualQty *decimal.Decimal
	WasteQty  *decimal.Decimal
	FreezeQty *decimal.Decimal
}

// TimeEntryInput datos de una marcación nueva (el id lo genera el libro).
type TimeEntryInput struct {
	WorkOrderID  string
	EmployeeID   string
	EmployeeName string
	StartTime    time.Time
	EndTime      *time.Time
	BreakMinutes *int
	Notes        string
}

// WorkOrderInput datos para crear una orden directamente (sin planeación).
type WorkOrderInput struct {
	WONumber             string
	SKU                  string
	ProductionArea       entity.ProductionArea
	PlannedQty           decimal.Decimal
	Priority             entity.Priority
	ScheduledStart       time.Time
	ScheduledEnd         time.Time
	AssignedEmployees    []string
	MachineID            string
	Recipe               *entity.Recipe
	ProductionPlanningID string
	Notes                string
}

// UpdateStatus cambia el estado sin validar la transición (ver CanTransition).
// Primera entrada a active fija ActualStart; primera entrada a completed fija ActualEnd.
// Notas no vacías reemplazan las de la orden. Orden desconocida: estado sin cambios.
func UpdateStatus(s State, id string, status entity.WorkOrderStatus, notes string, st Stamp) State {
	wo, idx, ok := s.FindWorkOrder(id)
	if !ok {
		return s
	}
	wo = wo.Clone()
	wo.Status = status
	wo.UpdatedAt = advance(wo.UpdatedAt, st.Now)
	now := st.Now
	if status == entity.WorkOrderActive && wo.ActualStart == nil {
		wo.ActualStart = &now
	}
	if status == entity.WorkOrderCompleted && wo.ActualEnd == nil {
		wo.ActualEnd = &now
	}
	if notes != "" {
		wo.Notes = notes
	}

	details := fmt.Sprintf("Status changed to %s", status)
	if notes != "" {
		details += ": " + notes
	}
	return State{
		WorkOrders:  replaceWorkOrder(s.WorkOrders, idx, wo),
		TimeEntries: s.Clone().TimeEntries,
		Updates:     prependUpdate(newUpdate(st, id, entity.UpdateTypeStatusChange, details), s.Updates),
	}
}

// UpdateQuantities fusiona las cantidades presentes en q. Orden desconocida: estado sin cambios.
func UpdateQuantities(s State, id string, q QuantityUpdate, st Stamp) State {
	wo, idx, ok := s.FindWorkOrder(id)
	if !ok {
		return s
	}
	wo = wo.Clone()
	var changed []string
	if q.ActualQty != nil {
		v := *q.ActualQty
		wo.ActualQty = &v
		changed = append(changed, "actualQty="+v.String())
	}
	if q.WasteQty != nil {
		v := *q.WasteQty
		wo.WasteQty = &v
		changed = append(changed, "wasteQty="+v.String())
	}
	if q.FreezeQty != nil {
		v := *q.FreezeQty
		wo.FreezeQty = &v
		changed = append(changed, "freezeQty="+v.String())
	}
	wo.UpdatedAt = advance(wo.UpdatedAt, st.Now)

	details := "Quantities updated: " + strings.Join(changed, ", ")
	return State{
		WorkOrders:  replaceWorkOrder(s.WorkOrders, idx, wo),
		TimeEntries: s.Clone().TimeEntries,
		Updates:     prependUpdate(newUpdate(st, id, entity.UpdateTypeQuantityUpdate, details), s.Updates),
	}
}

// AddTimeEntry agrega una marcación con id generado. No valida solapes del mismo empleado.
func AddTimeEntry(s State, in TimeEntryInput, st Stamp) State {
	entry := entity.TimeEntry{
		ID:           st.NewID(),
		WorkOrderID:  in.WorkOrderID,
		EmployeeID:   in.EmployeeID,
		EmployeeName: in.EmployeeName,
		StartTime:    in.StartTime,
		Notes:        in.Notes,
	}
	if entry.StartTime.IsZero() {
		entry.StartTime = st.Now
	}
	if in.EndTime != nil {
		end := *in.EndTime
		entry.EndTime = &end
	}
	if in.BreakMinutes != nil {
		b := *in.BreakMinutes
		entry.BreakMinutes = &b
	}
	out := s.Clone()
	out.TimeEntries = append([]entity.TimeEntry{entry}, out.TimeEntries...)
	return out
}

// EndTimeEntry cierra una marcación abierta. Ya cerrada o desconocida: estado sin cambios.
func EndTimeEntry(s State, id string, st Stamp) State {
	for i, e := range s.TimeEntries {
		if e.ID != id {
			continue
		}
		if !e.Open() {
			return s
		}
		out := s.Clone()
		end := st.Now
		out.TimeEntries[i].EndTime = &end
		return out
	}
	return s
}

// GenerateFromPlanning crea una orden pending a partir de una franja de planeación y la
// antepone a la lista. Las líneas desconocidas caen en DefaultArea.
func GenerateFromPlanning(s State, slot PlanningSlot, st Stamp) (State, error) {
	start, end, err := ParseTimeSlot(slot.TimeSlot, st.Now)
	if err != nil {
		return s, err
	}
	wo := entity.WorkOrder{
		ID:                   st.NewID(),
		WONumber:             WONumber(st.Now),
		SKU:                  slot.SKU,
		ProductionArea:       AreaForLine(slot.Line),
		PlannedQty:           decimal.NewFromInt(int64(slot.PansFromOrders + slot.PansStandard)),
		Status:               entity.WorkOrderPending,
		Priority:             entity.PriorityNormal,
		ScheduledStart:       start,
		ScheduledEnd:         end,
		AssignedEmployees:    []string{},
		ProductionPlanningID: PlanningID(slot.ID),
		Notes:                fmt.Sprintf("Generated from production planning slot %d", slot.ID),
		CreatedAt:            st.Now,
		UpdatedAt:            st.Now,
	}
	planner := st
	planner.Actor = PlanningActor
	details := fmt.Sprintf("Work order generated from production planning slot for %s", slot.SKU)

	out := s.Clone()
	out.WorkOrders = append([]entity.WorkOrder{wo}, out.WorkOrders...)
	out.Updates = prependUpdate(newUpdate(planner, wo.ID, entity.UpdateTypeGeneratedFromPlanning, details), s.Updates)
	return out, nil
}

// Create agrega una orden pending creada directamente. Prioridad vacía = normal;
// número vacío = generado.
func Create(s State, in WorkOrderInput, st Stamp) State {
	wo := entity.WorkOrder{
		ID:                   st.NewID(),
		WONumber:             in.WONumber,
		SKU:                  in.SKU,
		ProductionArea:       in.ProductionArea,
		PlannedQty:           in.PlannedQty,
		Status:               entity.WorkOrderPending,
		Priority:             in.Priority,
		ScheduledStart:       in.ScheduledStart,
		ScheduledEnd:         in.ScheduledEnd,
		AssignedEmployees:    dedupe(nil, in.AssignedEmployees),
		MachineID:            in.MachineID,
		ProductionPlanningID: in.ProductionPlanningID,
		Notes:                in.Notes,
		CreatedAt:            st.Now,
		UpdatedAt:            st.Now,
	}
	if wo.WONumber == "" {
		wo.WONumber = WONumber(st.Now)
	}
	if wo.Priority == "" {
		wo.Priority = entity.PriorityNormal
	}
	if wo.ProductionArea == "" {
		wo.ProductionArea = DefaultArea
	}
	if in.Recipe != nil {
		r := in.Recipe.Clone()
		wo.Recipe = &r
	}
	out := s.Clone()
	out.WorkOrders = append([]entity.WorkOrder{wo}, out.WorkOrders...)
	return out
}

// AssignEmployees agrega empleados a la orden sin duplicar. Si no hay ninguno nuevo,
// o la orden no existe, el estado no cambia.
func AssignEmployees(s State, id string, employeeIDs []string, st Stamp) State {
	wo, idx, ok := s.FindWorkOrder(id)
	if !ok {
		return s
	}
	merged := dedupe(wo.AssignedEmployees, employeeIDs)
	if len(merged) == len(wo.AssignedEmployees) {
		return s
	}
	added := merged[len(wo.AssignedEmployees):]
	wo = wo.Clone()
	wo.AssignedEmployees = merged
	wo.UpdatedAt = advance(wo.UpdatedAt, st.Now)

	details := "Employees assigned: " + strings.Join(added, ", ")
	return State{
		WorkOrders:  replaceWorkOrder(s.WorkOrders, idx, wo),
		TimeEntries: s.Clone().TimeEntries,
		Updates:     prependUpdate(newUpdate(st, id, entity.UpdateTypeEmployeeAssigned, details), s.Updates),
	}
}

// AddNote anexa una nota a la orden. Nota vacía u orden desconocida: estado sin cambios.
func AddNote(s State, id, note string, st Stamp) State {
	note = strings.TrimSpace(note)
	wo, idx, ok := s.FindWorkOrder(id)
	if !ok || note == "" {
		return s
	}
	wo = wo.Clone()
	if wo.Notes == "" {
		wo.Notes = note
	} else {
		wo.Notes += "\n" + note
	}
	wo.UpdatedAt = advance(wo.UpdatedAt, st.Now)
	return State{
		WorkOrders:  replaceWorkOrder(s.WorkOrders, idx, wo),
		TimeEntries: s.Clone().TimeEntries,
		Updates:     prependUpdate(newUpdate(st, id, entity.UpdateTypeNoteAdded, note), s.Updates),
	}
}

func newUpdate(st Stamp, workOrderID, typ, details string) entity.WorkOrderUpdate {
	return entity.WorkOrderUpdate{
		ID:          st.NewID(),
		WorkOrderID: workOrderID,
		Timestamp:   st.Now,
		Type:        typ,
		Details:     details,
		UpdatedBy:   st.actor(),
	}
}

// dedupe agrega a base los ids de extra que no estén, conservando el orden.
func dedupe(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
