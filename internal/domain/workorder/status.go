package workorder

import "github.com/jhoicas/bakery-ops/internal/domain/entity"

// transitions tabla de transiciones legales. completed y cancelled son terminales.
var transitions = map[entity.WorkOrderStatus][]entity.WorkOrderStatus{
	entity.WorkOrderPending: {entity.WorkOrderActive, entity.WorkOrderCancelled},
	entity.WorkOrderActive:  {entity.WorkOrderPaused, entity.WorkOrderCompleted, entity.WorkOrderCancelled},
	entity.WorkOrderPaused:  {entity.WorkOrderActive, entity.WorkOrderCancelled},
}

// CanTransition indica si from→to es legal. Repetir el estado actual se acepta
// (reintento idempotente) salvo que el estado sea terminal.
func CanTransition(from, to entity.WorkOrderStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal indica si el estado ya no admite transiciones.
func Terminal(s entity.WorkOrderStatus) bool {
	_, ok := transitions[s]
	return !ok
}
