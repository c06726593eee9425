// Package workorder contiene la máquina de estados de órdenes de trabajo, la conciliación de
// cantidades, las marcaciones de tiempo y la generación de órdenes desde planeación.
// Igual que el libro de lotes, cada comando es una función pura sobre State.
package workorder

import (
	"time"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// Autores de registros de auditoría cuando no hay usuario identificado.
const (
	DefaultActor  = "Current User"
	PlanningActor = "Production Planning System"
)

// State instantánea del libro de órdenes. Las tres colecciones van de la más reciente a la más antigua.
type State struct {
	WorkOrders  []entity.WorkOrder
	TimeEntries []entity.TimeEntry
	Updates     []entity.WorkOrderUpdate
}

// Stamp instante, generador de ids y autor de la transición.
type Stamp struct {
	Now   time.Time
	NewID func() string
	Actor string
}

func (st Stamp) actor() string {
	if st.Actor == "" {
		return DefaultActor
	}
	return st.Actor
}

// Clone devuelve una copia profunda del estado.
func (s State) Clone() State {
	out := State{}
	if s.WorkOrders != nil {
		out.WorkOrders = make([]entity.WorkOrder, len(s.WorkOrders))
		for i, w := range s.WorkOrders {
			out.WorkOrders[i] = w.Clone()
		}
	}
	if s.TimeEntries != nil {
		out.TimeEntries = make([]entity.TimeEntry, len(s.TimeEntries))
		for i, e := range s.TimeEntries {
			out.TimeEntries[i] = e.Clone()
		}
	}
	if s.Updates != nil {
		out.Updates = make([]entity.WorkOrderUpdate, len(s.Updates))
		copy(out.Updates, s.Updates)
	}
	return out
}

// FindWorkOrder busca una orden por id.
func (s State) FindWorkOrder(id string) (entity.WorkOrder, int, bool) {
	for i, w := range s.WorkOrders {
		if w.ID == id {
			return w, i, true
		}
	}
	return entity.WorkOrder{}, -1, false
}

// ByPlanningID devuelve la primera orden generada desde la franja de planeación indicada.
func (s State) ByPlanningID(planningID string) (entity.WorkOrder, bool) {
	for _, w := range s.WorkOrders {
		if w.ProductionPlanningID == planningID {
			return w.Clone(), true
		}
	}
	return entity.WorkOrder{}, false
}

// OpenTimeEntries marcaciones abiertas de una orden (vacío = todas las órdenes).
func (s State) OpenTimeEntries(workOrderID string) []entity.TimeEntry {
	var out []entity.TimeEntry
	for _, e := range s.TimeEntries {
		if e.Open() && (workOrderID == "" || e.WorkOrderID == workOrderID) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// UpdatesSince devuelve los registros de auditoría que next agregó sobre prev.
func UpdatesSince(prev, next State) []entity.WorkOrderUpdate {
	n := len(next.Updates) - len(prev.Updates)
	if n <= 0 {
		return nil
	}
	return append([]entity.WorkOrderUpdate(nil), next.Updates[:n]...)
}

// replaceWorkOrder copia las órdenes sustituyendo la de la posición idx.
func replaceWorkOrder(orders []entity.WorkOrder, idx int, wo entity.WorkOrder) []entity.WorkOrder {
	out := make([]entity.WorkOrder, len(orders))
	for i, w := range orders {
		if i == idx {
			out[i] = wo
			continue
		}
		out[i] = w.Clone()
	}
	return out
}

func prependUpdate(u entity.WorkOrderUpdate, updates []entity.WorkOrderUpdate) []entity.WorkOrderUpdate {
	out := make([]entity.WorkOrderUpdate, 0, len(updates)+1)
	out = append(out, u)
	return append(out, updates...)
}

// advance garantiza que UpdatedAt avance en cada mutación aunque el reloj no lo haga.
func advance(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}
