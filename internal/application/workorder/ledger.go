// Package workorder expone el libro de órdenes de trabajo como contenedor serializado.
package workorder

import (
	"context"
	"reflect"
	"sync"

	"github.com/jhoicas/bakery-ops/internal/application/ports"
	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	wodomain "github.com/jhoicas/bakery-ops/internal/domain/workorder"
	"github.com/jhoicas/bakery-ops/pkg/logger"
)

const ledgerName = "work_order"

// Ledger libro de órdenes de trabajo. El valor cero no es utilizable: construir con NewLedger.
type Ledger struct {
	mu      sync.Mutex
	state   wodomain.State
	clock   ports.Clock
	ids     ports.IDGenerator
	strict  bool
	journal Journal
	turns   ports.Sequencer
	metrics ports.Metrics
	log     *logger.Logger
}

// Option configura un Ledger.
type Option func(*Ledger)

// WithStrictTransitions rechaza transiciones ilegales y líneas de producción desconocidas.
func WithStrictTransitions(strict bool) Option { return func(l *Ledger) { l.strict = strict } }

// WithJournal refleja cada cambio en el diario.
func WithJournal(j Journal) Option { return func(l *Ledger) { l.journal = j } }

// WithMetrics registra los comandos ejecutados.
func WithMetrics(m ports.Metrics) Option { return func(l *Ledger) { l.metrics = m } }

// WithLogger usa log para los eventos del libro.
func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) { l.log = log.Component("work_order_ledger") }
}

// WithInitialState arranca el libro con s.
func WithInitialState(s wodomain.State) Option { return func(l *Ledger) { l.state = s.Clone() } }

// NewLedger construye el libro con reloj y generador de ids inyectados.
func NewLedger(clock ports.Clock, ids ports.IDGenerator, opts ...Option) *Ledger {
	l := &Ledger{
		clock:   clock,
		ids:     ids,
		metrics: ports.NopMetrics{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) ready() bool {
	return l != nil && l.clock != nil && l.ids != nil
}

func (l *Ledger) stamp(ctx context.Context) wodomain.Stamp {
	return wodomain.Stamp{Now: l.clock.Now(), NewID: l.ids.NewID, Actor: ports.ActorFrom(ctx)}
}

// orderChanges escritura al diario capturada bajo el candado.
type orderChanges struct {
	command string
	ticket  uint64
	orders  []entity.WorkOrder
	updates []entity.WorkOrderUpdate
	entries []entity.TimeEntry
}

// exec corre fn con l.mu tomado y publica el estado que devuelve; un error deja el libro
// intacto. El diario se escribe después de soltar el candado, en el orden de los comandos.
func (l *Ledger) exec(ctx context.Context, command string, fn func(st wodomain.Stamp) (wodomain.State, error)) (wodomain.State, bool, error) {
	l.mu.Lock()
	next, err := fn(l.stamp(ctx))
	if err != nil {
		state := l.state.Clone()
		l.mu.Unlock()
		return state, false, err
	}
	prev := l.state
	changed := !reflect.DeepEqual(prev, next)
	l.state = next
	var pending *orderChanges
	if changed && l.journal != nil {
		pending = &orderChanges{
			command: command,
			ticket:  l.turns.Ticket(),
			orders:  changedOrders(prev, next),
			updates: wodomain.UpdatesSince(prev, next),
			entries: changedEntries(prev, next),
		}
	}
	state := l.state.Clone()
	l.mu.Unlock()

	l.metrics.ObserveCommand(ledgerName, command, changed)
	if pending != nil {
		l.record(ctx, *pending)
	}
	return state, changed, nil
}

func (l *Ledger) record(ctx context.Context, c orderChanges) {
	l.turns.Run(c.ticket, func() {
		if len(c.orders) > 0 || len(c.updates) > 0 {
			if err := l.journal.RecordWorkOrderChanges(ctx, c.orders, c.updates); err != nil {
				l.log.Error().Err(err).Str("command", c.command).Msg("no se pudo registrar en el diario")
			}
		}
		if len(c.entries) > 0 {
			if err := l.journal.RecordTimeEntries(ctx, c.entries); err != nil {
				l.log.Error().Err(err).Str("command", c.command).Msg("no se pudo registrar la marcación")
			}
		}
	})
}

func changedOrders(prev, next wodomain.State) []entity.WorkOrder {
	var out []entity.WorkOrder
	for _, w := range next.WorkOrders {
		old, _, ok := prev.FindWorkOrder(w.ID)
		if !ok || !reflect.DeepEqual(old, w) {
			out = append(out, w.Clone())
		}
	}
	return out
}

func changedEntries(prev, next wodomain.State) []entity.TimeEntry {
	old := make(map[string]entity.TimeEntry, len(prev.TimeEntries))
	for _, e := range prev.TimeEntries {
		old[e.ID] = e
	}
	var out []entity.TimeEntry
	for _, e := range next.TimeEntries {
		if o, ok := old[e.ID]; !ok || !reflect.DeepEqual(o, e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// UpdateStatus cambia el estado de una orden. En modo estricto una transición ilegal
// devuelve domain.ErrInvalidTransition sin tocar el libro.
func (l *Ledger) UpdateStatus(ctx context.Context, id string, status entity.WorkOrderStatus, notes string) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	if !status.Valid() {
		return wodomain.State{}, domain.ErrInvalidInput
	}
	state, changed, err := l.exec(ctx, "update_status", func(st wodomain.Stamp) (wodomain.State, error) {
		if wo, _, ok := l.state.FindWorkOrder(id); ok && !wodomain.CanTransition(wo.Status, status) {
			if l.strict {
				return wodomain.State{}, domain.ErrInvalidTransition
			}
			l.log.Warn().Str("work_order_id", id).Str("from", string(wo.Status)).
				Str("to", string(status)).Msg("transición fuera de la tabla")
		}
		return wodomain.UpdateStatus(l.state, id, status, notes, st), nil
	})
	if err == nil && !changed {
		l.log.Info().Str("work_order_id", id).Msg("cambio de estado sobre orden desconocida")
	}
	return state, err
}

// UpdateQuantities fusiona cantidades reales, de merma y de congelado.
func (l *Ledger) UpdateQuantities(ctx context.Context, id string, q wodomain.QuantityUpdate) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	state, changed, err := l.exec(ctx, "update_quantities", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.UpdateQuantities(l.state, id, q, st), nil
	})
	if !changed {
		l.log.Info().Str("work_order_id", id).Msg("cantidades sobre orden desconocida")
	}
	return state, err
}

// AddTimeEntry registra una marcación.
func (l *Ledger) AddTimeEntry(ctx context.Context, in wodomain.TimeEntryInput) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	state, _, err := l.exec(ctx, "add_time_entry", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.AddTimeEntry(l.state, in, st), nil
	})
	l.log.Debug().Str("work_order_id", in.WorkOrderID).Str("employee_id", in.EmployeeID).Msg("marcación registrada")
	return state, err
}

// EndTimeEntry cierra una marcación abierta.
func (l *Ledger) EndTimeEntry(ctx context.Context, id string) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	state, changed, err := l.exec(ctx, "end_time_entry", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.EndTimeEntry(l.state, id, st), nil
	})
	if !changed {
		l.log.Info().Str("time_entry_id", id).Msg("marcación ya cerrada o desconocida")
	}
	return state, err
}

// GenerateFromPlanning crea una orden desde una franja de planeación.
// Línea desconocida: área por defecto con aviso (modo estricto: domain.ErrUnknownProductionLine).
func (l *Ledger) GenerateFromPlanning(ctx context.Context, slot wodomain.PlanningSlot) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	if _, ok := wodomain.LookupArea(slot.Line); !ok {
		if l.strict {
			state, _ := l.Snapshot()
			return state, domain.ErrUnknownProductionLine
		}
		l.log.Warn().Str("line", slot.Line).Str("area", string(wodomain.DefaultArea)).
			Msg("línea de producción desconocida, se usa el área por defecto")
	}
	state, _, err := l.exec(ctx, "generate_from_planning", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.GenerateFromPlanning(l.state, slot, st)
	})
	if err != nil {
		return state, err
	}
	l.log.Info().Str("work_order_id", state.WorkOrders[0].ID).Str("planning_id", state.WorkOrders[0].ProductionPlanningID).
		Msg("orden generada desde planeación")
	return state, nil
}

// Create registra una orden creada directamente.
func (l *Ledger) Create(ctx context.Context, in wodomain.WorkOrderInput) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	if in.SKU == "" || (in.ProductionArea != "" && !in.ProductionArea.Valid()) || (in.Priority != "" && !in.Priority.Valid()) {
		return wodomain.State{}, domain.ErrInvalidInput
	}
	state, _, err := l.exec(ctx, "create", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.Create(l.state, in, st), nil
	})
	return state, err
}

// AssignEmployees agrega empleados a una orden.
func (l *Ledger) AssignEmployees(ctx context.Context, id string, employeeIDs []string) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	state, _, err := l.exec(ctx, "assign_employees", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.AssignEmployees(l.state, id, employeeIDs, st), nil
	})
	return state, err
}

// AddNote anexa una nota a una orden.
func (l *Ledger) AddNote(ctx context.Context, id, note string) (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	state, _, err := l.exec(ctx, "add_note", func(st wodomain.Stamp) (wodomain.State, error) {
		return wodomain.AddNote(l.state, id, note, st), nil
	})
	return state, err
}

// Snapshot copia profunda del estado vigente.
func (l *Ledger) Snapshot() (wodomain.State, error) {
	if !l.ready() {
		return wodomain.State{}, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone(), nil
}

// WorkOrders órdenes, más reciente primero.
func (l *Ledger) WorkOrders() ([]entity.WorkOrder, error) {
	s, err := l.Snapshot()
	return s.WorkOrders, err
}

// TimeEntries marcaciones, más reciente primero.
func (l *Ledger) TimeEntries() ([]entity.TimeEntry, error) {
	s, err := l.Snapshot()
	return s.TimeEntries, err
}

// Updates auditoría completa, más reciente primero.
func (l *Ledger) Updates() ([]entity.WorkOrderUpdate, error) {
	s, err := l.Snapshot()
	return s.Updates, err
}

// UpdatesFor auditoría de una orden, más reciente primero.
func (l *Ledger) UpdatesFor(workOrderID string) ([]entity.WorkOrderUpdate, error) {
	all, err := l.Updates()
	if err != nil {
		return nil, err
	}
	var out []entity.WorkOrderUpdate
	for _, u := range all {
		if u.WorkOrderID == workOrderID {
			out = append(out, u)
		}
	}
	return out, nil
}

// WorkOrder busca una orden por id.
func (l *Ledger) WorkOrder(id string) (entity.WorkOrder, bool, error) {
	if !l.ready() {
		return entity.WorkOrder{}, false, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	wo, _, ok := l.state.FindWorkOrder(id)
	return wo.Clone(), ok, nil
}

// ByPlanningID orden generada desde la franja indicada ("pp-<id>").
func (l *Ledger) ByPlanningID(planningID string) (entity.WorkOrder, bool, error) {
	if !l.ready() {
		return entity.WorkOrder{}, false, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	wo, ok := l.state.ByPlanningID(planningID)
	return wo, ok, nil
}

// OpenTimeEntries marcaciones abiertas de una orden (vacío = todas).
func (l *Ledger) OpenTimeEntries(workOrderID string) ([]entity.TimeEntry, error) {
	if !l.ready() {
		return nil, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.OpenTimeEntries(workOrderID), nil
}
