package workorder_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-ops/internal/application/ports"
	"github.com/jhoicas/bakery-ops/internal/application/workorder"
	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	wodomain "github.com/jhoicas/bakery-ops/internal/domain/workorder"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *manualClock {
	return &manualClock{now: time.Date(2026, 10, 18, 4, 0, 0, 0, time.UTC)}
}

func seqIDs() ports.IDGenerator {
	var mu sync.Mutex
	n := 0
	return ports.IDFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("wo-%03d", n)
	})
}

type journalSpy struct {
	orders  []entity.WorkOrder
	updates []entity.WorkOrderUpdate
	entries []entity.TimeEntry
}

func (j *journalSpy) RecordWorkOrderChanges(_ context.Context, orders []entity.WorkOrder, updates []entity.WorkOrderUpdate) error {
	j.orders = append(j.orders, orders...)
	j.updates = append(j.updates, updates...)
	return nil
}

func (j *journalSpy) RecordTimeEntries(_ context.Context, entries []entity.TimeEntry) error {
	j.entries = append(j.entries, entries...)
	return nil
}

func slot(id int, line string) wodomain.PlanningSlot {
	return wodomain.PlanningSlot{
		ID: id, SKU: "CIABATTA", Line: line, TimeSlot: "05:00-07:00", PansFromOrders: 10, PansStandard: 5,
	}
}

func generate(t *testing.T, l *workorder.Ledger, id int) string {
	t.Helper()
	s, err := l.GenerateFromPlanning(context.Background(), slot(id, "Bake Room"))
	require.NoError(t, err)
	return s.WorkOrders[0].ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_NoInicializado(t *testing.T) {
	var l *workorder.Ledger
	_, err := l.UpdateStatus(context.Background(), "x", entity.WorkOrderActive, "")
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)
	_, err = l.GenerateFromPlanning(context.Background(), slot(1, "Bake Room"))
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)
	_, _, err = l.ByPlanningID("pp-1")
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)
}

func TestLedger_GeneraYBuscaPorPlaneacion(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs())
	id := generate(t, l, 12)

	wo, ok, err := l.ByPlanningID("pp-12")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, wo.ID)
	assert.Equal(t, "15", wo.PlannedQty.String())
	assert.Equal(t, entity.AreaBakeRoom, wo.ProductionArea)

	_, ok, err = l.ByPlanningID("pp-99")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_ActorDelContexto(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs())
	id := generate(t, l, 1)

	ctx := ports.WithActor(context.Background(), "Rosa Pérez")
	_, err := l.UpdateStatus(ctx, id, entity.WorkOrderActive, "")
	require.NoError(t, err)
	_, err = l.UpdateStatus(context.Background(), id, entity.WorkOrderPaused, "")
	require.NoError(t, err)

	updates, err := l.UpdatesFor(id)
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, wodomain.DefaultActor, updates[0].UpdatedBy)
	assert.Equal(t, "Rosa Pérez", updates[1].UpdatedBy)
	assert.Equal(t, wodomain.PlanningActor, updates[2].UpdatedBy)
}

func TestLedger_PermisivoAceptaTransicionFueraDeTabla(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs())
	id := generate(t, l, 1)

	s, err := l.UpdateStatus(context.Background(), id, entity.WorkOrderCompleted, "")
	require.NoError(t, err)
	wo, _, _ := s.FindWorkOrder(id)
	assert.Equal(t, entity.WorkOrderCompleted, wo.Status)
	assert.NotNil(t, wo.ActualEnd)
}

func TestLedger_EstrictoRechazaTransicionIlegal(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs(), workorder.WithStrictTransitions(true))
	id := generate(t, l, 1)
	before, err := l.Snapshot()
	require.NoError(t, err)

	s, err := l.UpdateStatus(context.Background(), id, entity.WorkOrderCompleted, "")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, before, s)

	_, err = l.UpdateStatus(context.Background(), id, entity.WorkOrderActive, "")
	require.NoError(t, err)
}

func TestLedger_EstadoInvalido(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs())
	_, err := l.UpdateStatus(context.Background(), "x", entity.WorkOrderStatus("baking"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_LineaDesconocida(t *testing.T) {
	lenient := workorder.NewLedger(newClock(), seqIDs())
	s, err := lenient.GenerateFromPlanning(context.Background(), slot(3, "Garage"))
	require.NoError(t, err)
	assert.Equal(t, wodomain.DefaultArea, s.WorkOrders[0].ProductionArea)

	strict := workorder.NewLedger(newClock(), seqIDs(), workorder.WithStrictTransitions(true))
	_, err = strict.GenerateFromPlanning(context.Background(), slot(3, "Garage"))
	assert.ErrorIs(t, err, domain.ErrUnknownProductionLine)
}

func TestLedger_FranjaInvalida(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs())
	bad := slot(4, "Bake Room")
	bad.TimeSlot = "temprano"
	_, err := l.GenerateFromPlanning(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeSlot)

	orders, err := l.WorkOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestLedger_MarcacionesYCantidades(t *testing.T) {
	clock := newClock()
	l := workorder.NewLedger(clock, seqIDs())
	id := generate(t, l, 1)

	s, err := l.AddTimeEntry(context.Background(), wodomain.TimeEntryInput{
		WorkOrderID: id, EmployeeID: "emp-1", EmployeeName: "Iván", StartTime: clock.Now(),
	})
	require.NoError(t, err)
	entryID := s.TimeEntries[0].ID

	open, err := l.OpenTimeEntries(id)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	clock.Advance(2 * time.Hour)
	_, err = l.EndTimeEntry(context.Background(), entryID)
	require.NoError(t, err)
	open, err = l.OpenTimeEntries("")
	require.NoError(t, err)
	assert.Empty(t, open)

	waste := decimal.NewFromInt(2)
	_, err = l.UpdateQuantities(context.Background(), id, wodomain.QuantityUpdate{WasteQty: &waste})
	require.NoError(t, err)
	wo, ok, err := l.WorkOrder(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", wo.WasteQty.String())
	assert.Nil(t, wo.ActualQty)
}

func TestLedger_CreateValidaEnumerados(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs())
	_, err := l.Create(context.Background(), wodomain.WorkOrderInput{SKU: "X", Priority: "asap"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.Create(context.Background(), wodomain.WorkOrderInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s, err := l.Create(context.Background(), wodomain.WorkOrderInput{
		SKU: "BRIOCHE", ProductionArea: entity.AreaFinishing, PlannedQty: decimal.NewFromInt(40),
		Priority: entity.PriorityUrgent, AssignedEmployees: []string{"e1"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityUrgent, s.WorkOrders[0].Priority)

	s, err = l.AssignEmployees(context.Background(), s.WorkOrders[0].ID, []string{"e2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, s.WorkOrders[0].AssignedEmployees)

	s, err = l.AddNote(context.Background(), s.WorkOrders[0].ID, "sin azúcar")
	require.NoError(t, err)
	assert.Equal(t, entity.UpdateTypeNoteAdded, s.Updates[0].Type)
}

func TestLedger_DiarioSoloRecibeCambios(t *testing.T) {
	journal := &journalSpy{}
	l := workorder.NewLedger(newClock(), seqIDs(), workorder.WithJournal(journal))
	id := generate(t, l, 8)

	_, err := l.UpdateStatus(context.Background(), "no-existe", entity.WorkOrderActive, "")
	require.NoError(t, err)
	_, err = l.UpdateStatus(context.Background(), id, entity.WorkOrderActive, "")
	require.NoError(t, err)
	_, err = l.AddTimeEntry(context.Background(), wodomain.TimeEntryInput{WorkOrderID: id, EmployeeID: "e"})
	require.NoError(t, err)

	require.Len(t, journal.orders, 2)
	assert.Equal(t, entity.WorkOrderPending, journal.orders[0].Status)
	assert.Equal(t, entity.WorkOrderActive, journal.orders[1].Status)
	require.Len(t, journal.updates, 2)
	assert.Equal(t, entity.UpdateTypeStatusChange, journal.updates[1].Type)
	assert.Len(t, journal.entries, 1)
}

func TestLedger_ConsultasDevuelvenCopias(t *testing.T) {
	l := workorder.NewLedger(newClock(), seqIDs(),
		workorder.WithInitialState(wodomain.State{}))
	id := generate(t, l, 1)
	_, err := l.AssignEmployees(context.Background(), id, []string{"e1"})
	require.NoError(t, err)

	orders, err := l.WorkOrders()
	require.NoError(t, err)
	orders[0].AssignedEmployees[0] = "otro"

	wo, _, err := l.WorkOrder(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, wo.AssignedEmployees)
}

type slowJournal struct {
	journalSpy
	entered chan struct{}
	release chan struct{}
}

func (j *slowJournal) RecordWorkOrderChanges(ctx context.Context, orders []entity.WorkOrder, updates []entity.WorkOrderUpdate) error {
	j.entered <- struct{}{}
	<-j.release
	return j.journalSpy.RecordWorkOrderChanges(ctx, orders, updates)
}

func TestLedger_DiarioLentoNoBloqueaLecturas(t *testing.T) {
	journal := &slowJournal{entered: make(chan struct{}), release: make(chan struct{})}
	l := workorder.NewLedger(newClock(), seqIDs(), workorder.WithJournal(journal))

	done := make(chan error, 1)
	go func() {
		_, err := l.GenerateFromPlanning(context.Background(), slot(7, "Bake Room"))
		done <- err
	}()
	<-journal.entered

	read := make(chan bool, 1)
	go func() {
		_, ok, _ := l.ByPlanningID("pp-7")
		read <- ok
	}()
	select {
	case ok := <-read:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("la lectura quedó esperando al diario")
	}

	close(journal.release)
	require.NoError(t, <-done)
	require.Len(t, journal.orders, 1)
	assert.Equal(t, "pp-7", journal.orders[0].ProductionPlanningID)
}
