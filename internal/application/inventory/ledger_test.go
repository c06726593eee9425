package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-ops/internal/application/inventory"
	"github.com/jhoicas/bakery-ops/internal/application/ports"
	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 10, 18, 5, 30, 0, 0, time.UTC)

func fixedClock() ports.Clock { return ports.ClockFunc(func() time.Time { return testNow }) }

func seqIDs() ports.IDGenerator {
	var mu sync.Mutex
	n := 0
	return ports.IDFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	})
}

type journalSpy struct {
	lots [][]entity.Lot
	txns [][]entity.LotTransaction
	err  error
}

func (j *journalSpy) RecordLotChanges(_ context.Context, lots []entity.Lot, txns []entity.LotTransaction) error {
	j.lots = append(j.lots, lots)
	j.txns = append(j.txns, txns)
	return j.err
}

type metricsSpy struct {
	mu        sync.Mutex
	commands  map[string]int
	unchanged int
	shortfall map[string]float64
}

func newMetricsSpy() *metricsSpy {
	return &metricsSpy{commands: map[string]int{}, shortfall: map[string]float64{}}
}

func (m *metricsSpy) ObserveCommand(ledger, command string, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[ledger+"/"+command]++
	if !changed {
		m.unchanged++
	}
}

func (m *metricsSpy) ObserveShortfall(sku string, qty float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortfall[sku] += qty
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func receive(t *testing.T, l *inventory.Ledger, sku string, qty int64, exp *time.Time) string {
	t.Helper()
	s, _, err := l.Receive(context.Background(), invdomain.ReceiveInput{
		SKUID: sku, LotCode: "L-" + sku, QtyOnHand: dec(qty), LocationID: "dry-storage", Expiration: exp,
	})
	require.NoError(t, err)
	return s.Lots[len(s.Lots)-1].ID
}

func day(m time.Month, d int) *time.Time {
	t := time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_NoInicializado(t *testing.T) {
	var nilLedger *inventory.Ledger
	_, _, err := nilLedger.Receive(context.Background(), invdomain.ReceiveInput{})
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)

	var zero inventory.Ledger
	_, _, err = zero.Issue(context.Background(), invdomain.IssueParams{})
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)
	_, err = zero.Lots()
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)
	_, err = zero.Available("x")
	assert.ErrorIs(t, err, domain.ErrLedgerNotInitialized)
}

func TestLedger_IssueFEFOConResumen(t *testing.T) {
	metrics := newMetricsSpy()
	l := inventory.NewLedger(fixedClock(), seqIDs(), inventory.WithMetrics(metrics))
	first := receive(t, l, "flour", 5, day(1, 1))
	second := receive(t, l, "flour", 5, day(3, 1))
	third := receive(t, l, "flour", 5, nil)

	s, summary, err := l.Issue(context.Background(), invdomain.IssueParams{
		SKUID: "flour", Qty: dec(7), Ref: &entity.LotTxnRef{WorkOrderID: "wo-1"},
	})
	require.NoError(t, err)
	assert.False(t, summary.Partial())
	assert.Equal(t, "7", summary.Issued.String())
	require.Len(t, summary.Transactions, 2)
	assert.Equal(t, "wo-1", summary.Transactions[0].Ref.WorkOrderID)

	byID := map[string]string{}
	for _, lot := range s.Lots {
		byID[lot.ID] = lot.QtyOnHand.String()
	}
	assert.Equal(t, "0", byID[first])
	assert.Equal(t, "3", byID[second])
	assert.Equal(t, "5", byID[third])
	assert.Equal(t, 1, metrics.commands["inventory/issue"])
}

func TestLedger_IssueParcialReportaFaltante(t *testing.T) {
	metrics := newMetricsSpy()
	l := inventory.NewLedger(fixedClock(), seqIDs(), inventory.WithMetrics(metrics))
	receive(t, l, "sugar", 4, nil)
	receive(t, l, "sugar", 3, nil)

	s, summary, err := l.Issue(context.Background(), invdomain.IssueParams{SKUID: "sugar", Qty: dec(100)})
	require.NoError(t, err, "un consumo parcial no es error")
	assert.True(t, summary.Partial())
	assert.Equal(t, "7", summary.Issued.String())
	assert.Equal(t, "93", summary.Shortfall.String())
	assert.InDelta(t, 93.0, metrics.shortfall["sugar"], 0.0001)
	for _, lot := range s.Lots {
		assert.True(t, lot.QtyOnHand.IsZero())
	}
	assert.Empty(t, invdomain.Reconcile(s))
}

func TestLedger_ComandosSinEfecto(t *testing.T) {
	metrics := newMetricsSpy()
	journal := &journalSpy{}
	l := inventory.NewLedger(fixedClock(), seqIDs(), inventory.WithMetrics(metrics), inventory.WithJournal(journal))
	receive(t, l, "salt", 2, nil)
	before, err := l.Snapshot()
	require.NoError(t, err)

	after, emitted, err := l.Transfer(context.Background(), "no-existe", "cooler", dec(1))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, emitted)

	after, emitted, err = l.Adjust(context.Background(), "no-existe", dec(-1), "")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, emitted)

	assert.Equal(t, 2, metrics.unchanged)
	assert.Len(t, journal.txns, 1, "solo la recepción llega al diario")
}

func TestLedger_DiarioRecibeLotesYTransacciones(t *testing.T) {
	journal := &journalSpy{}
	l := inventory.NewLedger(fixedClock(), seqIDs(), inventory.WithJournal(journal))
	lotID := receive(t, l, "yeast", 10, day(2, 1))

	_, emitted, err := l.Transfer(context.Background(), lotID, "cooler", dec(4))
	require.NoError(t, err)
	assert.Len(t, emitted, 2)

	require.Len(t, journal.txns, 2)
	transfer := journal.txns[1]
	require.Len(t, transfer, 2)
	assert.Equal(t, entity.LotTxnTypeTransfer, transfer[0].Type)
	assert.Equal(t, "4", transfer[0].Qty.String())
	assert.Equal(t, "-4", transfer[1].Qty.String())
	require.Len(t, journal.lots[1], 2)
	assert.Equal(t, "cooler", journal.lots[1][0].LocationID)
	assert.Equal(t, "6", journal.lots[1][1].QtyOnHand.String())
}

func TestLedger_ErrorDelDiarioNoInterrumpe(t *testing.T) {
	journal := &journalSpy{err: errors.New("db caída")}
	l := inventory.NewLedger(fixedClock(), seqIDs(), inventory.WithJournal(journal))
	lotID := receive(t, l, "butter", 3, nil)

	lot, ok, err := l.Lot(lotID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", lot.QtyOnHand.String())
}

func TestLedger_SnapshotsSonCopias(t *testing.T) {
	l := inventory.NewLedger(fixedClock(), seqIDs())
	lotID := receive(t, l, "milk", 8, day(1, 5))

	lots, err := l.Lots()
	require.NoError(t, err)
	lots[0].QtyOnHand = dec(999)
	*lots[0].Expiration = time.Time{}

	again, _, err := l.Lot(lotID)
	require.NoError(t, err)
	assert.Equal(t, "8", again.QtyOnHand.String())
	assert.Equal(t, *day(1, 5), *again.Expiration)
}

func TestLedger_ConsultasAuxiliares(t *testing.T) {
	l := inventory.NewLedger(fixedClock(), seqIDs(),
		inventory.WithInitialState(invdomain.State{}))
	a := receive(t, l, "eggs", 12, nil)
	receive(t, l, "eggs", 6, nil)
	receive(t, l, "cocoa", 1, nil)

	_, _, err := l.Adjust(context.Background(), a, dec(-20), "rotos")
	require.NoError(t, err)

	avail, err := l.Available("eggs")
	require.NoError(t, err)
	assert.Equal(t, "6", avail.String())

	bySKU, err := l.LotsBySKU("eggs")
	require.NoError(t, err)
	assert.Len(t, bySKU, 2)

	hist, err := l.TransactionsForLot(a)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, entity.LotTxnTypeAdjust, hist[0].Type)
	assert.Equal(t, "-20", hist[0].Qty.String())
	assert.Equal(t, "-12", hist[0].AppliedQty.String())

	txns, err := l.Transactions()
	require.NoError(t, err)
	assert.Equal(t, hist[0].ID, txns[0].ID, "la más reciente primero")
}

func TestLedger_ComandosConcurrentesCuadran(t *testing.T) {
	l := inventory.NewLedger(fixedClock(), seqIDs())
	for i := 0; i < 5; i++ {
		receive(t, l, "flour", 20, day(time.Month(i+1), 1))
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = l.Issue(context.Background(), invdomain.IssueParams{SKUID: "flour", Qty: dec(3)})
		}()
	}
	wg.Wait()

	s, err := l.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, invdomain.Reconcile(s))
	assert.True(t, s.Available("flour").IsZero(), "100 disponibles, 120 solicitados")
}

// slowJournal retiene la primera escritura hasta que el test la libera.
type slowJournal struct {
	entered chan struct{}
	release chan struct{}
}

func (j *slowJournal) RecordLotChanges(context.Context, []entity.Lot, []entity.LotTransaction) error {
	j.entered <- struct{}{}
	<-j.release
	return nil
}

func TestLedger_DiarioLentoNoBloqueaLecturas(t *testing.T) {
	journal := &slowJournal{entered: make(chan struct{}), release: make(chan struct{})}
	l := inventory.NewLedger(fixedClock(), seqIDs(), inventory.WithJournal(journal))

	done := make(chan error, 1)
	go func() {
		_, _, err := l.Receive(context.Background(), invdomain.ReceiveInput{
			SKUID: "flour", QtyOnHand: dec(25), LocationID: "dry-storage",
		})
		done <- err
	}()
	<-journal.entered

	read := make(chan decimal.Decimal, 1)
	go func() {
		avail, _ := l.Available("flour")
		read <- avail
	}()
	select {
	case avail := <-read:
		assert.Equal(t, "25", avail.String(), "la lectura ve el comando ya aplicado")
	case <-time.After(2 * time.Second):
		t.Fatal("la lectura quedó esperando al diario")
	}

	close(journal.release)
	require.NoError(t, <-done)
}
