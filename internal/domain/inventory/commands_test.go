package inventory_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	"github.com/jhoicas/bakery-ops/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	seq     int
)

// stamp usa un contador de paquete para que los ids no se repitan entre comandos.
func stamp() inventory.Stamp {
	return inventory.Stamp{
		Now: testNow,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%04d", seq)
		},
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// receiveAll agrega lotes en orden y devuelve el estado y los ids asignados.
func receiveAll(t *testing.T, inputs ...inventory.ReceiveInput) (inventory.State, []string) {
	t.Helper()
	st := stamp()
	s := inventory.State{}
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		s = inventory.Receive(s, in, st)
		ids = append(ids, s.Lots[len(s.Lots)-1].ID)
	}
	return s, ids
}

func qtys(s inventory.State, ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		l, _, _ := s.FindLot(id)
		out = append(out, l.QtyOnHand.String())
	}
	return out
}

func assertReconciled(t *testing.T, s inventory.State) {
	t.Helper()
	assert.Empty(t, inventory.Reconcile(s), "cada lote debe cuadrar con sus transacciones")
	for _, l := range s.Lots {
		assert.False(t, l.QtyOnHand.IsNegative(), "el lote %s no puede quedar negativo", l.ID)
	}
}

func flour(qty int64, exp *time.Time) inventory.ReceiveInput {
	return inventory.ReceiveInput{
		SKUID: "flour-001", LotCode: "FL", QtyOnHand: dec(qty),
		LocationID: "dry-storage", Expiration: exp, Supplier: "King Arthur",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_CreaLoteYTransaccion(t *testing.T) {
	s, ids := receiveAll(t, flour(12, date(2026, 12, 1)))

	require.Len(t, s.Lots, 1)
	require.Len(t, s.Transactions, 1)
	lot := s.Lots[0]
	assert.Equal(t, ids[0], lot.ID)
	assert.Equal(t, testNow, lot.ReceivedTs, "sin ReceivedTs se usa el instante del comando")
	assert.True(t, lot.QtyOnHand.Equal(dec(12)))

	txn := s.Transactions[0]
	assert.Equal(t, entity.LotTxnTypeReceive, txn.Type)
	assert.Equal(t, lot.ID, txn.LotID)
	assert.True(t, txn.Qty.Equal(dec(12)))
	assertReconciled(t, s)
}

func TestReceive_RespetaReceivedTsExplicito(t *testing.T) {
	ts := time.Date(2026, 10, 1, 6, 30, 0, 0, time.UTC)
	in := flour(5, nil)
	in.ReceivedTs = &ts
	s, _ := receiveAll(t, in)
	assert.Equal(t, ts, s.Lots[0].ReceivedTs)
}

func TestReceive_NoModificaEstadoOriginal(t *testing.T) {
	s0, _ := receiveAll(t, flour(5, nil))
	snapshot := s0.Clone()

	_ = inventory.Receive(s0, flour(7, nil), stamp())
	assert.Equal(t, snapshot, s0)
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue FEFO
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_FEFOConsumePrimeroElQueVenceAntes(t *testing.T) {
	// Alta en orden "sin vencimiento, marzo, enero" para verificar que manda la fecha.
	s, ids := receiveAll(t,
		flour(5, nil),
		flour(5, date(2025, 3, 1)),
		flour(5, date(2025, 1, 1)),
	)
	noExp, march, january := ids[0], ids[1], ids[2]

	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(7)}, stamp())

	assert.Equal(t, []string{"0", "3", "5"}, qtys(s, january, march, noExp))
	summary := inventory.SummarizeIssue(dec(7), s.Transactions[:2])
	assert.True(t, summary.Issued.Equal(dec(7)))
	assert.False(t, summary.Partial())
	assertReconciled(t, s)
}

func TestIssue_FEFOEmpateConservaOrdenDeAlta(t *testing.T) {
	s, ids := receiveAll(t,
		flour(4, date(2026, 1, 1)),
		flour(4, date(2026, 1, 1)),
	)
	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(5)}, stamp())
	assert.Equal(t, []string{"0", "3"}, qtys(s, ids[0], ids[1]))
}

func TestIssue_ParcialNoEsError(t *testing.T) {
	s, ids := receiveAll(t,
		flour(5, date(2025, 1, 1)),
		flour(2, nil),
	)
	before := len(s.Transactions)
	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(100)}, stamp())

	emitted := s.Transactions[:len(s.Transactions)-before]
	total := decimal.Zero
	for _, txn := range emitted {
		assert.Equal(t, entity.LotTxnTypeIssue, txn.Type)
		total = total.Add(txn.Qty)
	}
	assert.True(t, total.Equal(dec(-7)), "se emite exactamente lo disponible")
	assert.Equal(t, []string{"0", "0"}, qtys(s, ids...))

	summary := inventory.SummarizeIssue(dec(100), emitted)
	assert.True(t, summary.Shortfall.Equal(dec(93)))
	assert.True(t, summary.Partial())
	assertReconciled(t, s)
}

func TestIssue_IgnoraOtrosSKUsYLotesVacios(t *testing.T) {
	sugar := flour(9, date(2024, 1, 1))
	sugar.SKUID = "sugar-001"
	s, ids := receiveAll(t, sugar, flour(0, date(2024, 6, 1)), flour(3, date(2027, 1, 1)))

	before := len(s.Transactions)
	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(2)}, stamp())

	assert.Equal(t, []string{"9", "0", "1"}, qtys(s, ids...))
	assert.Len(t, s.Transactions, before+1, "el lote en cero no genera transacción")
}

func TestIssue_PropagaReferencia(t *testing.T) {
	s, _ := receiveAll(t, flour(5, nil))
	ref := &entity.LotTxnRef{WorkOrderID: "wo-001"}
	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(1), Ref: ref}, stamp())

	require.NotNil(t, s.Transactions[0].Ref)
	assert.Equal(t, "wo-001", s.Transactions[0].Ref.WorkOrderID)
	ref.WorkOrderID = "cambiado"
	assert.Equal(t, "wo-001", s.Transactions[0].Ref.WorkOrderID, "la referencia se copia")
}

func TestIssue_CantidadNoPositivaEsNoOp(t *testing.T) {
	s, _ := receiveAll(t, flour(5, nil))
	out := inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(0)}, stamp())
	assert.Equal(t, s, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue manual
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_ManualSoloLotesSeleccionados(t *testing.T) {
	s, ids := receiveAll(t,
		flour(5, date(2025, 1, 1)),
		flour(5, date(2025, 6, 1)),
		flour(5, date(2025, 9, 1)),
	)
	s = inventory.Issue(s, inventory.IssueParams{
		SKUID:    "flour-001",
		Qty:      dec(6),
		Strategy: inventory.StrategyManual,
		Selections: []inventory.Selection{
			{LotID: ids[2], Qty: dec(4)},
			{LotID: ids[1], Qty: dec(10)},
		},
	}, stamp())

	// Se recorren en orden del libro: ids[1] cubre min(6, 10, 5)=5, ids[2] cubre min(1, 4)=1.
	assert.Equal(t, []string{"5", "0", "4"}, qtys(s, ids...))
	assertReconciled(t, s)
}

func TestIssue_ManualNoSobrepasaExistencia(t *testing.T) {
	s, ids := receiveAll(t, flour(3, nil))
	s = inventory.Issue(s, inventory.IssueParams{
		SKUID: "flour-001", Qty: dec(10), Strategy: inventory.StrategyManual,
		Selections: []inventory.Selection{{LotID: ids[0], Qty: dec(10)}},
	}, stamp())
	assert.Equal(t, []string{"0"}, qtys(s, ids...))
	assertReconciled(t, s)
}

func TestIssue_ManualSinSeleccionesEsNoOp(t *testing.T) {
	s, _ := receiveAll(t, flour(3, nil))
	out := inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(2), Strategy: inventory.StrategyManual}, stamp())
	assert.Equal(t, s, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_ConservaCantidadYProcedencia(t *testing.T) {
	s, ids := receiveAll(t, flour(10, date(2026, 12, 1)))
	src := s.Lots[0]

	s = inventory.Transfer(s, ids[0], "cooler-2", dec(4), stamp())

	require.Len(t, s.Lots, 2)
	moved := s.Lots[1]
	assert.Equal(t, "cooler-2", moved.LocationID)
	assert.Equal(t, src.SKUID, moved.SKUID)
	assert.Equal(t, src.LotCode, moved.LotCode)
	assert.Equal(t, src.Supplier, moved.Supplier)
	assert.Equal(t, src.ReceivedTs, moved.ReceivedTs)
	assert.Equal(t, *src.Expiration, *moved.Expiration)
	assert.NotEqual(t, src.ID, moved.ID)

	after, _, _ := s.FindLot(ids[0])
	assert.True(t, src.QtyOnHand.Equal(after.QtyOnHand.Add(moved.QtyOnHand)))

	in, out := s.Transactions[0], s.Transactions[1]
	assert.Equal(t, entity.LotTxnTypeTransfer, in.Type)
	assert.Equal(t, entity.LotTxnTypeTransfer, out.Type)
	assert.Equal(t, moved.ID, in.LotID)
	assert.Equal(t, ids[0], out.LotID)
	assert.True(t, in.Qty.Equal(dec(4)))
	assert.True(t, out.Qty.Equal(dec(-4)))
	assert.Equal(t, in.Ts, out.Ts)
	assertReconciled(t, s)
}

func TestTransfer_MasDeLoDisponibleMueveSoloLoDisponible(t *testing.T) {
	s, ids := receiveAll(t, flour(3, nil))
	s = inventory.Transfer(s, ids[0], "cooler-2", dec(50), stamp())

	assert.Equal(t, []string{"0"}, qtys(s, ids[0]))
	assert.True(t, s.Lots[1].QtyOnHand.Equal(dec(3)))
	assertReconciled(t, s)
}

func TestTransfer_LoteDesconocidoEsNoOp(t *testing.T) {
	s, _ := receiveAll(t, flour(3, nil))
	out := inventory.Transfer(s, "no-existe", "cooler-2", dec(1), stamp())
	assert.Equal(t, s, out)
}

func TestTransfer_LoteVacioEsNoOp(t *testing.T) {
	s, ids := receiveAll(t, flour(0, nil))
	out := inventory.Transfer(s, ids[0], "cooler-2", dec(1), stamp())
	assert.Equal(t, s, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_AplicaDeltaConNotas(t *testing.T) {
	s, ids := receiveAll(t, flour(10, nil))
	s = inventory.Adjust(s, ids[0], dec(-3), "conteo físico", stamp())

	assert.Equal(t, []string{"7"}, qtys(s, ids...))
	txn := s.Transactions[0]
	assert.Equal(t, entity.LotTxnTypeAdjust, txn.Type)
	assert.Equal(t, "conteo físico", txn.Notes)
	assert.True(t, txn.Qty.Equal(dec(-3)))
	assertReconciled(t, s)
}

func TestAdjust_RecortaEnCeroYRegistraDeltaSolicitado(t *testing.T) {
	s, ids := receiveAll(t, flour(4, nil))
	s = inventory.Adjust(s, ids[0], dec(-10), "merma", stamp())

	assert.Equal(t, []string{"0"}, qtys(s, ids...))
	txn := s.Transactions[0]
	assert.True(t, txn.Qty.Equal(dec(-10)), "Qty conserva el delta solicitado")
	assert.True(t, txn.AppliedQty.Equal(dec(-4)), "AppliedQty refleja el efecto real")
	assertReconciled(t, s)
}

func TestAdjust_LoteDesconocidoEsNoOp(t *testing.T) {
	s, _ := receiveAll(t, flour(4, nil))
	out := inventory.Adjust(s, "no-existe", dec(5), "", stamp())
	assert.Equal(t, s, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades sobre secuencias
// ──────────────────────────────────────────────────────────────────────────────

func TestSecuenciaMixta_CuadraYNoQuedaNegativo(t *testing.T) {
	s, ids := receiveAll(t,
		flour(20, date(2026, 11, 1)),
		flour(15, date(2026, 10, 25)),
		flour(8, nil),
	)
	st := stamp()
	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(18)}, st)
	assertReconciled(t, s)
	s = inventory.Transfer(s, ids[0], "line-1", dec(6), st)
	assertReconciled(t, s)
	s = inventory.Adjust(s, ids[2], dec(-50), "derrame", st)
	assertReconciled(t, s)
	s = inventory.Issue(s, inventory.IssueParams{SKUID: "flour-001", Qty: dec(1000)}, st)
	assertReconciled(t, s)
	s = inventory.Adjust(s, ids[1], dec(2), "reconteo", st)
	assertReconciled(t, s)

	assert.True(t, s.Available("flour-001").Equal(dec(2)))
	assert.Len(t, s.Lots, 4, "los lotes en cero no se eliminan")
}

func TestTransactionsForLot_Trazabilidad(t *testing.T) {
	s, ids := receiveAll(t, flour(10, nil), flour(10, nil))
	st := stamp()
	s = inventory.Adjust(s, ids[0], dec(-1), "", st)
	s = inventory.Adjust(s, ids[1], dec(-2), "", st)

	hist := s.TransactionsForLot(ids[0])
	require.Len(t, hist, 2)
	assert.Equal(t, entity.LotTxnTypeAdjust, hist[0].Type, "más reciente primero")
	assert.Equal(t, entity.LotTxnTypeReceive, hist[1].Type)
}

func TestSortFEFO_SinVencimientoAlFinal(t *testing.T) {
	lots := []entity.Lot{
		{ID: "a"},
		{ID: "b", Expiration: date(2026, 5, 1)},
		{ID: "c", Expiration: date(2026, 1, 1)},
	}
	sorted := inventory.SortFEFO(lots)
	got := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	assert.Equal(t, []string{"c", "b", "a"}, got)
	assert.Equal(t, "a", lots[0].ID, "no reordena el slice original")
}
