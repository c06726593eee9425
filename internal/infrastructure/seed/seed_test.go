package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-ops/internal/application/ports"
	appworkorder "github.com/jhoicas/bakery-ops/internal/application/workorder"
	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
)

func TestLoad_ArchivoDeEjemplo(t *testing.T) {
	s, err := Load("../../../config/seed.example.yaml")
	require.NoError(t, err)

	require.Len(t, s.Inventory.Lots, 4)
	assert.Equal(t, "lot-flour-a", s.Inventory.Lots[0].ID, "los lotes conservan el orden del archivo")
	assert.True(t, decimal.RequireFromString("12.5").Equal(s.Inventory.Lots[1].QtyOnHand))
	require.NotNil(t, s.Inventory.Lots[1].Expiration)
	assert.Equal(t, "2026-11-20", s.Inventory.Lots[1].Expiration.Format("2006-01-02"))
	assert.Nil(t, s.Inventory.Lots[3].Expiration)

	require.Len(t, s.Inventory.Transactions, 5)
	assert.Equal(t, "is-har-2610-1", s.Inventory.Transactions[0].ID, "transacciones de la más reciente a la más antigua")
	require.NotNil(t, s.Inventory.Transactions[0].Ref)
	assert.Equal(t, "wo-bread-0", s.Inventory.Transactions[0].Ref.WorkOrderID)
	assert.Equal(t, "seed-lot-butter-a", s.Inventory.Transactions[1].ID)
	assert.Empty(t, invdomain.Reconcile(s.Inventory))

	require.Len(t, s.WorkOrders.WorkOrders, 3)
	wo := s.WorkOrders.WorkOrders[0]
	assert.Equal(t, "wo-croissant-1", wo.ID, "órdenes de la más reciente a la más antigua")
	assert.Equal(t, entity.WorkOrderPending, wo.Status)
	assert.Equal(t, entity.PriorityHigh, wo.Priority)
	assert.Nil(t, wo.ActualStart)
	require.NotNil(t, wo.Recipe)
	assert.Len(t, wo.Recipe.Ingredients, 4)
	assert.True(t, decimal.RequireFromString("0.09").Equal(wo.Recipe.Ingredients[2].Qty))

	done := s.WorkOrders.WorkOrders[2]
	assert.Equal(t, entity.WorkOrderCompleted, done.Status)
	require.NotNil(t, done.ActualEnd)
	assert.Equal(t, time.Date(2026, 10, 16, 8, 20, 0, 0, time.UTC), *done.ActualEnd)
	assert.Equal(t, *done.ActualEnd, done.UpdatedAt)

	require.Len(t, s.WorkOrders.Updates, 2)
	assert.Equal(t, "upd-2", s.WorkOrders.Updates[0].ID)

	require.Len(t, s.WorkOrders.TimeEntries, 1)
	assert.True(t, s.WorkOrders.TimeEntries[0].Open())
	assert.Len(t, s.SKUs, 5)
	assert.Len(t, s.Locations, 3)
}

func TestParse_Errores(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"cantidad no numérica", `lots: [{id: l1, sku_id: a, location_id: x, qty_on_hand: mucho}]`},
		{"cantidad negativa", `lots: [{id: l1, sku_id: a, location_id: x, qty_on_hand: -1}]`},
		{"lote sin sku", `lots: [{id: l1, location_id: x, qty_on_hand: 1}]`},
		{"sku no declarado", "skus: [{id: b}]\nlots: [{id: l1, sku_id: a, location_id: x, qty_on_hand: 1}]"},
		{"id duplicado", `lots: [{id: l1, sku_id: a, location_id: x, qty_on_hand: 1}, {id: l1, sku_id: a, location_id: x, qty_on_hand: 2}]`},
		{"vencimiento inválido", `lots: [{id: l1, sku_id: a, location_id: x, qty_on_hand: 1, expiration: 15/12/2026}]`},
		{"estado inválido", `work_orders: [{id: w1, sku: A, planned_qty: 1, status: baking}]`},
		{"activa sin inicio real", `work_orders: [{id: w1, sku: A, planned_qty: 1, status: active}]`},
		{"pausada sin inicio real", `work_orders: [{id: w1, sku: A, planned_qty: 1, status: paused}]`},
		{"completada sin fin real", "work_orders:\n  - id: w1\n    sku: A\n    planned_qty: 1\n    status: completed\n    actual_start: 2026-10-19T04:00:00Z\n"},
		{"fin antes del inicio", "work_orders:\n  - id: w1\n    sku: A\n    planned_qty: 1\n    status: completed\n    actual_start: 2026-10-19T04:00:00Z\n    actual_end: 2026-10-19T03:00:00Z\n"},
		{"historial que no concilia", lotWithHistory("5", "    - id: t1\n      ts: 2026-10-01T00:00:00Z\n      type: receive\n      qty: 4\n")},
		{"tipo de transacción inválido", lotWithHistory("5", "    - id: t1\n      ts: 2026-10-01T00:00:00Z\n      type: gift\n      qty: 5\n")},
		{"transacción sin fecha", lotWithHistory("5", "    - id: t1\n      type: receive\n      qty: 5\n")},
		{"transacción duplicada", lotWithHistory("2", "    - id: t1\n      ts: 2026-10-01T00:00:00Z\n      type: receive\n      qty: 1\n    - id: t1\n      ts: 2026-10-02T00:00:00Z\n      type: receive\n      qty: 1\n")},
		{"auditoría sin orden", "updates:\n  - id: u1\n    work_order_id: nope\n    type: note_added\n    timestamp: 2026-10-19T04:00:00Z\n"},
		{"marcación sin orden", "time_entries:\n  - id: t1\n    work_order_id: nope\n    employee_id: e\n    start_time: 2026-10-19T04:00:00Z\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func lotWithHistory(qty, txns string) string {
	return "lots:\n  - id: l1\n    sku_id: a\n    location_id: x\n    qty_on_hand: " + qty + "\n    transactions:\n" + txns
}

func TestParse_YAMLMalformado(t *testing.T) {
	_, err := Parse([]byte("lots: ["))
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestParse_Vacio(t *testing.T) {
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Inventory.Lots)
	assert.Empty(t, s.WorkOrders.WorkOrders)
}

func TestParse_HistorialConAjusteRecortado(t *testing.T) {
	s, err := Parse([]byte(`
lots:
  - id: l1
    sku_id: flour
    location_id: cooler
    qty_on_hand: 0
    received_ts: 2026-10-01T06:00:00Z
    transactions:
      - id: t1
        ts: 2026-10-01T06:00:00Z
        type: receive
        qty: 3
      - id: t2
        ts: 2026-10-02T06:00:00Z
        type: adjust
        qty: -5
        applied_qty: -3
        notes: merma
`))
	require.NoError(t, err)
	require.Len(t, s.Inventory.Transactions, 2)
	adj := s.Inventory.Transactions[0]
	assert.Equal(t, "t2", adj.ID)
	assert.True(t, decimal.RequireFromString("-5").Equal(adj.Qty))
	assert.True(t, decimal.RequireFromString("-3").Equal(adj.AppliedQty))
	assert.Nil(t, adj.Ref)
	assert.Empty(t, invdomain.Reconcile(s.Inventory))
}

func TestParse_OrdenEnCursoConservaInicioReal(t *testing.T) {
	s, err := Parse([]byte(`
work_orders:
  - id: wo-001
    sku: BAGUETTE
    planned_qty: 40
    status: active
    scheduled_start: 2025-08-11T06:00:00Z
    actual_start: 2025-08-11T06:15:00Z
    created_at: 2025-08-10T18:00:00Z
`))
	require.NoError(t, err)
	wo := s.WorkOrders.WorkOrders[0]
	started := time.Date(2025, 8, 11, 6, 15, 0, 0, time.UTC)
	require.NotNil(t, wo.ActualStart)
	assert.Equal(t, started, *wo.ActualStart)
	assert.Equal(t, started, wo.UpdatedAt, "updated_at no queda antes del inicio real")

	clock := time.Date(2025, 8, 11, 8, 0, 0, 0, time.UTC)
	n := 0
	ledger := appworkorder.NewLedger(
		ports.ClockFunc(func() time.Time { return clock }),
		ports.IDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		appworkorder.WithInitialState(s.WorkOrders),
	)
	ctx := context.Background()
	_, err = ledger.UpdateStatus(ctx, "wo-001", entity.WorkOrderPaused, "")
	require.NoError(t, err)
	clock = time.Date(2025, 8, 11, 9, 0, 0, 0, time.UTC)
	_, err = ledger.UpdateStatus(ctx, "wo-001", entity.WorkOrderActive, "")
	require.NoError(t, err)

	got, ok, err := ledger.WorkOrder("wo-001")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.ActualStart)
	assert.Equal(t, started, *got.ActualStart, "reanudar no vuelve a fijar el inicio real")
}
