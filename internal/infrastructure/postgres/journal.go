package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	appworkorder "github.com/jhoicas/bakery-ops/internal/application/workorder"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

var (
	_ appinventory.Journal = (*Journal)(nil)
	_ appworkorder.Journal = (*Journal)(nil)
)

// schema tablas del diario. Lotes, órdenes y marcaciones se reflejan con upsert;
// transacciones y auditoría son de solo anexado.
const schema = `
CREATE TABLE IF NOT EXISTS lots (
	id           TEXT PRIMARY KEY,
	sku_id       TEXT NOT NULL,
	lot_code     TEXT NOT NULL,
	qty_on_hand  NUMERIC NOT NULL,
	location_id  TEXT NOT NULL,
	expiration   TIMESTAMPTZ,
	supplier     TEXT,
	received_ts  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS lot_transactions (
	id                TEXT PRIMARY KEY,
	lot_id            TEXT NOT NULL,
	ts                TIMESTAMPTZ NOT NULL,
	type              TEXT NOT NULL,
	qty               NUMERIC NOT NULL,
	applied_qty       NUMERIC NOT NULL,
	purchase_order_id TEXT,
	work_order_id     TEXT,
	sales_order_id    TEXT,
	notes             TEXT
);
CREATE INDEX IF NOT EXISTS idx_lot_transactions_lot ON lot_transactions (lot_id, ts);
CREATE TABLE IF NOT EXISTS work_orders (
	id                     TEXT PRIMARY KEY,
	wo_number              TEXT NOT NULL,
	sku                    TEXT NOT NULL,
	production_area        TEXT NOT NULL,
	planned_qty            NUMERIC NOT NULL,
	actual_qty             NUMERIC,
	waste_qty              NUMERIC,
	freeze_qty             NUMERIC,
	status                 TEXT NOT NULL,
	priority               TEXT NOT NULL,
	scheduled_start        TIMESTAMPTZ NOT NULL,
	scheduled_end          TIMESTAMPTZ NOT NULL,
	actual_start           TIMESTAMPTZ,
	actual_end             TIMESTAMPTZ,
	assigned_employees     TEXT[] NOT NULL DEFAULT '{}',
	machine_id             TEXT,
	recipe                 JSONB,
	production_planning_id TEXT,
	notes                  TEXT,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS work_order_updates (
	id            TEXT PRIMARY KEY,
	work_order_id TEXT NOT NULL,
	ts            TIMESTAMPTZ NOT NULL,
	type          TEXT NOT NULL,
	details       TEXT NOT NULL,
	updated_by    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_order_updates_wo ON work_order_updates (work_order_id, ts);
CREATE TABLE IF NOT EXISTS time_entries (
	id            TEXT PRIMARY KEY,
	work_order_id TEXT NOT NULL,
	employee_id   TEXT NOT NULL,
	employee_name TEXT NOT NULL,
	start_time    TIMESTAMPTZ NOT NULL,
	end_time      TIMESTAMPTZ,
	break_minutes INT,
	notes         TEXT
);`

// Journal refleja los libros en PostgreSQL. Cada llamada escribe en una transacción.
type Journal struct {
	pool *pgxpool.Pool
}

// NewJournal construye el diario con el pool.
func NewJournal(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

// EnsureSchema crea las tablas si no existen.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// RecordLotChanges refleja los lotes tocados y anexa las transacciones nuevas.
func (j *Journal) RecordLotChanges(ctx context.Context, lots []entity.Lot, txns []entity.LotTransaction) error {
	return j.run(ctx, func(q Querier) error {
		for _, l := range lots {
			if err := upsertLot(ctx, q, l); err != nil {
				return err
			}
		}
		// más antigua primero para conservar el orden de inserción
		for i := len(txns) - 1; i >= 0; i-- {
			if err := insertLotTransaction(ctx, q, txns[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordWorkOrderChanges refleja las órdenes modificadas y anexa su auditoría.
func (j *Journal) RecordWorkOrderChanges(ctx context.Context, orders []entity.WorkOrder, updates []entity.WorkOrderUpdate) error {
	return j.run(ctx, func(q Querier) error {
		for _, w := range orders {
			if err := upsertWorkOrder(ctx, q, w); err != nil {
				return err
			}
		}
		for i := len(updates) - 1; i >= 0; i-- {
			if err := insertWorkOrderUpdate(ctx, q, updates[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordTimeEntries refleja marcaciones nuevas o cerradas.
func (j *Journal) RecordTimeEntries(ctx context.Context, entries []entity.TimeEntry) error {
	return j.run(ctx, func(q Querier) error {
		for _, e := range entries {
			if err := upsertTimeEntry(ctx, q, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats conteo de filas por tabla del diario.
type Stats struct {
	Lots            int64
	LotTransactions int64
	WorkOrders      int64
	Updates         int64
	TimeEntries     int64
}

// Stats devuelve los conteos actuales.
func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := j.pool.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM lots),
		       (SELECT count(*) FROM lot_transactions),
		       (SELECT count(*) FROM work_orders),
		       (SELECT count(*) FROM work_order_updates),
		       (SELECT count(*) FROM time_entries)`,
	).Scan(&s.Lots, &s.LotTransactions, &s.WorkOrders, &s.Updates, &s.TimeEntries)
	if err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}
	return s, nil
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (j *Journal) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func upsertLot(ctx context.Context, q Querier, l entity.Lot) error {
	_, err := q.Exec(ctx, `
		INSERT INTO lots (id, sku_id, lot_code, qty_on_hand, location_id, expiration, supplier, received_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET qty_on_hand = EXCLUDED.qty_on_hand, location_id = EXCLUDED.location_id`,
		l.ID, l.SKUID, l.LotCode, l.QtyOnHand, l.LocationID, l.Expiration, nullIfEmpty(l.Supplier), l.ReceivedTs,
	)
	if err != nil {
		return fmt.Errorf("upsert lot %s: %w", l.ID, err)
	}
	return nil
}

func insertLotTransaction(ctx context.Context, q Querier, t entity.LotTransaction) error {
	po, wo, so := refColumns(t.Ref)
	_, err := q.Exec(ctx, `
		INSERT INTO lot_transactions (id, lot_id, ts, type, qty, applied_qty, purchase_order_id, work_order_id, sales_order_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.LotID, t.Ts, t.Type, t.Qty, t.AppliedQty, po, wo, so, nullIfEmpty(t.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert lot transaction %s: %w", t.ID, err)
	}
	return nil
}

func upsertWorkOrder(ctx context.Context, q Querier, w entity.WorkOrder) error {
	var recipe []byte
	if w.Recipe != nil {
		raw, err := json.Marshal(w.Recipe)
		if err != nil {
			return fmt.Errorf("marshal recipe %s: %w", w.ID, err)
		}
		recipe = raw
	}
	employees := w.AssignedEmployees
	if employees == nil {
		employees = []string{}
	}
	_, err := q.Exec(ctx, `
		INSERT INTO work_orders (id, wo_number, sku, production_area, planned_qty, actual_qty, waste_qty, freeze_qty,
			status, priority, scheduled_start, scheduled_end, actual_start, actual_end, assigned_employees,
			machine_id, recipe, production_planning_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			actual_qty = EXCLUDED.actual_qty, waste_qty = EXCLUDED.waste_qty, freeze_qty = EXCLUDED.freeze_qty,
			status = EXCLUDED.status, actual_start = EXCLUDED.actual_start, actual_end = EXCLUDED.actual_end,
			assigned_employees = EXCLUDED.assigned_employees, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`,
		w.ID, w.WONumber, w.SKU, string(w.ProductionArea), w.PlannedQty, w.ActualQty, w.WasteQty, w.FreezeQty,
		string(w.Status), string(w.Priority), w.ScheduledStart, w.ScheduledEnd, w.ActualStart, w.ActualEnd, employees,
		nullIfEmpty(w.MachineID), recipe, nullIfEmpty(w.ProductionPlanningID), nullIfEmpty(w.Notes), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert work order %s: %w", w.ID, err)
	}
	return nil
}

func insertWorkOrderUpdate(ctx context.Context, q Querier, u entity.WorkOrderUpdate) error {
	_, err := q.Exec(ctx, `
		INSERT INTO work_order_updates (id, work_order_id, ts, type, details, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		u.ID, u.WorkOrderID, u.Timestamp, u.Type, u.Details, u.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert work order update %s: %w", u.ID, err)
	}
	return nil
}

func upsertTimeEntry(ctx context.Context, q Querier, e entity.TimeEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO time_entries (id, work_order_id, employee_id, employee_name, start_time, end_time, break_minutes, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET end_time = EXCLUDED.end_time, break_minutes = EXCLUDED.break_minutes, notes = EXCLUDED.notes`,
		e.ID, e.WorkOrderID, e.EmployeeID, e.EmployeeName, e.StartTime, e.EndTime, e.BreakMinutes, nullIfEmpty(e.Notes),
	)
	if err != nil {
		return fmt.Errorf("upsert time entry %s: %w", e.ID, err)
	}
	return nil
}
