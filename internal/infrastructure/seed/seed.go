// Package seed carga desde YAML el estado inicial de los libros (lotes, órdenes y marcaciones).
package seed

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
	wodomain "github.com/jhoicas/bakery-ops/internal/domain/workorder"
)

// File estructura del archivo de semilla. Las cantidades se escriben como números o texto
// y se leen como decimales exactos.
type File struct {
	SKUs        []SKU       `yaml:"skus"`
	Locations   []Location  `yaml:"locations"`
	Lots        []Lot       `yaml:"lots"`
	WorkOrders  []WorkOrder `yaml:"work_orders"`
	TimeEntries []TimeEntry `yaml:"time_entries"`
	Updates     []Update    `yaml:"updates"`
}

type SKU struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	UOM  string `yaml:"uom"`
	Type string `yaml:"type"`
}

type Location struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Lot struct {
	ID         string    `yaml:"id"`
	SKUID      string    `yaml:"sku_id"`
	LotCode    string    `yaml:"lot_code"`
	QtyOnHand  string    `yaml:"qty_on_hand"`
	LocationID string    `yaml:"location_id"`
	Expiration string    `yaml:"expiration"` // YYYY-MM-DD
	Supplier   string    `yaml:"supplier"`
	ReceivedTs time.Time `yaml:"received_ts"`

	// Historial del lote. Vacío: una recepción sintética por QtyOnHand.
	Transactions []Transaction `yaml:"transactions"`
}

type Transaction struct {
	ID              string    `yaml:"id"`
	Ts              time.Time `yaml:"ts"`
	Type            string    `yaml:"type"`
	Qty             string    `yaml:"qty"`
	AppliedQty      string    `yaml:"applied_qty"` // vacío = Qty
	PurchaseOrderID string    `yaml:"purchase_order_id"`
	WorkOrderID     string    `yaml:"work_order_id"`
	SalesOrderID    string    `yaml:"sales_order_id"`
	Notes           string    `yaml:"notes"`
}

type Ingredient struct {
	SKUID string `yaml:"sku_id"`
	Name  string `yaml:"name"`
	Qty   string `yaml:"qty"`
	Unit  string `yaml:"unit"`
	Notes string `yaml:"notes"`
}

type Recipe struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Ingredients  []Ingredient `yaml:"ingredients"`
	Instructions []string     `yaml:"instructions"`
	YieldQty     string       `yaml:"yield_qty"`
	YieldUnit    string       `yaml:"yield_unit"`
}

type WorkOrder struct {
	ID                   string     `yaml:"id"`
	WONumber             string     `yaml:"wo_number"`
	SKU                  string     `yaml:"sku"`
	ProductionArea       string     `yaml:"production_area"`
	PlannedQty           string     `yaml:"planned_qty"`
	ActualQty            string     `yaml:"actual_qty"`
	WasteQty             string     `yaml:"waste_qty"`
	FreezeQty            string     `yaml:"freeze_qty"`
	Status               string     `yaml:"status"`
	Priority             string     `yaml:"priority"`
	ScheduledStart       time.Time  `yaml:"scheduled_start"`
	ScheduledEnd         time.Time  `yaml:"scheduled_end"`
	AssignedEmployees    []string   `yaml:"assigned_employees"`
	MachineID            string     `yaml:"machine_id"`
	Recipe               *Recipe    `yaml:"recipe"`
	ProductionPlanningID string     `yaml:"production_planning_id"`
	Notes                string     `yaml:"notes"`
	ActualStart          *time.Time `yaml:"actual_start"`
	ActualEnd            *time.Time `yaml:"actual_end"`
	CreatedAt            time.Time  `yaml:"created_at"`
	UpdatedAt            time.Time  `yaml:"updated_at"`
}

type Update struct {
	ID          string    `yaml:"id"`
	WorkOrderID string    `yaml:"work_order_id"`
	Timestamp   time.Time `yaml:"timestamp"`
	Type        string    `yaml:"type"`
	Details     string    `yaml:"details"`
	UpdatedBy   string    `yaml:"updated_by"`
}

type TimeEntry struct {
	ID           string     `yaml:"id"`
	WorkOrderID  string     `yaml:"work_order_id"`
	EmployeeID   string     `yaml:"employee_id"`
	EmployeeName string     `yaml:"employee_name"`
	StartTime    time.Time  `yaml:"start_time"`
	EndTime      *time.Time `yaml:"end_time"`
	BreakMinutes *int       `yaml:"break_minutes"`
	Notes        string     `yaml:"notes"`
}

// Seed estado inicial listo para inyectar en los libros.
type Seed struct {
	SKUs       []entity.Sku
	Locations  []entity.Location
	Inventory  invdomain.State
	WorkOrders wodomain.State
}

// Load lee y valida el archivo de semilla.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: leer %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodifica y valida el contenido YAML. Un lote sin historial recibe una transacción
// de recepción sintética; uno con historial debe conciliar con él.
func Parse(data []byte) (*Seed, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: yaml: %w", err)
	}

	out := &Seed{}
	skus := make(map[string]bool, len(f.SKUs))
	for _, s := range f.SKUs {
		skus[s.ID] = true
		out.SKUs = append(out.SKUs, entity.Sku{ID: s.ID, Name: s.Name, UOM: s.UOM, Type: s.Type})
	}
	locations := make(map[string]bool, len(f.Locations))
	for _, l := range f.Locations {
		locations[l.ID] = true
		out.Locations = append(out.Locations, entity.Location{ID: l.ID, Name: l.Name})
	}

	lotIDs := make(map[string]bool, len(f.Lots))
	txnIDs := map[string]bool{}
	for i, in := range f.Lots {
		lot, err := in.toEntity(skus, locations)
		if err != nil {
			return nil, fmt.Errorf("seed: lote %d (%s): %w", i, in.ID, err)
		}
		if lotIDs[lot.ID] {
			return nil, fmt.Errorf("seed: lote %d: id duplicado %s: %w", i, lot.ID, domain.ErrInvalidInput)
		}
		lotIDs[lot.ID] = true
		out.Inventory.Lots = append(out.Inventory.Lots, lot)
		if len(in.Transactions) == 0 {
			out.Inventory.Transactions = append(out.Inventory.Transactions, entity.LotTransaction{
				ID:         "seed-" + lot.ID,
				LotID:      lot.ID,
				Ts:         lot.ReceivedTs,
				Type:       entity.LotTxnTypeReceive,
				Qty:        lot.QtyOnHand,
				AppliedQty: lot.QtyOnHand,
				Notes:      "seed",
			})
			continue
		}
		for j, tin := range in.Transactions {
			txn, err := tin.toEntity(lot.ID)
			if err != nil {
				return nil, fmt.Errorf("seed: lote %s, transacción %d: %w", lot.ID, j, err)
			}
			if txnIDs[txn.ID] {
				return nil, fmt.Errorf("seed: transacción %s duplicada: %w", txn.ID, domain.ErrInvalidInput)
			}
			txnIDs[txn.ID] = true
			out.Inventory.Transactions = append(out.Inventory.Transactions, txn)
		}
	}
	sort.SliceStable(out.Inventory.Transactions, func(i, j int) bool {
		return out.Inventory.Transactions[i].Ts.After(out.Inventory.Transactions[j].Ts)
	})

	woIDs := make(map[string]bool, len(f.WorkOrders))
	for i, in := range f.WorkOrders {
		wo, err := in.toEntity()
		if err != nil {
			return nil, fmt.Errorf("seed: orden %d (%s): %w", i, in.ID, err)
		}
		if woIDs[wo.ID] {
			return nil, fmt.Errorf("seed: orden %d: id duplicado %s: %w", i, wo.ID, domain.ErrInvalidInput)
		}
		woIDs[wo.ID] = true
		out.WorkOrders.WorkOrders = append(out.WorkOrders.WorkOrders, wo)
	}
	sort.SliceStable(out.WorkOrders.WorkOrders, func(i, j int) bool {
		return out.WorkOrders.WorkOrders[i].CreatedAt.After(out.WorkOrders.WorkOrders[j].CreatedAt)
	})

	for i, in := range f.TimeEntries {
		if in.ID == "" || in.EmployeeID == "" || !woIDs[in.WorkOrderID] || in.StartTime.IsZero() {
			return nil, fmt.Errorf("seed: marcación %d (%s): %w", i, in.ID, domain.ErrInvalidInput)
		}
		out.WorkOrders.TimeEntries = append(out.WorkOrders.TimeEntries, entity.TimeEntry{
			ID: in.ID, WorkOrderID: in.WorkOrderID, EmployeeID: in.EmployeeID, EmployeeName: in.EmployeeName,
			StartTime: in.StartTime.UTC(), EndTime: utcPtr(in.EndTime), BreakMinutes: in.BreakMinutes, Notes: in.Notes,
		})
	}
	sort.SliceStable(out.WorkOrders.TimeEntries, func(i, j int) bool {
		return out.WorkOrders.TimeEntries[i].StartTime.After(out.WorkOrders.TimeEntries[j].StartTime)
	})

	for i, in := range f.Updates {
		if in.ID == "" || !woIDs[in.WorkOrderID] || in.Type == "" || in.Timestamp.IsZero() {
			return nil, fmt.Errorf("seed: auditoría %d (%s): %w", i, in.ID, domain.ErrInvalidInput)
		}
		out.WorkOrders.Updates = append(out.WorkOrders.Updates, entity.WorkOrderUpdate{
			ID: in.ID, WorkOrderID: in.WorkOrderID, Timestamp: in.Timestamp.UTC(),
			Type: in.Type, Details: in.Details, UpdatedBy: in.UpdatedBy,
		})
	}
	sort.SliceStable(out.WorkOrders.Updates, func(i, j int) bool {
		return out.WorkOrders.Updates[i].Timestamp.After(out.WorkOrders.Updates[j].Timestamp)
	})

	if d := invdomain.Reconcile(out.Inventory); len(d) > 0 {
		return nil, fmt.Errorf("seed: lote %s: existencia %s, historial %s: %w",
			d[0].LotID, d[0].QtyOnHand, d[0].TxnTotal, domain.ErrInvalidInput)
	}
	return out, nil
}

func (in Lot) toEntity(skus, locations map[string]bool) (entity.Lot, error) {
	if in.ID == "" || in.SKUID == "" || in.LocationID == "" {
		return entity.Lot{}, fmt.Errorf("id, sku_id y location_id son obligatorios: %w", domain.ErrInvalidInput)
	}
	if len(skus) > 0 && !skus[in.SKUID] {
		return entity.Lot{}, fmt.Errorf("sku %q no declarado: %w", in.SKUID, domain.ErrInvalidInput)
	}
	if len(locations) > 0 && !locations[in.LocationID] {
		return entity.Lot{}, fmt.Errorf("ubicación %q no declarada: %w", in.LocationID, domain.ErrInvalidInput)
	}
	qty, err := parseQty(in.QtyOnHand)
	if err != nil {
		return entity.Lot{}, err
	}
	if qty.IsNegative() {
		return entity.Lot{}, fmt.Errorf("qty_on_hand negativo: %w", domain.ErrInvalidInput)
	}
	lot := entity.Lot{
		ID: in.ID, SKUID: in.SKUID, LotCode: in.LotCode, QtyOnHand: qty,
		LocationID: in.LocationID, Supplier: in.Supplier, ReceivedTs: in.ReceivedTs.UTC(),
	}
	if in.Expiration != "" {
		exp, err := time.Parse("2006-01-02", in.Expiration)
		if err != nil {
			return entity.Lot{}, fmt.Errorf("expiration %q: %w", in.Expiration, domain.ErrInvalidInput)
		}
		lot.Expiration = &exp
	}
	return lot, nil
}

func (in WorkOrder) toEntity() (entity.WorkOrder, error) {
	if in.ID == "" || in.SKU == "" {
		return entity.WorkOrder{}, fmt.Errorf("id y sku son obligatorios: %w", domain.ErrInvalidInput)
	}
	wo := entity.WorkOrder{
		ID:                   in.ID,
		WONumber:             in.WONumber,
		SKU:                  in.SKU,
		ProductionArea:       entity.ProductionArea(in.ProductionArea),
		Status:               entity.WorkOrderStatus(in.Status),
		Priority:             entity.Priority(in.Priority),
		ScheduledStart:       in.ScheduledStart.UTC(),
		ScheduledEnd:         in.ScheduledEnd.UTC(),
		AssignedEmployees:    in.AssignedEmployees,
		MachineID:            in.MachineID,
		ProductionPlanningID: in.ProductionPlanningID,
		Notes:                in.Notes,
		CreatedAt:            in.CreatedAt.UTC(),
	}
	if wo.ProductionArea == "" {
		wo.ProductionArea = wodomain.DefaultArea
	}
	if wo.Status == "" {
		wo.Status = entity.WorkOrderPending
	}
	if wo.Priority == "" {
		wo.Priority = entity.PriorityNormal
	}
	if !wo.ProductionArea.Valid() || !wo.Status.Valid() || !wo.Priority.Valid() {
		return entity.WorkOrder{}, fmt.Errorf("área, estado o prioridad inválidos: %w", domain.ErrInvalidInput)
	}
	if wo.AssignedEmployees == nil {
		wo.AssignedEmployees = []string{}
	}
	if wo.WONumber == "" {
		wo.WONumber = "WO-" + strings.ToUpper(in.ID)
	}
	if wo.CreatedAt.IsZero() {
		wo.CreatedAt = wo.ScheduledStart
	}
	if err := in.stampActuals(&wo); err != nil {
		return entity.WorkOrder{}, err
	}

	var err error
	if wo.PlannedQty, err = parseQty(in.PlannedQty); err != nil {
		return entity.WorkOrder{}, err
	}
	if wo.ActualQty, err = parseOptQty(in.ActualQty); err != nil {
		return entity.WorkOrder{}, err
	}
	if wo.WasteQty, err = parseOptQty(in.WasteQty); err != nil {
		return entity.WorkOrder{}, err
	}
	if wo.FreezeQty, err = parseOptQty(in.FreezeQty); err != nil {
		return entity.WorkOrder{}, err
	}
	if in.Recipe != nil {
		r, err := in.Recipe.toEntity()
		if err != nil {
			return entity.WorkOrder{}, err
		}
		wo.Recipe = &r
	}
	return wo, nil
}

// stampActuals copia inicio y fin reales. Una orden que ya arrancó (activa, pausada o
// completada) exige actual_start y una completada exige actual_end. UpdatedAt nunca queda
// antes de CreatedAt ni de los sellos reales.
func (in WorkOrder) stampActuals(wo *entity.WorkOrder) error {
	wo.ActualStart = utcPtr(in.ActualStart)
	wo.ActualEnd = utcPtr(in.ActualEnd)
	switch wo.Status {
	case entity.WorkOrderActive, entity.WorkOrderPaused:
		if wo.ActualStart == nil {
			return fmt.Errorf("estado %s sin actual_start: %w", wo.Status, domain.ErrInvalidInput)
		}
	case entity.WorkOrderCompleted:
		if wo.ActualStart == nil || wo.ActualEnd == nil {
			return fmt.Errorf("orden completada sin actual_start o actual_end: %w", domain.ErrInvalidInput)
		}
	}
	if wo.ActualStart != nil && wo.ActualEnd != nil && wo.ActualEnd.Before(*wo.ActualStart) {
		return fmt.Errorf("actual_end anterior a actual_start: %w", domain.ErrInvalidInput)
	}

	wo.UpdatedAt = in.UpdatedAt.UTC()
	for _, t := range []*time.Time{&wo.CreatedAt, wo.ActualStart, wo.ActualEnd} {
		if t != nil && t.After(wo.UpdatedAt) {
			wo.UpdatedAt = *t
		}
	}
	return nil
}

func (in Transaction) toEntity(lotID string) (entity.LotTransaction, error) {
	switch in.Type {
	case entity.LotTxnTypeReceive, entity.LotTxnTypeIssue, entity.LotTxnTypeTransfer, entity.LotTxnTypeAdjust:
	default:
		return entity.LotTransaction{}, fmt.Errorf("tipo %q: %w", in.Type, domain.ErrInvalidInput)
	}
	if in.ID == "" || in.Ts.IsZero() {
		return entity.LotTransaction{}, fmt.Errorf("id y ts son obligatorios: %w", domain.ErrInvalidInput)
	}
	qty, err := parseQty(in.Qty)
	if err != nil {
		return entity.LotTransaction{}, err
	}
	applied := qty
	if strings.TrimSpace(in.AppliedQty) != "" {
		if applied, err = parseQty(in.AppliedQty); err != nil {
			return entity.LotTransaction{}, err
		}
	}
	txn := entity.LotTransaction{
		ID: in.ID, LotID: lotID, Ts: in.Ts.UTC(), Type: in.Type,
		Qty: qty, AppliedQty: applied, Notes: in.Notes,
	}
	if in.PurchaseOrderID != "" || in.WorkOrderID != "" || in.SalesOrderID != "" {
		txn.Ref = &entity.LotTxnRef{
			PurchaseOrderID: in.PurchaseOrderID, WorkOrderID: in.WorkOrderID, SalesOrderID: in.SalesOrderID,
		}
	}
	return txn, nil
}

func (in Recipe) toEntity() (entity.Recipe, error) {
	yield, err := parseQty(in.YieldQty)
	if err != nil {
		return entity.Recipe{}, err
	}
	r := entity.Recipe{
		ID: in.ID, Name: in.Name, Instructions: in.Instructions, YieldQty: yield, YieldUnit: in.YieldUnit,
	}
	for _, ing := range in.Ingredients {
		qty, err := parseQty(ing.Qty)
		if err != nil {
			return entity.Recipe{}, err
		}
		r.Ingredients = append(r.Ingredients, entity.RecipeIngredient{
			SKUID: ing.SKUID, Name: ing.Name, Qty: qty, Unit: ing.Unit, Notes: ing.Notes,
		})
	}
	return r, nil
}

func parseQty(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("cantidad %q: %w", s, domain.ErrInvalidInput)
	}
	return d, nil
}

func parseOptQty(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseQty(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
