// Package production coordina los dos libros sin acoplarlos: solo el id de la orden cruza.
package production

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
	"github.com/jhoicas/bakery-ops/pkg/logger"
)

// LotIssuer lado de inventario que necesita el caso de uso.
type LotIssuer interface {
	Issue(ctx context.Context, p invdomain.IssueParams) (invdomain.State, invdomain.IssueSummary, error)
}

// WorkOrderReader lado de órdenes que necesita el caso de uso.
type WorkOrderReader interface {
	WorkOrder(id string) (entity.WorkOrder, bool, error)
}

// IngredientIssue resultado del consumo de un ingrediente.
type IngredientIssue struct {
	SKUID   string
	Name    string
	Unit    string
	Summary invdomain.IssueSummary
}

// ConsumeRecipeUseCase descuenta del inventario (FEFO) los ingredientes de la receta de una orden.
type ConsumeRecipeUseCase struct {
	lots   LotIssuer
	orders WorkOrderReader
	log    *logger.Logger
}

// NewConsumeRecipeUseCase construye el caso de uso.
func NewConsumeRecipeUseCase(lots LotIssuer, orders WorkOrderReader, log *logger.Logger) *ConsumeRecipeUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ConsumeRecipeUseCase{lots: lots, orders: orders, log: log.Component("consume_recipe")}
}

// Consume escala cada ingrediente por PlannedQty / YieldQty y lo consume FEFO con la orden como
// referencia. Orden desconocida: domain.ErrNotFound. Orden sin receta o con rendimiento no
// positivo: domain.ErrInvalidInput. Los faltantes se informan en cada resumen, no como error.
func (uc *ConsumeRecipeUseCase) Consume(ctx context.Context, workOrderID string) ([]IngredientIssue, error) {
	wo, ok, err := uc.orders.WorkOrder(workOrderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	if wo.Recipe == nil || !wo.Recipe.YieldQty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	log := uc.log.With("work_order_id", workOrderID)
	factor := wo.PlannedQty.Div(wo.Recipe.YieldQty)
	out := make([]IngredientIssue, 0, len(wo.Recipe.Ingredients))
	for _, ing := range wo.Recipe.Ingredients {
		qty := ing.Qty.Mul(factor).Round(4)
		_, summary, err := uc.lots.Issue(ctx, invdomain.IssueParams{
			SKUID:    ing.SKUID,
			Qty:      qty,
			Strategy: invdomain.StrategyFEFO,
			Ref:      &entity.LotTxnRef{WorkOrderID: workOrderID},
		})
		if err != nil {
			return out, fmt.Errorf("consumo de %s: %w", ing.SKUID, err)
		}
		if summary.Partial() {
			log.Warn().Str("sku_id", ing.SKUID).
				Str("shortfall", summary.Shortfall.String()).Msg("ingrediente insuficiente")
		}
		out = append(out, IngredientIssue{SKUID: ing.SKUID, Name: ing.Name, Unit: ing.Unit, Summary: summary})
	}
	log.Debug().Int("ingredients", len(out)).Msg("receta consumida")
	return out, nil
}

// Shortfalls filtra los ingredientes que no se cubrieron por completo.
func Shortfalls(issues []IngredientIssue) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, i := range issues {
		if i.Summary.Partial() {
			out[i.SKUID] = i.Summary.Shortfall
		}
	}
	return out
}
