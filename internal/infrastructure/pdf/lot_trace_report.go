// Package pdf genera el reporte de trazabilidad de un lote con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Código de lote + SKU    │  Existencia + Fecha       │
//	│  DATOS: Ubicación / Vence / Proveedor / Recibido   │  QR     │
//	│  TABLA: Fecha | Tipo | Cantidad | Aplicada | Ref | Notas     │
//	│  CONCILIACIÓN: suma aplicada vs existencia                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

var _ appinventory.TraceReportGenerator = (*LotTraceGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 122, Green: 74, Blue: 28}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// LotTraceGenerator implementa inventory.TraceReportGenerator.
type LotTraceGenerator struct {
	now func() time.Time
}

// NewLotTraceGenerator construye el generador. now fija la fecha de emisión (nil = time.Now).
func NewLotTraceGenerator(now func() time.Time) *LotTraceGenerator {
	if now == nil {
		now = time.Now
	}
	return &LotTraceGenerator{now: now}
}

// GenerateLotTrace genera el PDF con el historial del lote (más reciente primero) y devuelve sus bytes.
func (g *LotTraceGenerator) GenerateLotTrace(lot entity.Lot, txns []entity.LotTransaction) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Trazabilidad de lote "+lot.LotCode, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(lot, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(lotInfoRow(lot))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(transactionRows(txns)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(reconciliationRow(lot, txns))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte de lote: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(lot entity.Lot, issued time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("Lote "+nonEmpty(lot.LotCode, lot.ID), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SKU: "+lot.SKUID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("TRAZABILIDAD DE LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Existencia: "+lot.QtyOnHand.String(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+issued.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func lotInfoRow(lot entity.Lot) core.Row {
	exp := "sin vencimiento"
	if lot.Expiration != nil {
		exp = lot.Expiration.Format("02/01/2006")
	}
	return row.New(28).Add(
		col.New(9).Add(
			text.New("DATOS DEL LOTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New("Ubicación: "+lot.LocationID, props.Text{Size: 8, Top: 7}),
			text.New("Vence: "+exp, props.Text{Size: 8, Top: 12}),
			text.New("Proveedor: "+nonEmpty(lot.Supplier, "-"), props.Text{Size: 8, Top: 17}),
			text.New("Recibido: "+lot.ReceivedTs.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 22, Color: colorGray}),
		),
		col.New(3).Add(code.NewQr(lot.ID, props.Rect{Percent: 90, Center: true})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Cantidad", 2, align.Right),
		h("Aplicada", 2, align.Right),
		h("Referencia", 2, align.Left),
		h("Notas", 2, align.Left),
	)
}

func transactionRows(txns []entity.LotTransaction) []core.Row {
	if len(txns) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin movimientos registrados.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	out := make([]core.Row, 0, len(txns))
	for _, t := range txns {
		out = append(out, row.New(7).Add(
			cell(t.Ts.Format("02/01/06 15:04"), 2, align.Left),
			cell(t.Type, 2, align.Left),
			cell(t.Qty.String(), 2, align.Right),
			cell(t.AppliedQty.String(), 2, align.Right),
			cell(refLabel(t.Ref), 2, align.Left),
			cell(t.Notes, 2, align.Left),
		))
	}
	return out
}

// reconciliationRow compara la suma de lo aplicado con la existencia del lote.
func reconciliationRow(lot entity.Lot, txns []entity.LotTransaction) core.Row {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.AppliedQty)
	}
	status, color := "Cuadra", colorPrimary
	if !sum.Equal(lot.QtyOnHand) {
		status, color = "Descuadre", colorAlert
	}
	return row.New(12).Add(
		col.New(6),
		col.New(6).Add(
			text.New(fmt.Sprintf("Suma aplicada: %s   |   Existencia: %s", sum.String(), lot.QtyOnHand.String()), props.Text{
				Size: 9, Align: align.Right, Top: 1, Right: 1,
			}),
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: color, Top: 6, Right: 1,
			}),
		),
	)
}

func refLabel(ref *entity.LotTxnRef) string {
	if ref == nil {
		return ""
	}
	switch {
	case ref.WorkOrderID != "":
		return "OT " + ref.WorkOrderID
	case ref.PurchaseOrderID != "":
		return "OC " + ref.PurchaseOrderID
	case ref.SalesOrderID != "":
		return "OV " + ref.SalesOrderID
	}
	return ""
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
