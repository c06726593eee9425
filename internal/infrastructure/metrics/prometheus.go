package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/bakery-ops/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus contadores de los libros sobre un registro propio.
type Prometheus struct {
	registry  *prometheus.Registry
	commands  *prometheus.CounterVec
	shortfall *prometheus.CounterVec
	partial   *prometheus.CounterVec
}

// NewPrometheus registra los contadores bajo el namespace dado (ej. "bakery_ops").
// withRuntime agrega los colectores de proceso y runtime de Go.
func NewPrometheus(namespace string, withRuntime bool) *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_commands_total",
			Help:      "Comandos ejecutados por libro, comando y si cambiaron el estado.",
		}, []string{"ledger", "command", "changed"}),
		shortfall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_issue_shortfall_qty_total",
			Help:      "Cantidad solicitada y no cubierta en consumos parciales, por SKU.",
		}, []string{"sku_id"}),
		partial: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_partial_issues_total",
			Help:      "Consumos parciales por SKU.",
		}, []string{"sku_id"}),
	}
	reg.MustRegister(p.commands, p.shortfall, p.partial)
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return p
}

// ObserveCommand implementa ports.Metrics.
func (p *Prometheus) ObserveCommand(ledger, command string, changed bool) {
	p.commands.WithLabelValues(ledger, command, strconv.FormatBool(changed)).Inc()
}

// ObserveShortfall implementa ports.Metrics. Cantidades no positivas se ignoran.
func (p *Prometheus) ObserveShortfall(skuID string, qty float64) {
	if qty <= 0 {
		return
	}
	p.shortfall.WithLabelValues(skuID).Add(qty)
	p.partial.WithLabelValues(skuID).Inc()
}

// Handler expone el registro para GET /metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry registro subyacente.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }
