// Package inventory expone el libro de lotes como contenedor serializado: guarda el estado
// vigente, inyecta reloj y generador de ids y entrega copias defensivas.
package inventory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-ops/internal/application/ports"
	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
	"github.com/jhoicas/bakery-ops/pkg/logger"
)

const ledgerName = "inventory"

// Ledger libro de lotes. El valor cero no es utilizable: construir con NewLedger.
type Ledger struct {
	mu      sync.Mutex
	state   invdomain.State
	clock   ports.Clock
	ids     ports.IDGenerator
	journal Journal
	turns   ports.Sequencer
	metrics ports.Metrics
	log     *logger.Logger
}

// Option configura un Ledger.
type Option func(*Ledger)

// WithJournal refleja cada cambio en el diario.
func WithJournal(j Journal) Option { return func(l *Ledger) { l.journal = j } }

// WithMetrics registra comandos y faltantes.
func WithMetrics(m ports.Metrics) Option { return func(l *Ledger) { l.metrics = m } }

// WithLogger usa log para los eventos del libro.
func WithLogger(log *logger.Logger) Option { return func(l *Ledger) { l.log = log.Component("inventory_ledger") } }

// WithInitialState arranca el libro con s (por ejemplo, desde un archivo semilla).
func WithInitialState(s invdomain.State) Option { return func(l *Ledger) { l.state = s.Clone() } }

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

func (l *Ledger) stamp() invdomain.Stamp {
	return invdomain.Stamp{Now: l.clock.Now(), NewID: l.ids.NewID}
}

// lotChanges escritura al diario capturada bajo el candado.
type lotChanges struct {
	command string
	ticket  uint64
	lots    []entity.Lot
	txns    []entity.LotTransaction
}

type transition func(invdomain.State, invdomain.Stamp) invdomain.State

// exec aplica la transición con l.mu tomado y publica el nuevo estado. El diario se escribe
// después de soltar el candado, en el orden de los comandos.
func (l *Ledger) exec(ctx context.Context, command string, next transition) (invdomain.State, []entity.LotTransaction) {
	l.mu.Lock()
	s := next(l.state, l.stamp())
	added := invdomain.NewSince(l.state, s)
	l.state = s
	var pending *lotChanges
	if len(added) > 0 && l.journal != nil {
		pending = &lotChanges{command: command, ticket: l.turns.Ticket(), lots: l.touchedLots(added), txns: added}
	}
	state := l.state.Clone()
	l.mu.Unlock()

	l.metrics.ObserveCommand(ledgerName, command, len(added) > 0)
	if pending != nil {
		l.record(ctx, *pending)
	}
	return state, added
}

func (l *Ledger) record(ctx context.Context, c lotChanges) {
	l.turns.Run(c.ticket, func() {
		if err := l.journal.RecordLotChanges(ctx, c.lots, c.txns); err != nil {
			l.log.Error().Err(err).Str("command", c.command).Msg("no se pudo registrar en el diario")
		}
	})
}

func (l *Ledger) touchedLots(txns []entity.LotTransaction) []entity.Lot {
	seen := make(map[string]bool, len(txns))
	var out []entity.Lot
	for _, t := range txns {
		if seen[t.LotID] {
			continue
		}
		seen[t.LotID] = true
		if lot, _, ok := l.state.FindLot(t.LotID); ok {
			out = append(out, lot.Clone())
		}
	}
	return out
}

// Receive registra un lote nuevo y su transacción de recepción.
// Además del estado devuelve las transacciones emitidas por el comando.
func (l *Ledger) Receive(ctx context.Context, in invdomain.ReceiveInput) (invdomain.State, []entity.LotTransaction, error) {
	if !l.ready() {
		return invdomain.State{}, nil, domain.ErrLedgerNotInitialized
	}
	state, added := l.exec(ctx, "receive", func(s invdomain.State, st invdomain.Stamp) invdomain.State {
		return invdomain.Receive(s, in, st)
	})
	if len(added) > 0 {
		l.log.Debug().Str("lot_id", added[0].LotID).Str("sku_id", in.SKUID).
			Str("qty", added[0].Qty.String()).Msg("lote recibido")
	}
	return state, added, nil
}

// Issue consume existencia (FEFO o manual). Un faltante no es error: se informa en el resumen.
func (l *Ledger) Issue(ctx context.Context, p invdomain.IssueParams) (invdomain.State, invdomain.IssueSummary, error) {
	if !l.ready() {
		return invdomain.State{}, invdomain.IssueSummary{}, domain.ErrLedgerNotInitialized
	}
	state, added := l.exec(ctx, "issue", func(s invdomain.State, st invdomain.Stamp) invdomain.State {
		return invdomain.Issue(s, p, st)
	})
	summary := invdomain.SummarizeIssue(decimal.Max(decimal.Zero, p.Qty), added)
	if summary.Partial() {
		qty, _ := summary.Shortfall.Float64()
		l.metrics.ObserveShortfall(p.SKUID, qty)
		l.log.Warn().Str("sku_id", p.SKUID).Str("requested", summary.Requested.String()).
			Str("issued", summary.Issued.String()).Msg("consumo parcial")
	}
	return state, summary, nil
}

// Transfer mueve existencia a un lote nuevo en otra ubicación. Lote desconocido o cantidad
// efectiva cero: sin cambios y sin transacciones emitidas.
func (l *Ledger) Transfer(ctx context.Context, lotID, toLocationID string, qty decimal.Decimal) (invdomain.State, []entity.LotTransaction, error) {
	if !l.ready() {
		return invdomain.State{}, nil, domain.ErrLedgerNotInitialized
	}
	state, added := l.exec(ctx, "transfer", func(s invdomain.State, st invdomain.Stamp) invdomain.State {
		return invdomain.Transfer(s, lotID, toLocationID, qty, st)
	})
	if len(added) == 0 {
		l.log.Info().Str("lot_id", lotID).Msg("traslado sin efecto")
	}
	return state, added, nil
}

// Adjust corrige la existencia de un lote con piso en cero. Lote desconocido: sin cambios.
func (l *Ledger) Adjust(ctx context.Context, lotID string, delta decimal.Decimal, notes string) (invdomain.State, []entity.LotTransaction, error) {
	if !l.ready() {
		return invdomain.State{}, nil, domain.ErrLedgerNotInitialized
	}
	state, added := l.exec(ctx, "adjust", func(s invdomain.State, st invdomain.Stamp) invdomain.State {
		return invdomain.Adjust(s, lotID, delta, notes, st)
	})
	if len(added) == 0 {
		l.log.Info().Str("lot_id", lotID).Msg("ajuste sobre lote desconocido")
	} else if !added[0].AppliedQty.Equal(added[0].Qty) {
		l.log.Warn().Str("lot_id", lotID).Str("delta", delta.String()).
			Str("applied", added[0].AppliedQty.String()).Msg("ajuste recortado a cero")
	}
	return state, added, nil
}

// Snapshot copia profunda del estado vigente.
func (l *Ledger) Snapshot() (invdomain.State, error) {
	if !l.ready() {
		return invdomain.State{}, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone(), nil
}

// Lots lotes en orden de alta.
func (l *Ledger) Lots() ([]entity.Lot, error) {
	s, err := l.Snapshot()
	return s.Lots, err
}

// Transactions transacciones, más reciente primero.
func (l *Ledger) Transactions() ([]entity.LotTransaction, error) {
	s, err := l.Snapshot()
	return s.Transactions, err
}

// Lot busca un lote por id.
func (l *Ledger) Lot(id string) (entity.Lot, bool, error) {
	if !l.ready() {
		return entity.Lot{}, false, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lot, _, ok := l.state.FindLot(id)
	return lot.Clone(), ok, nil
}

// LotsBySKU lotes de un SKU en orden de alta.
func (l *Ledger) LotsBySKU(skuID string) ([]entity.Lot, error) {
	if !l.ready() {
		return nil, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.LotsBySKU(skuID), nil
}

// TransactionsForLot historial de un lote, más reciente primero.
func (l *Ledger) TransactionsForLot(lotID string) ([]entity.LotTransaction, error) {
	if !l.ready() {
		return nil, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.TransactionsForLot(lotID), nil
}

// Available existencia total de un SKU.
func (l *Ledger) Available(skuID string) (decimal.Decimal, error) {
	if !l.ready() {
		return decimal.Zero, domain.ErrLedgerNotInitialized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Available(skuID), nil
}
