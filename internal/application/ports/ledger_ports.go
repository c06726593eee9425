package ports

import (
	"context"
	"time"
)

// Clock fuente del instante actual. Cada comando de los libros la lee una sola vez.
type Clock interface {
	Now() time.Time
}

// IDGenerator genera identificadores únicos para lotes, transacciones, órdenes y registros.
type IDGenerator interface {
	NewID() string
}

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// IDFunc adapta una función a IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// Metrics puerto de salida para contadores de los libros. Los adaptadores (Prometheus, no-op)
// deben ser seguros para uso concurrente.
type Metrics interface {
	// ObserveCommand registra un comando ejecutado y si cambió el estado.
	ObserveCommand(ledger, command string, changed bool)
	// ObserveShortfall registra la cantidad no cubierta de un consumo parcial.
	ObserveShortfall(skuID string, qty float64)
}

// NopMetrics descarta todas las observaciones.
type NopMetrics struct{}

func (NopMetrics) ObserveCommand(string, string, bool) {}
func (NopMetrics) ObserveShortfall(string, float64)    {}

type actorKey struct{}

// WithActor adjunta al contexto el nombre del operario que origina el comando.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey{}, name)
}

// ActorFrom devuelve el operario del contexto ("" si no hay).
func ActorFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(actorKey{}).(string)
	return name
}
