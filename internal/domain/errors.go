package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Las irregularidades de negocio (id desconocido, stock insuficiente, ajuste fuera de rango)
// NO son errores: los libros las resuelven como no-op o efecto parcial.
var (
	ErrLedgerNotInitialized  = errors.New("libro no inicializado")
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")
	ErrUnknownProductionLine = errors.New("línea de producción desconocida")
	ErrInvalidTimeSlot       = errors.New("franja horaria inválida, se espera HH:MM-HH:MM")
)
