package workorder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/bakery-ops/internal/domain"
	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// DefaultArea área asignada cuando la línea de planeación no está en la tabla.
const DefaultArea = entity.AreaMixingRoom

// lineAreas traduce el nombre de la línea de producción (vista de planeación) al área.
var lineAreas = map[string]entity.ProductionArea{
	"Mixing Room":     entity.AreaMixingRoom,
	"Pre-Bake Prep":   entity.AreaPreBakePrep,
	"Rolls Bake Room": entity.AreaRollsBakeRoom,
	"Bake Room":       entity.AreaBakeRoom,
	"Finishing":       entity.AreaFinishing,
	"Shipping Prep":   entity.AreaShippingPrep,
}

// LookupArea devuelve el área de la línea y si estaba en la tabla.
func LookupArea(line string) (entity.ProductionArea, bool) {
	a, ok := lineAreas[line]
	return a, ok
}

// AreaForLine igual que LookupArea pero con el área por defecto para líneas desconocidas.
func AreaForLine(line string) entity.ProductionArea {
	if a, ok := lineAreas[line]; ok {
		return a
	}
	return DefaultArea
}

// PlanningSlot franja de la vista de planeación de producción.
type PlanningSlot struct {
	ID             int
	SKU            string
	Line           string
	TimeSlot       string // "HH:MM-HH:MM"
	PansFromOrders int
	PansStandard   int
}

// PlanningID clave foránea de la franja ("pp-<id>").
func PlanningID(slotID int) string {
	return fmt.Sprintf("pp-%d", slotID)
}

// WONumber número visible de la orden: año actual + últimos 4 dígitos del reloj en milisegundos.
func WONumber(now time.Time) string {
	return fmt.Sprintf("WO-%d-%04d", now.Year(), now.UnixMilli()%10000)
}

// ParseTimeSlot convierte "HH:MM-HH:MM" en instantes UTC anclados a la fecha de day.
// Si el fin es anterior o igual al inicio la franja cruza la medianoche.
func ParseTimeSlot(slot string, day time.Time) (time.Time, time.Time, error) {
	parts := strings.Split(strings.TrimSpace(slot), "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, domain.ErrInvalidTimeSlot
	}
	d := day.UTC()
	start, err := clockOn(d, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := clockOn(d, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func clockOn(day time.Time, hhmm string) (time.Time, error) {
	hm := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(hm) != 2 {
		return time.Time{}, domain.ErrInvalidTimeSlot
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, domain.ErrInvalidTimeSlot
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, domain.ErrInvalidTimeSlot
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC), nil
}
