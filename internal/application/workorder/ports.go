package workorder

import (
	"context"

	"github.com/jhoicas/bakery-ops/internal/domain/entity"
)

// Journal refleja fuera del proceso las órdenes modificadas, su auditoría y las marcaciones.
type Journal interface {
	RecordWorkOrderChanges(ctx context.Context, orders []entity.WorkOrder, updates []entity.WorkOrderUpdate) error
	RecordTimeEntries(ctx context.Context, entries []entity.TimeEntry) error
}
