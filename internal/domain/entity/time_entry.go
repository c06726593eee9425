package entity

import "time"

// TimeEntry marcación de entrada/salida de un empleado contra una orden.
// EndTime nil significa que el empleado sigue marcado (entrada abierta).
type TimeEntry struct {
	ID           string
	WorkOrderID  string
	EmployeeID   string
	EmployeeName string
	StartTime    time.Time
	EndTime      *time.Time
	BreakMinutes *int
	Notes        string
}

// Open indica si la marcación sigue abierta.
func (t TimeEntry) Open() bool { return t.EndTime == nil }

// Clone devuelve una copia sin punteros compartidos.
func (t TimeEntry) Clone() TimeEntry {
	t.EndTime = cloneTime(t.EndTime)
	if t.BreakMinutes != nil {
		b := *t.BreakMinutes
		t.BreakMinutes = &b
	}
	return t
}
