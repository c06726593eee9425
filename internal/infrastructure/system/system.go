// Package system provee el reloj y el generador de ids de producción.
package system

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/bakery-ops/internal/application/ports"
)

var (
	_ ports.Clock       = Clock{}
	_ ports.IDGenerator = UUIDs{}
)

// Clock reloj de pared en UTC.
type Clock struct{}

func (Clock) Now() time.Time { return time.Now().UTC() }

// UUIDs genera ids UUID v4.
type UUIDs struct{}

func (UUIDs) NewID() string { return uuid.New().String() }
