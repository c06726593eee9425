package system

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, Clock{}.Now().Location())
}

func TestUUIDs_Unicos(t *testing.T) {
	g := UUIDs{}
	a, b := g.NewID(), g.NewID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}
