package testutils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDFunc(t *testing.T) {
	next := UUIDFunc(true)
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", next())
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", next())
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", UUIDFunc(true)(), "sequences are independent")

	_, err := uuid.Parse(UUIDFunc(false)())
	require.NoError(t, err)
}

func TestClockFunc(t *testing.T) {
	clock := ClockFunc(true)
	assert.Equal(t, Epoch.Add(time.Second), clock())
	assert.Equal(t, Epoch.Add(2*time.Second), clock())

	before := time.Now()
	assert.False(t, ClockFunc(false)().Before(before))
}
