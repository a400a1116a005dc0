package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterExpiresAndOrdersNewestFirst(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := NewCenter(4 * time.Second)
	c.now = func() time.Time { return now }

	c.Notify(Success, "Products loaded successfully")
	now = now.Add(3 * time.Second)
	c.Notify(Error, "Cart is empty")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "Cart is empty", active[0].Message)
	assert.Equal(t, Error, active[0].Kind)
	assert.NotEqual(t, active[0].ID, active[1].ID)

	now = now.Add(1500 * time.Millisecond)
	active = c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Cart is empty", active[0].Message)

	now = now.Add(3 * time.Second)
	_, ok := c.Latest()
	assert.False(t, ok)
}

func TestDefaultTTL(t *testing.T) {
	c := NewCenter(0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
