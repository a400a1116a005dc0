package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONSOLE_SESSION_SECRET", testSecret)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, 300*time.Millisecond, c.SearchDebounce)
	assert.Equal(t, 4*time.Second, c.NotificationTTL)
	assert.Equal(t, 48*time.Hour, c.SessionTTL)
	assert.Equal(t, 5, c.SignInLimit)
	assert.Equal(t, "http://localhost:5000/api/employee/sell", c.Backend.Sell)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONSOLE_SESSION_SECRET", testSecret)
	t.Setenv("CONSOLE_PORT", "9090")
	t.Setenv("CONSOLE_SEARCH_DEBOUNCE", "150ms")
	t.Setenv("CONSOLE_BACKEND_URL", "https://shop.example.com/")
	t.Setenv("CONSOLE_BACKEND_CATALOG", "https://inventory.example.com/items")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 150*time.Millisecond, c.SearchDebounce)
	assert.Equal(t, "https://inventory.example.com/items", c.Backend.Catalog)
	assert.Equal(t, "https://shop.example.com/api/employee/sell", c.Backend.Sell)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("CONSOLE_SESSION_SECRET", "short")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.True(t, strings.Contains(err.Error(), "SESSION_SECRET"))
}

func TestValidateRejectsRelativeEndpoint(t *testing.T) {
	c := Config{
		SessionSecret: testSecret,
		SessionTTL:    time.Hour,
		Backend:       Backend{URL: "http://backend", Sell: "/sell"}.WithDefaults(),
	}

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "sell")
}
