package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_DB", "")
	t.Setenv("ESCALATION_RESPONDER_ROLES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "escalation-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 5*time.Second, cfg.Notification.DeliveryTimeout())
	assert.Equal(t, []string{"ADMIN", "TEAM_MANAGER", "PRINCIPAL", "COORDINATOR"}, cfg.Escalation.ResponderRoles)
	assert.Equal(t, []string{"ADMIN"}, cfg.Escalation.DayCloseRoles)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("NOTIFY_DELIVERY_TIMEOUT_SECONDS", "2")
	t.Setenv("ESCALATION_RESPONDER_ROLES", "principal, admin ,")
	t.Setenv("DIRECTORY_CACHE_TTL_SECONDS", "0")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2*time.Second, cfg.Notification.DeliveryTimeout())
	assert.Equal(t, []string{"PRINCIPAL", "ADMIN"}, cfg.Escalation.ResponderRoles)
	assert.Zero(t, cfg.Directory.CacheTTL())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}
