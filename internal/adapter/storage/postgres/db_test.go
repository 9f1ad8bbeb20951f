package postgres

import (
	"testing"
	"time"

	"connect-client/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	poolCfg, err := PoolConfig(config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "wcc",
		Password:        "pw",
		DBName:          "connect_client",
		SSLMode:         "disable",
		MaxConns:        8,
		MinConns:        2,
		ConnMaxLifetime: 10 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolCfg.ConnConfig.Port)
	assert.Equal(t, "connect_client", poolCfg.ConnConfig.Database)
	assert.Equal(t, int32(8), poolCfg.MaxConns)
	assert.Equal(t, int32(2), poolCfg.MinConns)
	assert.Equal(t, 10*time.Minute, poolCfg.MaxConnLifetime)
}

func TestPoolConfig_KeepsPgxDefaults(t *testing.T) {
	poolCfg, err := PoolConfig(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", DBName: "d", SSLMode: "disable"})
	require.NoError(t, err)

	assert.Positive(t, poolCfg.MaxConns)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
}

func TestPoolConfig_InvalidDSN(t *testing.T) {
	_, err := PoolConfig(config.DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "bogus"})
	assert.ErrorContains(t, err, "parsing database config")
}
