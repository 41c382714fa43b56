package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("app", "pw", "db", "3306", "cinema")
	assert.Equal(t, "app:pw@tcp(db:3306)/cinema?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	cfg, err := mysql.ParseDSN(DSN("app", "", "localhost", "3307", "cinema"))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Empty(t, cfg.Passwd)
	assert.Equal(t, "localhost:3307", cfg.Addr)
	assert.True(t, cfg.ParseTime)
}
