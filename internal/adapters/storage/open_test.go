package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.NotNil(t, s.Animals)
	assert.NoError(t, s.Close())

	s, err = Open(ctx, Options{Driver: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	assert.NotNil(t, s.Animals)
	assert.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: DriverPostgres})
	assert.ErrorContains(t, err, "DB_DSN")

	_, err = Open(ctx, Options{Driver: DriverSQLite})
	assert.ErrorContains(t, err, "SQLITE_PATH")

	_, err = Open(ctx, Options{Driver: "mongo"})
	assert.ErrorContains(t, err, "unknown driver")
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "m.db")}))
	assert.Error(t, Migrate(ctx, Options{Driver: DriverMemory}))
}
