package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openSQLite runs GormStore on a pure-Go sqlite file so the SQL backend is
// covered without a postgres server.
func openSQLite(t *testing.T) *GormStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.sqlite")
	gdb, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := NewGormStoreFromDB(gdb)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestGormStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Store {
		return openSQLite(t)
	})
}

func TestGormStore_Ping(t *testing.T) {
	s := openSQLite(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestGormStore_MigrateIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	_, err := s.Create(ctx, sample("kept"))
	require.NoError(t, err)

	again, err := NewGormStoreFromDB(s.db)
	require.NoError(t, err)
	products, err := again.Load(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "kept", products[0].Name)
}
