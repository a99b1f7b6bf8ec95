package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// offlineDB builds a gorm handle that never reaches a server; queries only
// run through the registered callbacks.
func offlineDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=kani dbname=kanistore sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestSeedInitialData_CountFailure(t *testing.T) {
	db := offlineDB(t)
	lost := errors.New("connection reset by peer")
	err := db.Callback().Query().Before("gorm:query").Register("test:fail_query", func(tx *gorm.DB) {
		_ = tx.AddError(lost)
	})
	require.NoError(t, err)

	var created int
	err = db.Callback().Create().Before("gorm:create").Register("test:count_create", func(tx *gorm.DB) {
		created++
	})
	require.NoError(t, err)

	err = SeedInitialData(db)

	require.Error(t, err)
	assert.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "failed to check category")
	assert.Zero(t, created, "nothing is inserted when the existence check fails")
}
