package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"olga_backend/internals/features/analytics/model"
)

// newTestDB opens a throwaway in-memory database with the analytics schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second pooled connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.InstallationModel{},
		&model.InstallationStatisticsModel{},
	))
	return db
}

func createInstallation(t *testing.T, db *gorm.DB, token, uid string) *model.InstallationModel {
	t.Helper()

	installation := model.InstallationModel{AccessToken: token, ClientUID: uid}
	require.NoError(t, db.Create(&installation).Error)
	return &installation
}
