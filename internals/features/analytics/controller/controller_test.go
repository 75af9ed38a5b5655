package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"olga_backend/internals/features/analytics/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.InstallationModel{},
		&model.InstallationStatisticsModel{},
	))
	return db
}

// newTestApp mounts the analytics endpoints without rate limiters.
func newTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New()

	tokenCtl := NewTokenController(db)
	statsCtl := NewStatisticsController(db)
	chartsCtl := NewChartsController(db)

	app.Post("/api/token/registration", tokenCtl.Registration)
	app.Post("/api/token/authorization", tokenCtl.Authorization)
	app.Post("/api/installation/statistics", statsCtl.Receive)
	app.Get("/api/charts/graphs", chartsCtl.Graphs)
	app.Get("/api/charts/worldmap", chartsCtl.WorldMap)
	app.Get("/api/charts/worldmap/today", chartsCtl.WorldMapToday)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getPath(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
