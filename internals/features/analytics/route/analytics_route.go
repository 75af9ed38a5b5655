package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	analyticsController "olga_backend/internals/features/analytics/controller"
	"olga_backend/internals/middlewares"
)

// AnalyticsRoutes mounts the collection endpoints (token + statistics) and
// the dashboard read side under the given router group.
func AnalyticsRoutes(api fiber.Router, db *gorm.DB) {
	tokenCtl := analyticsController.NewTokenController(db)
	statsCtl := analyticsController.NewStatisticsController(db)
	chartsCtl := analyticsController.NewChartsController(db)

	token := api.Group("/token")
	token.Post("/registration", middlewares.RegistrationRateLimiter(), tokenCtl.Registration)
	token.Post("/authorization", tokenCtl.Authorization)

	installation := api.Group("/installation")
	installation.Post("/statistics", middlewares.StatisticsRateLimiter(), statsCtl.Receive)

	charts := api.Group("/charts")
	charts.Get("/graphs", chartsCtl.Graphs)
	charts.Get("/worldmap", chartsCtl.WorldMap)
	charts.Get("/worldmap/today", chartsCtl.WorldMapToday)
}
