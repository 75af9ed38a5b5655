package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	analyticsRoute "olga_backend/internals/features/analytics/route"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	BaseRoutes(app, db)

	api := app.Group("/api")
	analyticsRoute.AnalyticsRoutes(api, db)
}
