package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/service"
	helper "olga_backend/internals/helpers"
)

// ChartsController serves the read-side data consumed by the dashboard:
// the three time-series graphs and the world map.
type ChartsController struct {
	Summary *service.SummaryService
	Rollup  *service.RollupService
}

func NewChartsController(db *gorm.DB) *ChartsController {
	return &ChartsController{
		Summary: service.NewSummaryService(db),
		Rollup:  service.NewRollupService(db),
	}
}

// GET /api/charts/graphs
func (ctl *ChartsController) Graphs(c *fiber.Ctx) error {
	data, err := ctl.Summary.GraphsData(c.UserContext())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "graphs data unavailable")
	}
	return helper.JsonOK(c, "graphs data", data)
}

// GET /api/charts/worldmap
func (ctl *ChartsController) WorldMap(c *fiber.Ctx) error {
	months, err := ctl.Rollup.MonthlyRollups(c.UserContext())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "world map data unavailable")
	}
	return helper.JsonOK(c, "world map data", dto.WorldMapResponse{Months: months})
}

// GET /api/charts/worldmap/today
func (ctl *ChartsController) WorldMapToday(c *fiber.Ctx) error {
	start, end := service.LastCalendarDay()
	datamap, tabular, err := ctl.Rollup.WorldRollup(c.UserContext(), start, end)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "world map data unavailable")
	}
	return helper.JsonOK(c, "world map data", dto.WorldMapDayResponse{
		Datamap:         datamap,
		Tabular:         tabular,
		TopCountry:      service.TopCountry(tabular),
		CountriesAmount: service.CountriesAmount(tabular),
	})
}
