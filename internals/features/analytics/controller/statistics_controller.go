package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/service"
	helper "olga_backend/internals/helpers"
)

/* =========================
   Controller
   ========================= */

type StatisticsController struct {
	Registry   *service.RegistryService
	Aggregator *service.AggregatorService
	Validator  *validator.Validate
}

func NewStatisticsController(db *gorm.DB) *StatisticsController {
	return &StatisticsController{
		Registry:   service.NewRegistryService(db),
		Aggregator: service.NewAggregatorService(db),
		Validator:  validator.New(),
	}
}

/*
=========================================================

	RECEIVE STATISTICS
	POST /api/installation/statistics
	=========================================================
*/
// Receive authorizes the token first (fail closed), then validates the
// payload for the declared reporting level, then hands it to the
// aggregator. Whether rows were created or updated shows up in logs only,
// the client always gets a plain 201.
func (ctl *StatisticsController) Receive(c *fiber.Ctx) error {
	var req dto.InstallationStatisticsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "malformed payload")
	}

	installation, authorized, err := ctl.Registry.Authorize(c.UserContext(), req.AccessToken)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "authorization failed")
	}
	if !authorized {
		return helper.JsonError(c, fiber.StatusUnauthorized, "token not recognized")
	}

	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, validationFieldErrors(err))
	}

	log.Printf("[STATS] received %s statistics from IP %s", req.StatisticsLevel, c.IP())

	if err := ctl.Aggregator.SubmitReport(c.UserContext(), installation, &req); err != nil {
		if errors.Is(err, service.ErrInvalidBackfillDate) {
			return helper.JsonValidationError(c, map[string][]string{
				"backfill": {err.Error()},
			})
		}
		log.Printf("[STATS] submission failed for installation %d: %v", installation.InstallationID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "statistics not stored")
	}

	return helper.JsonCreated(c, "statistics accepted", nil)
}

// validationFieldErrors flattens validator errors to the response shape.
func validationFieldErrors(err error) map[string][]string {
	fieldErrors := map[string][]string{}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fe := range invalid {
			fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], fe.Tag())
		}
	}
	return fieldErrors
}
