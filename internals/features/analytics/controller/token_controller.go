package controller

import (
	"strings"

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

type TokenController struct {
	Registry  *service.RegistryService
	Validator *validator.Validate
}

func NewTokenController(db *gorm.DB) *TokenController {
	return &TokenController{
		Registry:  service.NewRegistryService(db),
		Validator: validator.New(),
	}
}

/*
=========================================================

	REGISTRATION
	POST /api/token/registration
	=========================================================
*/
func (ctl *TokenController) Registration(c *fiber.Ctx) error {
	var req dto.RegistrationRequest
	// An empty body is fine; the uid then derives from the client IP.
	_ = c.BodyParser(&req)

	uid := strings.TrimSpace(req.ClientUID)
	if uid == "" {
		ip := c.IP()
		if ip == "" {
			return helper.JsonError(c, fiber.StatusBadRequest, "client identifier required")
		}
		uid = service.ClientUIDFromIP(ip)
	}

	token, err := ctl.Registry.Register(c.UserContext(), uid)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AccessTokenResponse{AccessToken: token})
}

/*
=========================================================

	AUTHORIZATION
	POST /api/token/authorization
	=========================================================
*/
// A recognized token answers 200. An unrecognized or malformed one answers
// 401 carrying a freshly issued replacement token, so installations can
// self-heal after data loss on the server side.
func (ctl *TokenController) Authorization(c *fiber.Ctx) error {
	var req dto.AccessTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return ctl.unauthorizedWithReplacement(c)
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return ctl.unauthorizedWithReplacement(c)
	}

	_, authorized, err := ctl.Registry.Authorize(c.UserContext(), req.AccessToken)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "authorization failed")
	}
	if !authorized {
		return ctl.unauthorizedWithReplacement(c)
	}

	return helper.JsonOK(c, "authorized", nil)
}

func (ctl *TokenController) unauthorizedWithReplacement(c *fiber.Ctx) error {
	ip := c.IP()
	if ip == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "token not recognized")
	}

	token, err := ctl.Registry.Register(c.UserContext(), service.ClientUIDFromIP(ip))
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "token not recognized")
	}
	return helper.JsonErrorWithData(c, fiber.StatusUnauthorized, "token not recognized",
		dto.AccessTokenResponse{AccessToken: token})
}
