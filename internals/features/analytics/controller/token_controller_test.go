package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olga_backend/internals/features/analytics/dto"
)

func TestRegistrationIssuesToken(t *testing.T) {
	app := newTestApp(newTestDB(t))

	resp := postJSON(t, app, "/api/token/registration", fiber.Map{})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.AccessTokenResponse
	decodeBody(t, resp, &body)
	require.NoError(t, uuid.Validate(body.AccessToken))
}

func TestRegistrationIsIdempotentPerClient(t *testing.T) {
	app := newTestApp(newTestDB(t))

	var first, second dto.AccessTokenResponse

	resp := postJSON(t, app, "/api/token/registration", fiber.Map{"client_uid": "client-a"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &first)

	resp = postJSON(t, app, "/api/token/registration", fiber.Map{"client_uid": "client-a"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &second)

	assert.Equal(t, first.AccessToken, second.AccessToken)
}

func TestAuthorizationRecognizedToken(t *testing.T) {
	app := newTestApp(newTestDB(t))

	var issued dto.AccessTokenResponse
	resp := postJSON(t, app, "/api/token/registration", fiber.Map{"client_uid": "client-a"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &issued)

	resp = postJSON(t, app, "/api/token/authorization", fiber.Map{"access_token": issued.AccessToken})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthorizationUnknownTokenCarriesReplacement(t *testing.T) {
	app := newTestApp(newTestDB(t))

	resp := postJSON(t, app, "/api/token/authorization", fiber.Map{"access_token": uuid.NewString()})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Success)
	require.NoError(t, uuid.Validate(body.Data.AccessToken))

	// The replacement token must be usable right away.
	resp = postJSON(t, app, "/api/token/authorization", fiber.Map{"access_token": body.Data.AccessToken})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthorizationMalformedToken(t *testing.T) {
	app := newTestApp(newTestDB(t))

	resp := postJSON(t, app, "/api/token/authorization", fiber.Map{"access_token": "not-a-uuid"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
