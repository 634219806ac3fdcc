package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/app/services"
	"github.com/amirphl/collab-market/models"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T, ttl time.Duration) services.TokenService {
	t.Helper()
	ts, err := services.NewTokenService(ttl, "collab-test", "collab-test-api", false, "", "", "middleware-test-secret")
	require.NoError(t, err)
	return ts
}

// newProtectedApp echoes the actor stored by Authenticate
func newProtectedApp(ts services.TokenService, roles ...models.RecipientType) *fiber.App {
	app := fiber.New()
	auth := NewAuthMiddleware(ts)
	handlers := []any{auth.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c fiber.Ctx) error {
		role, id, ok := ActorFromLocals(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"role": role, "id": id, "request_id": c.Locals(LocalRequestID)})
	})
	app.Get("/me", handlers[0], handlers[1:]...)
	return app
}

func call(t *testing.T, app *fiber.App, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func errorCodeOf(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Error   dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.Success)
	return env.Error.Code
}

func TestAuthenticate_Rejections(t *testing.T) {
	ts := newTokenService(t, time.Hour)
	expired := newTokenService(t, -time.Minute)
	stale, err := expired.GenerateAccessToken(models.RecipientTypeBrand, 1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "MISSING_AUTHORIZATION_HEADER"},
		{"basic scheme", "Basic abc", "INVALID_AUTHORIZATION_FORMAT"},
		{"garbage token", "Bearer not-a-jwt", "TOKEN_INVALID"},
		{"expired token", "Bearer " + stale, "TOKEN_EXPIRED"},
	}

	app := newProtectedApp(ts)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := map[string]string{}
			if tc.header != "" {
				h["Authorization"] = tc.header
			}
			resp, body := call(t, app, h)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, errorCodeOf(t, body))
		})
	}
}

func TestAuthenticate_StoresActor(t *testing.T) {
	ts := newTokenService(t, time.Hour)
	token, err := ts.GenerateAccessToken(models.RecipientTypeCreator, 42)
	require.NoError(t, err)

	resp, body := call(t, newProtectedApp(ts), map[string]string{
		"Authorization": "Bearer " + token,
		"X-Request-ID":  "req-1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got struct {
		Role      string `json:"role"`
		ID        uint   `json:"id"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "creator", got.Role)
	assert.Equal(t, uint(42), got.ID)
	assert.Equal(t, "req-1", got.RequestID)
}

func TestRequireRole(t *testing.T) {
	ts := newTokenService(t, time.Hour)
	app := newProtectedApp(ts, models.RecipientTypeBrand)

	brandToken, err := ts.GenerateAccessToken(models.RecipientTypeBrand, 7)
	require.NoError(t, err)
	creatorToken, err := ts.GenerateAccessToken(models.RecipientTypeCreator, 7)
	require.NoError(t, err)

	resp, _ := call(t, app, map[string]string{"Authorization": "Bearer " + brandToken})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := call(t, app, map[string]string{"Authorization": "Bearer " + creatorToken})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ROLE_NOT_ALLOWED", errorCodeOf(t, body))
}

func TestActorFromLocals_Missing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		c.Locals(LocalActorRole, models.RecipientTypeBrand)
		c.Locals(LocalActorID, uint(0))
		if _, _, ok := ActorFromLocals(c); ok {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusUnauthorized)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
