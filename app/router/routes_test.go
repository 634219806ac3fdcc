package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/app/handlers"
	"github.com/amirphl/collab-market/app/middleware"
	"github.com/amirphl/collab-market/app/services"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/config"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	testingutil "github.com/amirphl/collab-market/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnv struct {
	app      *fiber.App
	tokens   services.TokenService
	fixtures *testingutil.TestFixtures
}

func testConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			ReadTimeout:   5 * time.Second,
			WriteTimeout:  5 * time.Second,
			IdleTimeout:   5 * time.Second,
			EnableMetrics: true,
			EnableSwagger: true,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:  []string{"https://collab-market.test"},
			AllowedMethods:  []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders:  []string{"Content-Type", "Authorization"},
			GlobalRateLimit: 1000,
			RateLimitWindow: time.Minute,
			XFrameOptions:   "DENY",
			ReferrerPolicy:  "no-referrer",
		},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Matching:   config.MatchingConfig{DefaultLimit: 20, MaxLimit: 100},
		Cache:      config.CacheConfig{RedisPrefix: "test:"},
		Deployment: config.DeploymentConfig{Environment: "test", Version: "test"},
	}
}

func newAPIEnv(t *testing.T, testDB *testingutil.TestDB) *apiEnv {
	t.Helper()
	db := testDB.DB
	cfg := testConfig()

	campaignRepo := repository.NewCampaignRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	creatorRepo := repository.NewCreatorRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	submissionRepo := repository.NewContentSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	locker := businessflow.NewLocalCampaignLocker(time.Second)

	tokens, err := services.NewTokenService(time.Hour, "collab-test", "collab-test-api", false, "", "", "router-test-secret")
	require.NoError(t, err)

	v := handlers.NewValidator()
	h := Handlers{
		Campaign: handlers.NewCampaignHandler(
			businessflow.NewCampaignFlow(campaignRepo, brandRepo, invitationRepo, submissionRepo, notificationRepo, auditRepo, locker, db), v),
		Match: handlers.NewMatchHandler(
			businessflow.NewMatchFlow(campaignRepo, creatorRepo, invitationRepo, nil, cfg.Cache, cfg.Matching), v),
		Invitation: handlers.NewInvitationHandler(
			businessflow.NewInvitationFlow(campaignRepo, brandRepo, creatorRepo, invitationRepo, notificationRepo, auditRepo, locker, db), v),
		Content: handlers.NewContentHandler(
			businessflow.NewContentFlow(campaignRepo, creatorRepo, invitationRepo, submissionRepo, notificationRepo, auditRepo, locker, db), v),
		Notification: handlers.NewNotificationHandler(businessflow.NewNotificationFlow(notificationRepo)),
	}

	r := NewFiberRouter(cfg, h, middleware.NewAuthMiddleware(tokens))
	r.SetupRoutes()

	return &apiEnv{app: r.GetApp(), tokens: tokens, fixtures: testingutil.NewTestFixtures(testDB)}
}

func (e *apiEnv) token(t *testing.T, role models.RecipientType, id uint) string {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(role, id)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, dto.APIResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)

	var out dto.APIResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func errorCode(t *testing.T, resp dto.APIResponse) string {
	t.Helper()
	detail, ok := resp.Error.(map[string]any)
	require.True(t, ok, "error detail present")
	code, _ := detail["code"].(string)
	return code
}

func TestRouter_PublicEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newAPIEnv(t, testDB)

		resp, body := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, body.Success)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/swagger.json", nil)
		swaggerResp, err := env.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, swaggerResp.StatusCode)
		doc, err := io.ReadAll(swaggerResp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(doc), "/api/v1/campaigns/{uuid}/stages/{stage}/advance")

		req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
		metricsResp, err := env.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, metricsResp.StatusCode)

		resp, body = env.do(t, http.MethodGet, "/api/v1/unknown", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.False(t, body.Success)
		return nil
	})
	require.NoError(t, err)
}

func TestRouter_Authentication(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newAPIEnv(t, testDB)

		t.Run("MissingHeader", func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, "/api/v1/campaigns", "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", errorCode(t, body))
		})

		t.Run("InvalidToken", func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, "/api/v1/campaigns", "not-a-jwt", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "TOKEN_INVALID", errorCode(t, body))
		})

		t.Run("WrongRole", func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, "/api/v1/campaigns", env.token(t, models.RecipientTypeCreator, 1), nil)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "ROLE_NOT_ALLOWED", errorCode(t, body))

			resp, _ = env.do(t, http.MethodGet, "/api/v1/creator/invitations", env.token(t, models.RecipientTypeBrand, 1), nil)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
		return nil
	})
	require.NoError(t, err)
}

func TestRouter_CampaignLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newAPIEnv(t, testDB)

		brand, err := env.fixtures.CreateTestBrand()
		require.NoError(t, err)
		creator, err := env.fixtures.CreateTestCreator(
			testingutil.WithCategory("Tech"),
			testingutil.WithAudience(50000, 1000),
			testingutil.WithPlatforms("YouTube"),
		)
		require.NoError(t, err)
		brandToken := env.token(t, models.RecipientTypeBrand, brand.ID)
		creatorToken := env.token(t, models.RecipientTypeCreator, creator.ID)

		t.Run("ValidationError", func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/v1/campaigns", brandToken, map[string]any{
				"title":        "Spring launch",
				"requirements": map[string]any{"platforms": []string{"!!"}},
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
		})

		resp, body := env.do(t, http.MethodPost, "/api/v1/campaigns", brandToken, map[string]any{
			"title":  "Spring launch",
			"budget": 1000,
			"requirements": map[string]any{
				"category":        "Tech",
				"min_subscribers": 10000,
				"platforms":       []string{"YouTube"},
			},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		data, ok := body.Data.(map[string]any)
		require.True(t, ok)
		campaignUUID, _ := data["uuid"].(string)
		require.NotEmpty(t, campaignUUID)
		assert.Equal(t, "invitations", data["current_stage"])

		base := "/api/v1/campaigns/" + campaignUUID

		t.Run("OutOfOrderAdvance", func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, base+"/stages/content/advance", brandToken, nil)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
			assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))
			assert.Equal(t, "complete the invitations stage before content", body.Message)
		})

		t.Run("NoAcceptedInvitations", func(t *testing.T) {
			resp, _ := env.do(t, http.MethodPost, base+"/stages/invitations/advance", brandToken, nil)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		})

		t.Run("Suggestions", func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, base+"/suggestions?limit=5", brandToken, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			data := body.Data.(map[string]any)
			assert.EqualValues(t, 1, data["total"])
			items := data["items"].([]any)
			require.Len(t, items, 1)
			first := items[0].(map[string]any)
			assert.Equal(t, creator.UUID.String(), first["creator_id"])

			resp, _ = env.do(t, http.MethodGet, base+"/suggestions?offset=-1", brandToken, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			req := httptest.NewRequest(http.MethodGet, base+"/suggestions/export", nil)
			req.Header.Set("Authorization", "Bearer "+brandToken)
			exportResp, err := env.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, exportResp.StatusCode)
			assert.Contains(t, exportResp.Header.Get("Content-Disposition"), ".xlsx")
		})

		var invitationUUID string
		t.Run("Invite", func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, base+"/invitations", brandToken, map[string]any{
				"creator_id": creator.UUID.String(),
				"message":    "Let's work together",
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			data := body.Data.(map[string]any)
			invitationUUID = data["invitation"].(map[string]any)["uuid"].(string)
			stats := data["statistics"].(map[string]any)
			assert.EqualValues(t, 1, stats["pending_invitations"])

			resp, body = env.do(t, http.MethodPost, base+"/invitations", brandToken, map[string]any{
				"creator_id": creator.UUID.String(),
				"message":    "Again",
			})
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		})

		t.Run("CreatorRejects", func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/v1/creator/invitations/"+invitationUUID+"/respond", creatorToken, map[string]any{
				"decision": "maybe",
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))

			resp, _ = env.do(t, http.MethodPost, "/api/v1/creator/invitations/"+invitationUUID+"/respond", creatorToken, map[string]any{
				"decision": "rejected",
			})
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = env.do(t, http.MethodPost, "/api/v1/creator/invitations/"+invitationUUID+"/respond", creatorToken, map[string]any{
				"decision": "accepted",
			})
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		})

		t.Run("BrandNotified", func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, "/api/v1/notifications", brandToken, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			data := body.Data.(map[string]any)
			items := data["items"].([]any)
			require.NotEmpty(t, items)
			types := make([]string, 0, len(items))
			for _, item := range items {
				types = append(types, item.(map[string]any)["type"].(string))
			}
			assert.Contains(t, types, string(models.NotificationTypeAllInvitationsRejected))
		})

		t.Run("Progress", func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, base+"/progress", brandToken, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			stats := body.Data.(map[string]any)["statistics"].(map[string]any)
			assert.EqualValues(t, 1, stats["total_invitations"])
			assert.EqualValues(t, 1, stats["rejected_invitations"])
			assert.EqualValues(t, 0, stats["pending_invitations"])
		})

		t.Run("ForeignBrand", func(t *testing.T) {
			other, err := env.fixtures.CreateTestBrand()
			require.NoError(t, err)
			resp, _ := env.do(t, http.MethodGet, base, env.token(t, models.RecipientTypeBrand, other.ID), nil)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})

		t.Run("UnknownCampaign", func(t *testing.T) {
			resp, _ := env.do(t, http.MethodGet, "/api/v1/campaigns/"+uuid.NewString(), brandToken, nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
		return nil
	})
	require.NoError(t, err)
}
