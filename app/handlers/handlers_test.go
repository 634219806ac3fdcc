package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirphl/collab-market/app/dto"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/models"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_Platform(t *testing.T) {
	v := NewValidator()
	type req struct {
		Platform string `validate:"required,platform"`
	}

	for _, ok := range []string{"YouTube", "tiktok", "x.com", "Insta_gram", "آپارات", "Twitch 2"} {
		assert.NoError(t, v.Struct(req{Platform: ok}), ok)
	}
	for _, bad := range []string{"!!", "-leading", "a/b", " "} {
		assert.Error(t, v.Struct(req{Platform: bad}), bad)
	}
}

type errorEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   dto.ErrorDetail `json:"error"`
}

func respond(t *testing.T, err error) (int, errorEnvelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return handleFlowError(c, err, "Test operation")
	})

	resp, rerr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, rerr)
	defer resp.Body.Close()
	body, rerr := io.ReadAll(resp.Body)
	require.NoError(t, rerr)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.Success)
	return resp.StatusCode, env
}

func TestHandleFlowError(t *testing.T) {
	corruption := &models.StatisticsCorruptionError{
		Outcome: models.InvitationOutcomeRejected,
		Before:  models.InvitationStatistics{TotalInvitations: 1, PendingInvitations: 1},
	}
	transition := &models.TransitionError{
		Stage:   models.StageContent,
		Current: models.StageInvitations,
		Reason:  "complete the invitations stage before content",
	}

	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "statistics corruption is opaque",
			err:     businessflow.NewBusinessError("RECORD_OUTCOME_FAILED", "Recording failed", corruption),
			status:  fiber.StatusInternalServerError,
			code:    "INTERNAL_CONSISTENCY_ERROR",
			message: "Internal consistency error",
		},
		{
			name:    "malformed progress is opaque",
			err:     businessflow.NewBusinessError("STAGE_ADVANCE_FAILED", "Failed to advance stage", fmt.Errorf("%w: stage 1 is \"\", expected \"invitations\"", models.ErrMalformedProgress)),
			status:  fiber.StatusInternalServerError,
			code:    "INTERNAL_CONSISTENCY_ERROR",
			message: "Internal consistency error",
		},
		{
			name:    "transition reason is surfaced",
			err:     businessflow.NewBusinessError("ADVANCE_STAGE_FAILED", "Stage cannot advance", transition),
			status:  fiber.StatusConflict,
			code:    "INVALID_TRANSITION",
			message: "complete the invitations stage before content",
		},
		{
			name:    "validation",
			err:     businessflow.NewBusinessError("INVALID_DECISION", "Decision must be accept or reject", businessflow.ErrInvalidDecision),
			status:  fiber.StatusBadRequest,
			code:    "INVALID_DECISION",
			message: "Decision must be accept or reject",
		},
		{
			name:   "inactive account",
			err:    businessflow.NewBusinessError("BRAND_INACTIVE", "Brand is inactive", businessflow.ErrBrandInactive),
			status: fiber.StatusUnauthorized,
			code:   "ACCOUNT_INACTIVE",
		},
		{
			name:   "access denied",
			err:    businessflow.NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign belongs to another brand", businessflow.ErrCampaignAccessDenied),
			status: fiber.StatusForbidden,
			code:   "CAMPAIGN_ACCESS_DENIED",
		},
		{
			name:   "not found without code",
			err:    fmt.Errorf("lookup: %w", businessflow.ErrCampaignNotFound),
			status: fiber.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "conflict",
			err:    businessflow.NewBusinessError("ALREADY_INVITED", "Creator already invited", businessflow.ErrAlreadyInvited),
			status: fiber.StatusConflict,
			code:   "ALREADY_INVITED",
		},
		{
			name:    "unexpected",
			err:     errors.New("connection reset"),
			status:  fiber.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "Test operation failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := respond(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, env.Error.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, env.Message)
			}
			assert.NotContains(t, env.Message, "before=")
		})
	}
}
