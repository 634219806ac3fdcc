// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/app/middleware"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const defaultRequestTimeout = 30 * time.Second

var requestTimeout = defaultRequestTimeout

// SetRequestTimeout bounds the context handed to flows. Non-positive values keep the default.
func SetRequestTimeout(d time.Duration) {
	if d > 0 {
		requestTimeout = d
	}
}

var platformPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ._-]{0,49}$`)

// NewValidator returns a validator with the marketplace's custom tags registered
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return platformPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "url":
		return err.Field() + " must be a valid URL"
	case "platform":
		return err.Field() + " must be a platform name (letters, digits, spaces, '.', '_' or '-')"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// ErrorResponse writes a failed APIResponse
func ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse writes a successful APIResponse
func SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validateRequest runs struct validation and writes a 400 on failure.
// The returned bool is false when a response has already been written.
func validateRequest(c fiber.Ctx, v *validator.Validate, req any) (bool, error) {
	if err := v.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return false, ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, getValidationErrorMessage(fe))
		}
		return false, ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", messages)
	}
	return true, nil
}

// requireActor reads the authenticated actor set by the auth middleware
func requireActor(c fiber.Ctx, role models.RecipientType) (uint, bool) {
	actorRole, actorID, ok := middleware.ActorFromLocals(c)
	if !ok || actorRole != role {
		return 0, false
	}
	return actorID, true
}

func missingActor(c fiber.Ctx) error {
	return ErrorResponse(c, fiber.StatusUnauthorized, "Authenticated actor not found in context", "MISSING_ACTOR", nil)
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := requestID(c); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	metadata.AddAdditional("route", c.Method()+" "+c.Route().Path)
	return metadata
}

func requestID(c fiber.Ctx) string {
	if id := c.Get("X-Request-ID"); id != "" {
		return id
	}
	if id, ok := c.Locals(middleware.LocalRequestID).(string); ok {
		return id
	}
	return ""
}

// createRequestContext creates a context with timeout and request-scoped values
func createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, requestTimeout)

	return ctx, cancel
}

// queryInt parses an optional integer query parameter
func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

func queryInt64Ptr(c fiber.Ctx, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func queryStringPtr(c fiber.Ctx, key string) *string {
	if raw := c.Query(key); raw != "" {
		return &raw
	}
	return nil
}

// pageQuery reads page and limit from the query string
func pageQuery(c fiber.Ctx) (int, int, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// handleFlowError maps business errors to HTTP responses
func handleFlowError(c fiber.Ctx, err error, operation string) error {
	switch {
	case businessflow.IsStatisticsCorruption(err), businessflow.IsMalformedProgress(err):
		// details stay in the server log and audit trail
		return ErrorResponse(c, fiber.StatusInternalServerError, "Internal consistency error", "INTERNAL_CONSISTENCY_ERROR", nil)
	case businessflow.IsInvalidTransition(err):
		reason := businessflow.TransitionReason(err)
		if reason == "" {
			reason = businessMessage(err)
		}
		return ErrorResponse(c, fiber.StatusConflict, reason, "INVALID_TRANSITION", nil)
	case businessflow.IsValidationError(err):
		return ErrorResponse(c, fiber.StatusBadRequest, businessMessage(err), businessCode(err, "VALIDATION_ERROR"), nil)
	case businessflow.IsInactive(err):
		return ErrorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
	case businessflow.IsAccessDenied(err):
		return ErrorResponse(c, fiber.StatusForbidden, businessMessage(err), businessCode(err, "ACCESS_DENIED"), nil)
	case businessflow.IsNotFound(err):
		return ErrorResponse(c, fiber.StatusNotFound, businessMessage(err), businessCode(err, "NOT_FOUND"), nil)
	case businessflow.IsConflict(err):
		return ErrorResponse(c, fiber.StatusConflict, businessMessage(err), businessCode(err, "CONFLICT"), nil)
	}

	log.Printf("%s failed: %v", operation, err)
	return ErrorResponse(c, fiber.StatusInternalServerError, operation+" failed", "INTERNAL_ERROR", nil)
}

func businessCode(err error, fallback string) string {
	if be := asBusinessError(err); be != nil && be.Code != "" {
		return be.Code
	}
	return fallback
}

func businessMessage(err error) string {
	if be := asBusinessError(err); be != nil && be.Message != "" {
		return be.Message
	}
	return err.Error()
}

func asBusinessError(err error) *businessflow.BusinessError {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		return be
	}
	return nil
}
