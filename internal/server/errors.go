package server

import (
	"errors"
	"net/http"
	"strings"

	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, discountdomain.ErrDuplicateCode),
		errors.Is(err, pricingdomain.ErrReapplyInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: sentinelMessage(err, "conflict"),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isPricingFailure(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "pricing_failed",
			Message: sentinelMessage(err, "pricing failed"),
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isTenantError(err),
		isRuleValidationError(err),
		isDynamicValidationError(err),
		isDiscountValidationError(err),
		isSubscriptionValidationError(err),
		isTripValidationError(err),
		errors.Is(err, pricingdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isTenantError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidTenant),
		errors.Is(err, ruledomain.ErrInvalidTenant),
		errors.Is(err, dynamicdomain.ErrInvalidTenant),
		errors.Is(err, discountdomain.ErrInvalidTenant),
		errors.Is(err, subscriptiondomain.ErrInvalidTenant),
		errors.Is(err, tripdomain.ErrInvalidTenant):
		return true
	default:
		return false
	}
}

func isRuleValidationError(err error) bool {
	switch err {
	case ruledomain.ErrInvalidID,
		ruledomain.ErrInvalidName,
		ruledomain.ErrInvalidRuleType,
		ruledomain.ErrInvalidRuleStatus,
		ruledomain.ErrInvalidPeakWindow,
		ruledomain.ErrInvalidValidityRange,
		ruledomain.ErrInvalidDays,
		ruledomain.ErrInvalidPrice,
		ruledomain.ErrMissingBasePrice,
		ruledomain.ErrMissingPricePerKm,
		ruledomain.ErrMissingPeakConfig:
		return true
	default:
		return false
	}
}

func isDynamicValidationError(err error) bool {
	switch err {
	case dynamicdomain.ErrInvalidID,
		dynamicdomain.ErrInvalidName,
		dynamicdomain.ErrInvalidWindow,
		dynamicdomain.ErrInvalidMultiplier:
		return true
	default:
		return false
	}
}

func isDiscountValidationError(err error) bool {
	switch err {
	case discountdomain.ErrInvalidID,
		discountdomain.ErrInvalidCode,
		discountdomain.ErrInvalidDiscountType,
		discountdomain.ErrInvalidValue,
		discountdomain.ErrInvalidValidity:
		return true
	default:
		return false
	}
}

func isSubscriptionValidationError(err error) bool {
	switch err {
	case subscriptiondomain.ErrInvalidID,
		subscriptiondomain.ErrInvalidName,
		subscriptiondomain.ErrInvalidDiscount,
		subscriptiondomain.ErrInvalidDuration:
		return true
	default:
		return false
	}
}

func isTripValidationError(err error) bool {
	switch err {
	case tripdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tripdomain.ErrTripNotFound),
		errors.Is(err, tripdomain.ErrRouteNotFound),
		errors.Is(err, ruledomain.ErrRuleNotFound),
		errors.Is(err, dynamicdomain.ErrRuleNotFound),
		errors.Is(err, discountdomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrPlanNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, pricingdomain.ErrTripNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// isPricingFailure covers requests that were well-formed but could not be
// priced: no rule matched, the matching rules were misconfigured, or the
// promo code was rejected.
func isPricingFailure(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrNoApplicablePricing),
		errors.Is(err, pricingdomain.ErrInvalidRuleConfig),
		errors.Is(err, pricingdomain.ErrUnableToCalculate),
		errors.Is(err, pricingdomain.ErrMissingStations),
		errors.Is(err, pricingdomain.ErrStationNotOnRoute),
		errors.Is(err, pricingdomain.ErrNoStationPricing),
		errors.Is(err, pricingdomain.ErrMissingDistance),
		errors.Is(err, pricingdomain.ErrDiscountNotApplied),
		errors.Is(err, discountdomain.ErrExhausted):
		return true
	default:
		return false
	}
}

// sentinelMessage keeps the wrapped detail (for example the reason a promo
// code was rejected) in the response message.
func sentinelMessage(err error, fallback string) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return fallback
	}
	return strings.ReplaceAll(msg, "_", " ")
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
