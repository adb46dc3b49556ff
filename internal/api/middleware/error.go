package middleware

import (
	"errors"
	"net/http"

	"fes-bids/internal/api/models"
	"fes-bids/internal/data"
	"fes-bids/internal/model"
	"fes-bids/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware handles panics and errors
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorf(c.Request.Context(), "panic serving %s: %v", c.Request.URL.Path, recovered)
		if err, ok := recovered.(string); ok {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err},
			})
		} else {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"},
			})
		}
		c.Abort()
	})
}

// Classify maps a workflow error onto an HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, model.ErrInvalidLag):
		return http.StatusBadRequest, "INVALID_LAG"
	case errors.Is(err, model.ErrMisaligned):
		return http.StatusUnprocessableEntity, "MISALIGNED"
	case errors.Is(err, model.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, "INVALID_QUANTITY"
	case data.IsVendorError(err):
		return http.StatusBadGateway, "VENDOR_ERROR"
	}
	return http.StatusInternalServerError, "RUN_ERROR"
}

// AbortWithError writes err as an ErrorResponse. Details may be nil.
func AbortWithError(c *gin.Context, err error, details map[string]interface{}) {
	status, code := Classify(err)
	detail := models.ErrorDetail{Code: code, Message: err.Error(), Details: details}

	var re *model.RunError
	if errors.As(err, &re) {
		if detail.Details == nil {
			detail.Details = map[string]interface{}{}
		}
		detail.Details["step"] = re.Step
		if re.Unit != "" {
			detail.Details["unit"] = re.Unit
		}
		detail.Details["lag"] = re.Lag.String()
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: detail})
}
