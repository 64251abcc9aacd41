package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studentdeals-backend/internal/shared"
)

// FromError maps a service error onto the response envelope. Business
// errors carry their own status and code; validation errors become 400
// with per-field details; anything else is a 500.
func FromError(c *gin.Context, err error) {
	var appErr *shared.AppError
	if errors.As(err, &appErr) {
		ErrorWithDetails(c, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		details := make(map[string]interface{}, len(fields))
		for name, fieldErr := range fields {
			details[name] = fieldErr.Error()
		}
		ErrorWithDetails(c, http.StatusBadRequest, "VAL_001", "Validation failed", details)
		return
	}

	ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "Internal server error")
}
