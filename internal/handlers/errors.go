package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/school-system/promotion/internal/promotion"
	"github.com/school-system/promotion/internal/services"
	"gorm.io/gorm"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, promotion.ErrOverrideReasonRequired),
		errors.Is(err, services.ErrExamClassMismatch),
		errors.Is(err, services.ErrNoTargetClass):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrExamNotFound),
		errors.Is(err, services.ErrClassNotFound),
		errors.Is(err, promotion.ErrUnknownStudent),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateStudent),
		errors.Is(err, services.ErrNothingToPromote),
		errors.Is(err, promotion.ErrNotFailed),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
