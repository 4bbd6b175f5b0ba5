package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/internal/apperrors"
)

// respondError translates the error taxonomy into an HTTP status and a
// client-safe message. Internal errors never leak their details.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case apperrors.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperrors.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperrors.KindAuth:
		status = http.StatusUnauthorized
		message = err.Error()
	case apperrors.KindForbidden:
		status = http.StatusForbidden
		message = err.Error()
	case apperrors.KindIntegration:
		status = http.StatusBadGateway
		message = err.Error()
	}

	c.JSON(status, gin.H{"error": message})
}
