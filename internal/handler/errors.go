package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rar-studio/internal/service"
)

// respondError maps service errors onto the HTTP error envelope
func respondError(c *gin.Context, err error, message string) {
	var validation *service.ValidationError
	var capacity *service.CapacityExceededError

	switch {
	case errors.As(err, &validation):
		badRequest(c, validation.Message)
	case errors.As(err, &capacity):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":      "capacity_exceeded",
			"message":    capacity.Error(),
			"code":       http.StatusPaymentRequired,
			"month":      capacity.Month,
			"used_leads": capacity.Used,
			"lead_cap":   capacity.Cap,
		})
	case errors.Is(err, service.ErrLeadNotFound):
		notFound(c, "Lead not found")
	case errors.Is(err, service.ErrFunnelNotFound):
		notFound(c, "Funnel not found")
	default:
		logrus.Errorf("%s: %v", message, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: message,
			Code:    http.StatusInternalServerError,
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: message,
		Code:    http.StatusNotFound,
	})
}
