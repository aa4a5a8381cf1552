// Package controllers holds the gin handlers of the HTTP API.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"blockflow/accounts"
	"blockflow/logger"
	"blockflow/middleware"
	"blockflow/models"
	"blockflow/orders"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"message": message, "data": data})
}

func created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"message": message, "data": data})
}

// fail maps a service error onto its HTTP status and writes the error body.
func fail(c *gin.Context, err error) {
	var ve *models.ValidationError
	var qe *models.QueryError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": ve.Fields})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, models.ErrInsufficientStock), errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &qe):
		logger.Error(c.Request.Context(), "catalog query failed", "op", qe.Op, "error", qe.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed: " + qe.Op})
	default:
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	_ = c.Error(err)
}

func invalid(c *gin.Context, field, msg string) {
	fail(c, models.NewValidationError(field, msg))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		invalid(c, "id", "must be a positive integer")
		return 0, false
	}
	return id, true
}

// caller returns the authenticated principal AuthMiddleware stored on the request.
func caller(c *gin.Context) (*accounts.Claims, orders.Caller, bool) {
	claims, found := middleware.Claims(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return nil, orders.Caller{}, false
	}
	return claims, orders.Caller{UserID: claims.UserID, Admin: claims.IsAdmin()}, true
}
