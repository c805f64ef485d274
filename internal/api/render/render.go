// Package render maps service results and typed failures to transport
// shapes. Validation failures surface as 422 with the structured bodies
// clients rely on; nothing here makes decisions of its own.
package render

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-hierarchy/internal/common"
)

// Error writes the HTTP response for a failed operation.
func Error(c *gin.Context, err error) {
	var domainErr *common.DomainError
	if !errors.As(err, &domainErr) {
		log.Printf("api: unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	switch {
	case domainErr.Code == common.ErrInvalidParentChild:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid parent-child relationship",
		})
	case common.IsTenancyRuleViolation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":  "Tenancy rules violation",
			"message": domainErr.Message,
		})
	case domainErr.Code == common.ErrParentNotFound,
		domainErr.Code == common.ErrInvalidInput,
		domainErr.Code == common.ErrAlreadyExists:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":  "error",
			"message": domainErr.Message,
		})
	case domainErr.Code == common.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			"message": domainErr.Message,
		})
	case domainErr.Code == common.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": domainErr.Message,
		})
	case domainErr.Code == common.ErrUnauthorized,
		domainErr.Code == common.ErrInvalidToken,
		domainErr.Code == common.ErrTokenExpired:
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthenticated.",
		})
	default:
		log.Printf("api: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
	}
}
