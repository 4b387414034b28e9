package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larkes/communities-api/domain"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidCredential, domain.KindAlreadyExists:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindConfiguration, domain.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Error aborts the request with the status for err.
// Server faults get a generic message; the cause is attached to the context for the request logger.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// BadRequest aborts with 400 for a malformed body
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
