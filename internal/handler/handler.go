// Package handler maps the HTTP surface onto the services. The ported
// endpoints keep their historical response bodies: plain strings for most
// operations, a {"message": ...} object for login errors.
package handler

import (
	"backend/internal/apperror"
	"strconv"

	"github.com/gin-gonic/gin"
)

// writeError renders a service error as a plain-string body.
func writeError(c *gin.Context, err error) {
	c.String(apperror.HTTPStatus(err), err.Error())
}

// writeMessageError renders a service error as a {"message": ...} object.
func writeMessageError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), gin.H{"message": err.Error()})
}

// pathID parses the numeric id path parameter.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
