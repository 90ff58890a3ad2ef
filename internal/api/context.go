// Package api holds the gin handlers for the REST surface.
package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"dealroom/pkg/util"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// SetIdentity stores the authenticated caller on the gin context.
func SetIdentity(c *gin.Context, claims *util.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	c.Set(ctxEmail, claims.Email)
}

// Role returns the caller's role, or "" when unauthenticated.
func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// bindOptionalJSON binds like ShouldBindJSON but treats an empty body as {}.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
