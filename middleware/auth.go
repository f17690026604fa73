package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/utils"
)

const (
	CtxUser         = "user"
	HeaderEditToken = "X-Form-Edit-Token"
	CtxForm         = "formObj" // form preloaded by owner/editor middleware
)

// AuthJWT checks Authorization: Bearer <token>, validates the JWT, loads
// the user and injects it into the context.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := userFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		c.Set(CtxUser, u)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present but lets
// anonymous requests through. Entry submission uses this: published forms
// accept guests unless single-submission demands an identity.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := userFromRequest(c); ok {
			c.Set(CtxUser, u)
		}
		c.Next()
	}
}

// RequireAdmin blocks routes reserved for admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

func userFromRequest(c *gin.Context) (models.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return models.User{}, false
	}
	rawToken := strings.TrimSpace(authHeader[7:])

	claims, err := utils.VerifyToken(rawToken)
	if err != nil {
		return models.User{}, false
	}

	// UserID claim is a string; parse it to look up the primary key.
	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return models.User{}, false
	}

	var user models.User
	if err := config.DB.First(&user, uid).Error; err != nil {
		return models.User{}, false
	}
	return user, true
}
