package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

// RequireRoles allows the request through only for the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminAccess guards the admin panel. Bearer tokens are always parsed so handlers can use the
// caller's identity; when required is set, a token with role admin is mandatory.
func AdminAccess(validator TokenValidator, required bool) []gin.HandlerFunc {
	if !required {
		return []gin.HandlerFunc{OptionalJWT(validator)}
	}
	return []gin.HandlerFunc{JWT(validator), RequireRoles(models.RoleAdmin)}
}
