package middleware

import (
	"strings"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 验证请求携带的 JWT 并将声明写入上下文
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(parts[1], cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RoleMiddleware admits only the listed roles. There is no bypass role;
// every handler names the roles it serves.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		util.Forbidden(c)
		c.Abort()
	}
}

// ScopeMiddleware resolves the caller's visibility set once per request and
// stores it for the handlers. Runs after AuthMiddleware.
func ScopeMiddleware(scopes *service.ScopeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		scope, err := scopes.Resolve(claims.UserID, claims.Role)
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		c.Set("scope", scope)
		c.Next()
	}
}

// GetScope returns the resolved scope for the request, or false when the
// scope middleware did not run.
func GetScope(c *gin.Context) (model.Scope, bool) {
	v, exists := c.Get("scope")
	if !exists {
		return model.Scope{}, false
	}
	scope, ok := v.(model.Scope)
	return scope, ok
}
