package middleware

import (
	"net/http"
	"strings"

	"account-hub/internal/models"
	"account-hub/internal/service"
	"account-hub/internal/util"

	"github.com/gin-gonic/gin"
)

const currentAccountKey = "currentAccount"

// AuthMiddleware resolves the bearer token through the account service and
// puts the authenticated account into the request context. Tokens stay
// opaque here; only the session issuer (behind Authenticate) parses them.
func AuthMiddleware(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// query param fallback for downloads, where headers can't be set
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
			c.Abort()
			return
		}

		acc, err := svc.Authenticate(tokenStr)
		if err != nil {
			util.ErrorFrom(c, err)
			c.Abort()
			return
		}

		c.Set(currentAccountKey, acc)
		c.Next()
	}
}

// AdminOnly gates admin routes; it must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := CurrentAccount(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if acc.Role != models.RoleAdmin {
			util.Error(c, http.StatusForbidden, service.KindUnauthorized, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account placed in the context by AuthMiddleware.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(currentAccountKey)
	if !ok {
		return nil, false
	}
	acc, ok := v.(*models.Account)
	if !ok || acc == nil {
		return nil, false
	}
	return acc, true
}
