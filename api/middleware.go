package api

import (
	"net/http"

	"github.com/anveshk/osintdex/api/handlers"
	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/gin-gonic/gin"
)

const headerAPIKey = "X-API-Key"

func loggingMiddleware(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	}
}

// authMiddleware resolves the API key header to a user row. Issuing keys,
// registration and JWT flows live outside this service.
func authMiddleware(users userdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(headerAPIKey)

		user, err := users.UserByAPIKey(apiKey)
		if err != nil {
			logger.Warn("rejected request with unknown api key", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"a valid API key is required"}})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"errors": []string{"account is disabled"}})
			return
		}

		c.Set(handlers.ContextUserKey, user)
		c.Next()
	}
}

func adminOnlyMiddleware(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handlers.CurrentUser(c)
		if user == nil || !user.IsAdmin {
			logger.Warn("rejected non-admin request to admin route", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"errors": []string{"admin access required"}})
			return
		}
		c.Next()
	}
}

// _CORSMiddleware starts with _ so that it is not imported outside of the server package.
func _CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Authentication, X-API-Key, accept, origin, Cache-Control, X-Requested-With") // nolint:lll
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	}
}
