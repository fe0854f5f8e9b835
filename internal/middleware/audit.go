package middleware

import (
	"log"
	"time"

	"account-hub/internal/audit"
	"account-hub/internal/models"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware appends one trail event per authenticated request, after
// the handler ran. Anonymous requests are not recorded. Request bodies are
// never captured.
func AuditMiddleware(trail *audit.Trail) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		acc, ok := CurrentAccount(c)
		if !ok {
			return
		}

		ev := models.AuditEvent{
			Time:      time.Now(),
			AccountID: acc.ID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := trail.Append(ev); err != nil {
			// the trail is best-effort; never fail the request over it
			log.Printf("audit append: %v", err)
		}
	}
}
