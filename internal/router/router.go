package router

import (
	"net/http"

	"account-hub/internal/audit"
	"account-hub/internal/config"
	"account-hub/internal/handler"
	"account-hub/internal/metrics"
	"account-hub/internal/middleware"
	"account-hub/internal/service"
	"account-hub/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps carries everything the routes need. Built once in main and in tests.
type Deps struct {
	Config    *config.Config
	Store     store.Store
	Service   *service.AccountService
	Trail     *audit.Trail
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
	Limiter   *middleware.RateLimiter
}

// Setup configures the gin engine: public auth and directory routes, the
// authenticated profile surface and the admin group.
func Setup(d Deps) *gin.Engine {
	if d.Config.Server.Mode != "" {
		gin.SetMode(d.Config.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if d.Collector != nil {
		r.Use(middleware.MetricsMiddleware(d.Collector))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	api := r.Group("/api")

	// registration and login, rate limited per client IP
	authHandler := handler.NewAuthHandler(d.Service, d.Collector)
	authRoutes := api.Group("/auth")
	if d.Limiter != nil {
		authRoutes.Use(d.Limiter.Middleware())
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// public directory, deliberately narrow
	api.GET("/accounts", handler.ListPublic(d.Service))

	// authenticated surface
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(d.Service))
	if d.Trail != nil {
		protected.Use(middleware.AuditMiddleware(d.Trail))
	}

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(d.Service))
	protected.POST("/profile/password", handler.ChangePassword(d.Service))

	// admin surface
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())

	adminHandler := handler.NewAdminHandler(d.Service, d.Store, d.Trail)
	admin.POST("/accounts/:id/role", adminHandler.SetRole)
	admin.GET("/audit", adminHandler.ListAudit)
	admin.GET("/export/csv", adminHandler.ExportCSV)
	admin.GET("/export/xlsx", adminHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(d.Store, d.Config.Security.EncryptionKey, d.Config.Backup.Dir)
	admin.POST("/backups", backupHandler.Create)
	admin.GET("/backups", backupHandler.List)
	admin.GET("/backups/:name/download", backupHandler.Download)
	admin.POST("/backups/:name/restore", backupHandler.Restore)

	return r
}
