package moderation

import (
	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/partsflip/internal/config"
	"github.com/xyz-asif/partsflip/internal/middleware"
	"github.com/xyz-asif/partsflip/internal/pkg/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterRoutes mounts the admin moderation API. assets may be nil.
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, assets AssetDestroyer, limiter *ratelimit.RateLimiter) {
	reports := NewReportRepository(db)
	content := NewContentRepository(db, assets)
	users := NewUserRepository(db)

	executor := NewExecutor(reports, content, users, ExecutorConfigFrom(cfg))
	queries := NewQueryService(reports, content, users)
	handler := NewHandler(executor, queries)

	admin := router.Group("/admin")
	admin.Use(
		middleware.Auth(cfg.JWTSecret),
		middleware.RequireAdmin(),
		ratelimit.KeyedMiddleware(limiter, middleware.PrincipalKey),
	)
	{
		admin.GET("/reports", handler.ListReports)
		admin.GET("/reports/:id", handler.GetReport)
		admin.PATCH("/reports/:id/status", handler.UpdateReportStatus)
		admin.POST("/reports/:id/dismiss", handler.DismissReport)
		admin.POST("/reports/:id/delete-item", handler.DeleteItem)
		admin.POST("/reports/:id/delete-item-mute-user", handler.DeleteItemMuteUser)
		admin.GET("/muted-users", handler.ListMutedUsers)
	}
}
