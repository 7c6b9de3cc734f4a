package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/partsflip/internal/config"
	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/features/safety"
	"github.com/xyz-asif/partsflip/internal/pkg/cloudinary"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
	"github.com/xyz-asif/partsflip/internal/pkg/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRoutes registers every feature under /api/v1. Rate limiter cleanup
// stops when ctx is cancelled.
func SetupRoutes(ctx context.Context, router *gin.Engine, db *mongo.Database, cfg *config.Config) {
	// API v1 group
	api := router.Group("/api/v1")

	// Deleted images also lose their hosted asset when Cloudinary is configured
	var assets moderation.AssetDestroyer
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		logger.Warn("Cloudinary disabled, image assets will not be destroyed: %v", err)
	} else {
		assets = cld
	}

	adminLimiter := ratelimit.New(cfg.AdminRateLimit, cfg.RateLimitWindow)
	adminLimiter.StartCleanup(ctx, cfg.RateLimitWindow)

	reportLimiter := ratelimit.New(cfg.ReportRateLimit, cfg.RateLimitWindow)
	reportLimiter.StartCleanup(ctx, cfg.RateLimitWindow)

	// Register feature routes
	moderation.RegisterRoutes(api, db, cfg, assets, adminLimiter)
	safety.RegisterRoutes(api, db, cfg, reportLimiter)
}
