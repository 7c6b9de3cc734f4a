package safety

import (
	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/partsflip/internal/config"
	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/middleware"
	"github.com/xyz-asif/partsflip/internal/pkg/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, limiter *ratelimit.RateLimiter) {
	repo := NewRepository(db)
	content := moderation.NewContentRepository(db, nil)
	handler := NewHandler(repo, content)

	router.POST("/reports",
		middleware.Auth(cfg.JWTSecret),
		ratelimit.KeyedMiddleware(limiter, middleware.PrincipalKey),
		handler.CreateReport,
	)
}
