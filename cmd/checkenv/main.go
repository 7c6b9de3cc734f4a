// Command checkenv verifies the .env settings before the first deploy.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/xyz-asif/partsflip/internal/config"
	"github.com/xyz-asif/partsflip/internal/database"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup("info", "console", os.Stdout)

	// Test MongoDB
	fmt.Println("Testing MongoDB connection...")
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("MongoDB connection failed: %v", err)
	}
	defer db.Disconnect(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, name := range []string{"reports", "users", "comments", "listings", "images", "products"} {
		n, err := db.Database.Collection(name).EstimatedDocumentCount(ctx)
		if err != nil {
			logger.Fatal("Reading collection %s failed: %v", name, err)
		}
		fmt.Printf("  %-10s %d documents\n", name, n)
	}
	fmt.Println("✅ MongoDB connected successfully!")

	// Test Cloudinary
	fmt.Println("\nTesting Cloudinary connection...")
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		logger.Warn("Cloudinary credentials missing, deleted images will keep their hosted assets")
	} else {
		cldURL := fmt.Sprintf("cloudinary://%s:%s@%s", cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryCloudName)
		cld, err := cloudinary.NewFromURL(cldURL)
		if err != nil {
			logger.Fatal("Cloudinary initialization failed: %v", err)
		}
		if cld.Config.Cloud.CloudName != cfg.CloudinaryCloudName {
			logger.Fatal("Cloudinary config mismatch")
		}
		fmt.Println("✅ Cloudinary connected successfully!")
		fmt.Printf("  Cloud Name: %s\n", cfg.CloudinaryCloudName)
	}

	if cfg.JWTSecret == "secret" {
		logger.Warn("JWT_SECRET is the development default")
	}

	fmt.Println("\nModeration settings:")
	fmt.Printf("  Mute days: %d-%d\n", cfg.MinMuteDays, cfg.MaxMuteDays)
	fmt.Printf("  Mute retries: %d every %s\n", cfg.MuteRetryAttempts, cfg.MuteRetryDelay)
	fmt.Printf("  Claim TTL: %s\n", cfg.ClaimTTL)
	fmt.Println("\n🎉 All systems ready!")
}
