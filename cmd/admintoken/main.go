// Command admintoken mints a moderator token for reviewctl, signed with the
// service's JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xyz-asif/partsflip/internal/config"
	"github.com/xyz-asif/partsflip/internal/pkg/jwt"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
	"github.com/xyz-asif/partsflip/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	userID := flag.String("user", "", "admin user id (hex ObjectID)")
	email := flag.String("email", "", "admin email")
	tags := flag.String("tags", "", "comma separated category tags, * for every tag")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	logger.Setup("info", "console", os.Stderr)

	if _, err := primitive.ObjectIDFromHex(*userID); err != nil {
		logger.Fatal("-user must be a valid id: %v", err)
	}

	scope := validator.NormalizeTags(strings.Split(*tags, ","))
	if len(scope) == 0 {
		logger.Fatal("-tags is required; an admin without tags cannot see any report")
	}

	jwtCfg := jwt.DefaultConfig(cfg.JWTSecret)
	jwtCfg.AccessExpiry = *ttl

	token, err := jwt.GenerateToken(*userID, *email, jwt.RoleAdmin, scope, jwtCfg)
	if err != nil {
		logger.Fatal("Failed to sign token: %v", err)
	}

	if cfg.JWTSecret == "secret" {
		logger.Warn("Signed with the development JWT_SECRET")
	}
	fmt.Println(token)
}
