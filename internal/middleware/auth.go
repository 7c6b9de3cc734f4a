// ================== internal/middleware/auth.go ==================
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/partsflip/internal/pkg/jwt"
	"github.com/xyz-asif/partsflip/internal/pkg/response"
	"github.com/xyz-asif/partsflip/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const principalKey = "principal"

// Principal is the authenticated caller of a request
type Principal struct {
	UserID primitive.ObjectID
	Email  string
	Role   string
	Tags   []string
}

// IsAdmin reports whether the principal may use the moderation endpoints
func (p *Principal) IsAdmin() bool {
	return p.Role == jwt.RoleAdmin
}

// Auth validates the bearer token and stores the Principal on the context
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			response.Unauthorized(c, "Invalid authorization format", "INVALID_AUTH_FORMAT")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(fields[1], secret)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		role := claims.Role
		if role == "" {
			role = jwt.RoleUser
		}

		c.Set(principalKey, &Principal{
			UserID: userID,
			Email:  claims.Email,
			Role:   role,
			Tags:   validator.NormalizeTags(claims.Tags),
		})
		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// RequireAdmin rejects authenticated principals that are not admins. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
			c.Abort()
			return
		}
		if !p.IsAdmin() {
			response.Forbidden(c, "Admin access required", "FORBIDDEN")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the Principal stored by Auth
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := val.(*Principal)
	return p, ok
}

// PrincipalKey keys rate limits by the authenticated user
func PrincipalKey(c *gin.Context) string {
	return c.GetString("userID")
}
