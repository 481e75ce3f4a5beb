package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/surveycraft/survey-service/internal/config"
	"github.com/surveycraft/survey-service/internal/models"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUsername = "username"
)

// Authenticator validates Casdoor-issued bearer tokens and puts the
// caller's identity into the request context.
type Authenticator struct {
	client *casdoorsdk.Client
}

func NewAuthenticator(cfg *config.Config) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &Authenticator{client: client}
}

// RequireAuth rejects requests without a valid bearer token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing or malformed authorization header",
			})
			return
		}

		claims, err := a.client.ParseJwtToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		role := models.RoleUser
		if claims.User.IsAdmin {
			role = models.RoleAdmin
		}

		c.Set(ContextUserID, claims.User.Id)
		c.Set(ContextUsername, claims.User.Name)
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists || role.(models.UserRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
