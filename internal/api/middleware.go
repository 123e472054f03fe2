package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"resto-service/internal/auth"
	"resto-service/internal/models"
	"resto-service/internal/util"

	"github.com/gin-gonic/gin"
)

const profileKey = "profile"

// prometheusMiddleware records request counts and latency
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// bearerToken extracts the token from the Authorization header, empty if
// absent.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// authRequired verifies the session token and attaches the profile to the
// request context.
func authRequired(sessions *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		profile, err := sessions.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// roleRequired restricts a route group to one role. Must run after
// authRequired.
func roleRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := currentProfile(c)
		if profile == nil || profile.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func currentProfile(c *gin.Context) *models.UserProfile {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil
	}
	profile, ok := v.(*models.UserProfile)
	if !ok {
		return nil
	}
	return profile
}
