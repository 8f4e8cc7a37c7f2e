package transport

import (
	"github.com/alex-pricope/catch-the-mole/api/models"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"net/http"
	"strings"
	"time"
)

const fingerprintKey = "fingerprint"

// RequireFingerprint rejects requests that do not identify their caller.
func RequireFingerprint() gin.HandlerFunc {
	return func(c *gin.Context) {
		fingerprint := strings.TrimSpace(c.GetHeader(models.FingerprintHeader))
		if fingerprint == "" {
			logging.Log.Warnf("Missing fingerprint on %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail(models.ErrUnauthorized, "missing user fingerprint"))
			return
		}
		c.Set(fingerprintKey, fingerprint)
		c.Next()
	}
}

// Fingerprint returns the caller identity, or "" for anonymous callers.
func Fingerprint(c *gin.Context) string {
	if v := c.GetString(fingerprintKey); v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader(models.FingerprintHeader))
}

// AccessLogMiddleware logs state changing requests and failures. Room polling is skipped.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		if path == "/favicon.ico" || isRoomPoll(c.Request.Method, path) {
			return
		}
		status := c.Writer.Status()
		if c.Request.Method == http.MethodGet && status < 400 {
			return
		}

		userAgent := c.Request.UserAgent()
		if len(userAgent) > 100 {
			userAgent = userAgent[:100]
		}
		referer := c.Request.Referer()
		if referer == "" {
			referer = "-"
		}
		logging.Log.WithFields(logrus.Fields{
			"ip":         c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency":    time.Since(start),
			"user_agent": userAgent,
			"referer":    referer,
		}).Info("request")
	}
}

func isRoomPoll(method, path string) bool {
	if method != http.MethodGet || !strings.HasPrefix(path, "/api/rooms/") {
		return false
	}
	return len(strings.Split(strings.TrimSuffix(path, "/"), "/")) == 4
}
