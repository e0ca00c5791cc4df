package mockserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oarkflow/mebel/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxUserID       = "user_id"
	ctxUserRole     = "user_role"
)

// requestID echoes the caller's X-Request-ID or assigns one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

func logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).Round(time.Microsecond),
			"request_id", c.GetString(ctxRequestID),
		}
		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// authenticate verifies the bearer token and loads the caller.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		claims, err := auth.ParseToken(s.opts.Secret, strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token tidak valid atau kedaluwarsa"})
			return
		}

		res := s.users.Get(c.Request.Context(), claims.UserID)
		if !res.OK() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User tidak ditemukan"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, res.Data().Role)
		c.Next()
	}
}

// requireRoles only lets the listed roles through.
func requireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[strings.ToLower(c.GetString(ctxUserRole))]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Akses ditolak"})
			return
		}
		c.Next()
	}
}
