package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"
	callerKey    = "caller"

	maxRequestIDLen = 128
)

// requestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(common.RequestIDHeaderName))
		if len(id) > maxRequestIDLen {
			id = id[:maxRequestIDLen]
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		s.logger.Info(c.Request.Context(), "request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(startedAt).Microseconds())/1000.0,
			"client_ip", c.ClientIP(),
		)
	}
}

// timeout bounds every request's context, and with it every storage call.
func (s *Server) timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.RequestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireLogin resolves "Authorization: Bearer <token>" to the caller's
// username, or stops the request with 401.
func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, _ := strings.Cut(c.GetHeader(common.AuthorizationHeaderName), " ")
		if !strings.EqualFold(scheme, common.BearerScheme) {
			token = ""
		}

		username, err := s.guard.Authenticate(token)
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(callerKey, username)
		c.Next()
	}
}

// requireCorrectUser lets only the user named in :username through.
func (s *Server) requireCorrectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.guard.RequireUser(caller(c), c.Param("username")); err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
