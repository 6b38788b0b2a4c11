package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/infrastructure/metrics"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/sirupsen/logrus"
	"net/http"
	"strings"
	"time"
)

const (
	headerRequestID = "X-Request-Id"
	actorKey        = "actor"
)

// requestContext tags the request with an id and a request-scoped log entry.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		entry := logger.Log.WithField("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithEntry(c.Request.Context(), entry))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), elapsed)

		logger.From(c.Request.Context()).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"dur_ms": float64(elapsed.Microseconds()) / 1000.0,
			"client": c.ClientIP(),
		}).Debug("http_access")
	}
}

func rateLimit(limiter *clientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			abortWithDetail(c, http.StatusTooManyRequests, detailTooManyRequests)
			return
		}
		c.Next()
	}
}

// requireActor resolves the bearer token into an actor for the handlers below it.
func (s *Server) requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithDetail(c, http.StatusUnauthorized, detailNotAuthorized)
			return
		}

		actor, err := s.users.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(actorKey, actor)
		entry := logger.From(c.Request.Context()).WithField("actor_id", actor.ID)
		c.Request = c.Request.WithContext(logger.WithEntry(c.Request.Context(), entry))
		c.Next()
	}
}

func actorFrom(c *gin.Context) model.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(model.Actor)
	return actor
}
