package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"catalog-service/internal/apperr"
	"catalog-service/internal/audit"
	"catalog-service/internal/auth"
	"catalog-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader  = "X-Request-ID"
	requestIDKey     = "request_id"
	identityKey      = "identity"
	rateLimitTimeout = 250 * time.Millisecond
)

// RateLimiter counts requests per scope in fixed windows. redisclient.Client implements it.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
}

// recovery answers panics with a generic 500 and logs them with their stack
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.ByteString("stack", debug.Stack()))

		meta := apperr.MetadataFor(apperr.CodeInternal)
		c.AbortWithStatusJSON(meta.HTTPStatus, errorResponse{Error: apperr.CodeInternal, Message: meta.PublicMessage})
	})
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return cors.New(config)
}

// rateLimit allows limit requests per client IP and minute. A failing limiter lets requests through.
func rateLimit(limiter RateLimiter, limit int64, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), rateLimitTimeout)
		allowed, _, err := limiter.FixedWindowAllow(ctx, "ip:"+c.ClientIP(), limit, time.Minute)
		cancel()

		if err != nil {
			logger.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			util.RateLimitedTotal.Inc()
			c.Header("Retry-After", "60")
			respondError(c, apperr.New(apperr.CodeRateLimited, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}

// requireAdmin resolves the bearer token and rejects non-admin callers
func requireAdmin(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, apperr.New(apperr.CodeUnauthorized, "missing or invalid authorization header"))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if apperr.As(err) == nil {
				err = apperr.Unavailable(err, "authentication service unavailable")
			}
			respondError(c, err)
			return
		}

		if !identity.IsAdmin() {
			respondError(c, apperr.New(apperr.CodeForbidden, "Admin access required"))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// auditRequests records every mutating request after it completes
func auditRequests(recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}

		recorder.Log(c.Request.Context(), actorID(c), c.Request.Method, c.Request.URL.Path, map[string]interface{}{
			"status_code": c.Writer.Status(),
			"client":      c.ClientIP(),
			"request_id":  c.GetString(requestIDKey),
		})
	}
}

func actorID(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(*auth.Identity); ok {
			return identity.UserID
		}
	}
	return ""
}
