package v1

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/internal/service"
	"github.com/vivesalud/productiva/pkg/auth"
	"github.com/vivesalud/productiva/pkg/metrics"
)

const claimsContextKey = "auth_claims"

// AuthMiddleware validates the Bearer token and stores the claims on the
// request context. Every route behind it can assume an authenticated caller.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(401, ErrorResponse{Error: "missing authorization header"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(401, ErrorResponse{Error: "authorization header must be a Bearer token"})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(401, ErrorResponse{Error: "invalid or expired token"})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *domain.Claims {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.Claims)
	return claims
}

func callerFrom(c *gin.Context) service.Caller {
	claims := claimsFrom(c)
	if claims == nil {
		return service.Caller{IP: c.ClientIP()}
	}
	return service.Caller{
		Email: claims.Email,
		Role:  claims.Role,
		IP:    c.ClientIP(),
	}
}

// MetricsMiddleware records request counts, latency, and in-flight gauge.
// The route template is used as the path label to keep cardinality bounded.
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.InFlightGauge.Inc()

		c.Next()

		collector.InFlightGauge.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		collector.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		collector.RequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
	}
}
