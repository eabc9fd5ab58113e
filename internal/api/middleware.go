package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/metrics"
	"tidalpower/fitness-studio/internal/service"
)

const ContextPrincipalKey = "principal"

// AuthMiddleware validates the Bearer token and stores the caller's
// domain.Principal in the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &service.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}
		if !token.Valid || claims.UserID == "" || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
			return
		}

		c.Set(ContextPrincipalKey, domain.Principal{UserID: userID, Role: claims.Role})
		c.Next()
	}
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware rejects callers whose role is not in allowedRoles.
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := getPrincipal(c)
		if !ok {
			abortWithError(c, http.StatusInternalServerError, "User not found in context")
			return
		}
		for _, allowed := range allowedRoles {
			if principal.Role == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", principal.Role))
	}
}

func getPrincipal(c *gin.Context) (domain.Principal, bool) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return domain.Principal{}, false
	}
	p, ok := raw.(domain.Principal)
	return p, ok
}

// RequestLogger writes one log line per request once it has been served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ua":       c.Request.UserAgent(),
		}
		if p, ok := getPrincipal(c); ok {
			fields["user_id"] = p.UserID.Hex()
		}
		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}

// RequestMetrics records request count, in-flight requests and latency per
// matched route.
func RequestMetrics(mm *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		mm.GaugeRequests.Inc()
		defer mm.GaugeRequests.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		defer func(begin time.Time) {
			mm.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		}(time.Now())

		c.Next()

		mm.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}).Inc()
	}
}

// PanicRecovery turns a handler panic into a 500 and counts it.
func PanicRecovery(mm *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, r, debug.Stack())
				if mm != nil {
					mm.CounterRequestPanics.Inc()
				}
				abortWithError(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
