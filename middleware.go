package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

// clientLimiter is one client's token bucket and when it last asked.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// getLimiter returns the rate limiter for key (the client IP), creating it
// on first use.
func (app *App) getLimiter(key string) *rate.Limiter {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	if cl, ok := app.LimiterMap[key]; ok {
		cl.lastSeen = time.Now()
		return cl.limiter
	}

	if key == "" || key == "::1" {
		logWarn("Rate limiter key is empty or loopback: %q", key)
	}
	rps := max(app.RateLimitRPS, 1)
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), app.RateLimitBurst)
	app.LimiterMap[key] = &clientLimiter{limiter: lim, lastSeen: time.Now()}
	return lim
}

// pruneLimiters forgets clients that have not been seen since now-maxIdle
// and returns how many were dropped.
func (app *App) pruneLimiters(now time.Time, maxIdle time.Duration) int {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	idle := lo.PickBy(app.LimiterMap, func(_ string, cl *clientLimiter) bool {
		return now.Sub(cl.lastSeen) > maxIdle
	})
	for key := range idle {
		delete(app.LimiterMap, key)
	}
	return len(idle)
}

// rateLimitMiddleware returns a Gin middleware that enforces per-client rate limiting.
func (app *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !app.getLimiter(key).Allow() {
			if isHTMX(c) {
				c.Header("HX-Trigger", "rate-limit-exceeded")
			}
			logWarn("%sRate limit exceeded for %s on %s", reqPrefix(c.Request.Context()), key, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrorTooManyRequests})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware injects a request ID into the context for each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}
