// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/niveshpath/backend/internal/auth"
)

const userIDKey = "user_id"

// authMiddleware verifies the Bearer token and stores the user ID and
// role on the context.
func authMiddleware(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(c, unauthorized("Missing or malformed Authorization header"))
			return
		}

		claims, err := issuer.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(c, unauthorized("Invalid or expired token"))
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// rateLimiter is a fixed-window per-client limiter. Windows are anchored
// at the first request after expiry; counts reset when the window rolls.
type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	counters  map[string]*windowCounter
	lastSweep time.Time
	logger    *zap.Logger
}

type windowCounter struct {
	count       int
	windowStart time.Time
}

func newRateLimiter(limit int, window time.Duration, logger *zap.Logger) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		window:   window,
		counters: make(map[string]*windowCounter),
		logger:   logger,
	}
}

// allow records one request for the client and reports whether it is
// within the limit. Expired counters for other clients are swept at most
// once per window so the map stays bounded.
func (r *rateLimiter) allow(clientKey string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) >= r.window {
		for key, counter := range r.counters {
			if now.Sub(counter.windowStart) >= r.window {
				delete(r.counters, key)
			}
		}
		r.lastSweep = now
	}

	counter, ok := r.counters[clientKey]
	if !ok || now.Sub(counter.windowStart) >= r.window {
		r.counters[clientKey] = &windowCounter{count: 1, windowStart: now}
		return true
	}

	counter.count++
	return counter.count <= r.limit
}

// middleware enforces the limit per client IP.
func (r *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.allow(c.ClientIP(), time.Now()) {
			r.logger.Warn("Rate limit exceeded", zap.String("client_ip", c.ClientIP()))
			writeError(c, &APIError{
				Code:       "rate_limited",
				Message:    "Too many requests from this IP, please try again later",
				StatusCode: 429,
			})
			return
		}
		c.Next()
	}
}
