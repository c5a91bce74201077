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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niveshpath/backend/internal/mistral"
	"github.com/niveshpath/backend/internal/store"
)

// APIError is the JSON error shape returned by every handler.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Error constructors for the common failure shapes.

func badRequest(message string) *APIError {
	return &APIError{Code: "bad_request", Message: message, StatusCode: http.StatusBadRequest}
}

func unauthorized(message string) *APIError {
	return &APIError{Code: "unauthorized", Message: message, StatusCode: http.StatusUnauthorized}
}

func notFound(message string) *APIError {
	return &APIError{Code: "not_found", Message: message, StatusCode: http.StatusNotFound}
}

func conflict(message string) *APIError {
	return &APIError{Code: "conflict", Message: message, StatusCode: http.StatusConflict}
}

func internal(err error) *APIError {
	return &APIError{
		Code:       "internal_error",
		Message:    "An internal error occurred",
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// writeError sends the error response and records the internal cause on
// the gin context for logging middleware.
func writeError(c *gin.Context, apiErr *APIError) {
	if apiErr.Internal != nil {
		_ = c.Error(apiErr.Internal)
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, gin.H{"error": apiErr})
}

// writeStoreError maps store failures onto API errors.
func writeStoreError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, notFound(notFoundMessage))
		return
	}
	writeError(c, internal(err))
}

// upstreamError maps categorized model errors onto HTTP statuses: auth
// misconfiguration reads as service unavailable, rate limiting propagates
// 429 with a retry hint, timeouts map to gateway timeout, and server or
// malformed responses to bad gateway.
func upstreamError(err error) *APIError {
	var rateErr *mistral.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		return &APIError{
			Code:       "upstream_rate_limited",
			Message:    "AI service is rate limited, please retry shortly",
			StatusCode: http.StatusTooManyRequests,
			Internal:   err,
		}
	case errors.Is(err, mistral.ErrRateLimited):
		return &APIError{
			Code:       "upstream_rate_limited",
			Message:    "AI service is rate limited, please retry shortly",
			StatusCode: http.StatusTooManyRequests,
			Internal:   err,
		}
	case errors.Is(err, mistral.ErrAuth):
		return &APIError{
			Code:       "upstream_auth",
			Message:    "AI service is unavailable",
			StatusCode: http.StatusServiceUnavailable,
			Internal:   err,
		}
	case errors.Is(err, mistral.ErrTimeout):
		return &APIError{
			Code:       "upstream_timeout",
			Message:    "AI service timed out",
			StatusCode: http.StatusGatewayTimeout,
			Internal:   err,
		}
	default:
		return &APIError{
			Code:       "upstream_error",
			Message:    "AI service returned an invalid response",
			StatusCode: http.StatusBadGateway,
			Internal:   err,
		}
	}
}
