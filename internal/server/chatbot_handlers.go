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
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/niveshpath/backend/internal/store"
)

type queryRequest struct {
	Query          string `json:"query" binding:"required,min=2,max=1000"`
	ConversationID string `json:"conversationId" binding:"omitempty,uuid"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	answer, err := s.engine.AnswerQuery(c.Request.Context(), currentUserID(c), req.Query, req.ConversationID)
	if err != nil {
		writeError(c, internal(err))
		return
	}

	// A failed model call still yields a persisted fallback answer; the
	// status reflects the upstream failure while the body carries the
	// localized text.
	if answer.ModelErr != nil {
		apiErr := upstreamError(answer.ModelErr)
		_ = c.Error(answer.ModelErr)
		c.JSON(apiErr.StatusCode, gin.H{
			"response":       answer.Text,
			"sessionId":      answer.SessionID,
			"conversationId": answer.ConversationID,
			"profileStatus":  answer.ProfileStatus,
			"fallback":       answer.Fallback,
			"error":          apiErr,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":       answer.Text,
		"sessionId":      answer.SessionID,
		"conversationId": answer.ConversationID,
		"profileStatus":  answer.ProfileStatus,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	skip := intQuery(c, "skip", 0)

	turns, total, err := s.store.History(c.Request.Context(), currentUserID(c), limit, skip)
	if err != nil {
		writeError(c, internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chatHistory": turns,
		"pagination": gin.H{
			"total":   total,
			"limit":   limit,
			"skip":    skip,
			"hasMore": total > skip+limit,
		},
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	turn, err := s.store.GetTurn(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Chat session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chatSession": turn})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.store.DeleteTurn(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeStoreError(c, err, "Chat session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Chat session deleted successfully",
		"sessionId": c.Param("id"),
	})
}

type feedbackRequest struct {
	Helpful  *bool  `json:"helpful" binding:"required"`
	Comments string `json:"comments"`
	Rating   int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	fb := store.Feedback{
		Helpful:  *req.Helpful,
		Comments: req.Comments,
		Rating:   req.Rating,
	}
	if err := s.store.SetFeedback(c.Request.Context(), currentUserID(c), c.Param("id"), fb); err != nil {
		writeStoreError(c, err, "Chat session not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Feedback submitted successfully",
		"sessionId": c.Param("id"),
	})
}

func intQuery(c *gin.Context, name string, fallbackValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallbackValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallbackValue
	}
	return n
}
