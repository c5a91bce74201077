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

	"github.com/gin-gonic/gin"

	"github.com/niveshpath/backend/internal/store"
)

func (s *Server) handleListCourses(c *gin.Context) {
	courses, err := s.store.ListCourses(c.Request.Context())
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type createCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Level       string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Duration    string `json:"duration"`
}

func (s *Server) handleCreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	course, err := s.store.CreateCourse(c.Request.Context(), store.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Duration:    req.Duration,
	})
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (s *Server) handleGetCourse(c *gin.Context) {
	course, err := s.store.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Course not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

type updateProgressRequest struct {
	ProgressPercentage int      `json:"progressPercentage" binding:"gte=0,lte=100"`
	CurrentModule      string   `json:"currentModule"`
	CompletedModules   []string `json:"completedModules"`
}

func (s *Server) handleUpdateProgress(c *gin.Context) {
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	// The course must exist before progress can be recorded against it.
	if _, err := s.store.GetCourse(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err, "Course not found")
		return
	}

	progress, err := s.store.UpsertProgress(c.Request.Context(), store.Progress{
		UserID:             currentUserID(c),
		CourseID:           c.Param("id"),
		ProgressPercentage: req.ProgressPercentage,
		CurrentModule:      req.CurrentModule,
		CompletedModules:   req.CompletedModules,
	})
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (s *Server) handleGetProgress(c *gin.Context) {
	progress, err := s.store.GetProgress(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "No progress recorded for this course")
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (s *Server) handleListProgress(c *gin.Context) {
	progress, err := s.store.ListProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
