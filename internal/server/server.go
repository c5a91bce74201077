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

// Package server exposes the HTTP API: auth, profile, chatbot, courses
// and external data routes over gin.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/niveshpath/backend/internal/auth"
	"github.com/niveshpath/backend/internal/chatbot"
	"github.com/niveshpath/backend/internal/external"
	"github.com/niveshpath/backend/internal/mailer"
	"github.com/niveshpath/backend/internal/otp"
	"github.com/niveshpath/backend/internal/store"
)

// Options configures the server.
type Options struct {
	Store     *store.Store
	Engine    *chatbot.Engine
	Issuer    *auth.Issuer
	OTP       *otp.Service
	Mailer    mailer.Sender
	External  *external.Client
	Logger    *zap.Logger
	RateLimit int
	RateWin   time.Duration
	Mode      string
}

// Server holds the handler dependencies.
type Server struct {
	store    *store.Store
	engine   *chatbot.Engine
	issuer   *auth.Issuer
	otp      *otp.Service
	mailer   mailer.Sender
	external *external.Client
	logger   *zap.Logger
	limiter  *rateLimiter
}

// New builds the server and its gin router.
func New(opts Options) (*Server, *gin.Engine) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	s := &Server{
		store:    opts.Store,
		engine:   opts.Engine,
		issuer:   opts.Issuer,
		otp:      opts.OTP,
		mailer:   opts.Mailer,
		external: opts.External,
		logger:   opts.Logger,
		limiter:  newRateLimiter(opts.RateLimit, opts.RateWin, opts.Logger),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	s.registerRoutes(router)
	return s, router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/forgot-password", s.handleForgotPassword)
		authGroup.POST("/verify-otp", s.handleVerifyOTP)
		authGroup.POST("/reset-password", s.handleResetPassword)
		authGroup.GET("/me", authMiddleware(s.issuer), s.handleCurrentUser)
	}

	profileGroup := api.Group("/profile", authMiddleware(s.issuer))
	{
		profileGroup.GET("", s.handleGetProfile)
		profileGroup.PUT("", s.handleUpdateProfile)
	}

	chatbotGroup := api.Group("/chatbot", authMiddleware(s.issuer))
	{
		chatbotGroup.POST("/query", s.limiter.middleware(), s.handleQuery)
		chatbotGroup.GET("/history", s.handleHistory)
		chatbotGroup.GET("/session/:id", s.handleGetSession)
		chatbotGroup.DELETE("/session/:id", s.handleDeleteSession)
		chatbotGroup.POST("/feedback/:id", s.handleFeedback)
	}

	coursesGroup := api.Group("/courses", authMiddleware(s.issuer))
	{
		coursesGroup.GET("", s.handleListCourses)
		coursesGroup.POST("", s.handleCreateCourse)
		coursesGroup.GET("/progress", s.handleListProgress)
		coursesGroup.GET("/:id", s.handleGetCourse)
		coursesGroup.PUT("/:id/progress", s.handleUpdateProgress)
		coursesGroup.GET("/:id/progress", s.handleGetProgress)
	}

	externalGroup := api.Group("/external")
	{
		externalGroup.GET("/rbi-news", s.handleNews)
		externalGroup.GET("/markets", s.handleMarkets)
		externalGroup.GET("/currency", s.handleCurrency)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
