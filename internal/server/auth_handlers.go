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
	"go.uber.org/zap"

	"github.com/niveshpath/backend/internal/auth"
	"github.com/niveshpath/backend/internal/profile"
	"github.com/niveshpath/backend/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	if _, err := s.store.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		writeError(c, conflict("User already exists with this email"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(c, internal(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, internal(err))
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Email, hash, "user")
	if err != nil {
		writeError(c, internal(err))
		return
	}

	// Seed the profile with the registration name; the rest arrives via
	// profile updates and onboarding.
	if err := s.store.UpsertProfile(c.Request.Context(), &profile.ProfileSnapshot{
		UserID: user.ID,
		Name:   req.Name,
	}); err != nil {
		writeError(c, internal(err))
		return
	}

	token, err := s.issuer.IssueToken(user.ID, user.Role)
	if err != nil {
		writeError(c, internal(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
			"name":  req.Name,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, unauthorized("Invalid email or password"))
			return
		}
		writeError(c, internal(err))
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(c, unauthorized("Invalid email or password"))
		return
	}

	token, err := s.issuer.IssueToken(user.ID, user.Role)
	if err != nil {
		writeError(c, internal(err))
		return
	}

	name := ""
	if p, err := s.store.GetProfile(c.Request.Context(), user.ID); err == nil && p != nil {
		name = p.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
			"name":  name,
		},
	})
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	user, err := s.store.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeStoreError(c, err, "User not found")
		return
	}

	name := ""
	if p, err := s.store.GetProfile(c.Request.Context(), user.ID); err == nil && p != nil {
		name = p.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
			"name":  name,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	if _, err := s.store.GetUserByEmail(c.Request.Context(), req.Email); err != nil {
		writeStoreError(c, err, "User not found with this email")
		return
	}

	code, err := s.otp.Issue(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, internal(err))
		return
	}

	if err := s.mailer.SendOTP(c.Request.Context(), req.Email, code); err != nil {
		s.logger.Error("Failed to send OTP mail",
			zap.Error(err),
			zap.String("email", req.Email),
		)
		writeError(c, internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email successfully"})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

func (s *Server) handleVerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	ok, err := s.otp.Verify(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, internal(err))
		return
	}
	if !ok {
		writeError(c, badRequest("Invalid or expired OTP. Please request a new one."))
		return
	}

	// The code stays valid until the reset completes.
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	ok, err := s.otp.Verify(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, internal(err))
		return
	}
	if !ok {
		writeError(c, badRequest("Invalid or expired OTP. Please request a new one."))
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		writeStoreError(c, err, "User not found")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(c, internal(err))
		return
	}
	if err := s.store.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		writeStoreError(c, err, "User not found")
		return
	}

	if err := s.otp.Consume(c.Request.Context(), req.Email); err != nil {
		s.logger.Warn("Failed to consume OTP after reset",
			zap.Error(err),
			zap.String("email", req.Email),
		)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
