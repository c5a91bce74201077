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

	"github.com/niveshpath/backend/internal/profile"
)

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.store.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":       p,
		"profileStatus": profile.Evaluate(p),
	})
}

type updateProfileRequest struct {
	Name         string   `json:"name"`
	Age          int      `json:"age" binding:"omitempty,gte=0,lte=120"`
	Income       int64    `json:"income" binding:"omitempty,gte=0"`
	RiskAppetite string   `json:"riskAppetite" binding:"omitempty,oneof=low medium high"`
	Goals        []string `json:"goals"`
	Demographic  *struct {
		Location   string `json:"location"`
		Occupation string `json:"occupation"`
	} `json:"demographic"`
	Psychological *struct {
		RiskTolerance       string `json:"riskTolerance"`
		FinancialAnxiety    string `json:"financialAnxiety" binding:"omitempty,oneof=low medium high"`
		DecisionMakingStyle string `json:"decisionMakingStyle" binding:"omitempty,oneof=analytical intuitive consultative spontaneous"`
	} `json:"psychological"`
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	p := &profile.ProfileSnapshot{
		UserID:       currentUserID(c),
		Name:         req.Name,
		Age:          req.Age,
		Income:       req.Income,
		RiskAppetite: req.RiskAppetite,
		Goals:        req.Goals,
	}
	if req.Demographic != nil || req.Psychological != nil {
		p.Onboarding = &profile.Onboarding{}
		if req.Demographic != nil {
			p.Onboarding.Demographic = &profile.Demographic{
				Location:   req.Demographic.Location,
				Occupation: req.Demographic.Occupation,
			}
		}
		if req.Psychological != nil {
			p.Onboarding.Psychological = &profile.Psychological{
				RiskTolerance:       req.Psychological.RiskTolerance,
				FinancialAnxiety:    req.Psychological.FinancialAnxiety,
				DecisionMakingStyle: req.Psychological.DecisionMakingStyle,
			}
		}
	}

	if err := s.store.UpsertProfile(c.Request.Context(), p); err != nil {
		writeError(c, internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":       p,
		"profileStatus": profile.Evaluate(p),
	})
}
