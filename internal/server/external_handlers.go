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
)

func (s *Server) handleNews(c *gin.Context) {
	news, err := s.external.News(c.Request.Context())
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": news})
}

func (s *Server) handleMarkets(c *gin.Context) {
	data, err := s.external.Markets(c.Request.Context())
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (s *Server) handleCurrency(c *gin.Context) {
	data, err := s.external.Currency(c.Request.Context())
	if err != nil {
		writeError(c, internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
