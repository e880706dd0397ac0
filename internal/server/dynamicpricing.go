package server

import (
	"net/http"
	"strings"

	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDynamicRule(c *gin.Context) {
	var req dynamicdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dynamicSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDynamicRules(c *gin.Context) {
	resp, err := s.dynamicSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDynamicRuleByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.dynamicSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateDynamicRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.dynamicSvc.Deactivate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "active": false}})
}
