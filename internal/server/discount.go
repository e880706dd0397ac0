package server

import (
	"net/http"
	"strings"

	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDiscount(c *gin.Context) {
	var req discountdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.discountSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDiscounts(c *gin.Context) {
	resp, err := s.discountSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDiscountByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	resp, err := s.discountSvc.GetByCode(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type checkDiscountRequest struct {
	Code        string `json:"code"`
	PassengerID string `json:"passenger_id"`
}

// CheckDiscount validates a code for a passenger without consuming a use.
func (s *Server) CheckDiscount(c *gin.Context) {
	var req checkDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	d, validation, err := s.discountSvc.Check(c.Request.Context(), req.Code, req.PassengerID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"discount": d,
		"valid":    validation.Valid,
		"reason":   validation.Reason,
	}})
}
