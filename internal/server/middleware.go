package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/gin-gonic/gin"
)

const HeaderTenant = "X-Tenant-ID"

// TenantContext resolves the active tenant from the request header and
// injects it into the request context. Requests without a header fall back
// to the configured default tenant; services reject a zero tenant.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := s.cfg.DefaultTenantID
		if raw := strings.TrimSpace(c.GetHeader(HeaderTenant)); raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("tenant", "invalid_tenant", "invalid tenant header"))
				return
			}
			tenantID = int64(parsed)
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
