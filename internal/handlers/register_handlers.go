package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/finflow/accounting/internal/core/ports/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	registerHomeRoutes(r)

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer) {
	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, services.Account, services.Journal)
	registerJournalRoutes(v1, services.Journal)
	registerInvoiceRoutes(v1, services.Invoice)
	registerReportingRoutes(v1, services.Reporting)
}

// requestUserID identifies the acting user for audit fields. Authentication lives at
// the gateway; it forwards the authenticated subject in this header.
func requestUserID(c *gin.Context) string {
	if userID := c.GetHeader("X-User-ID"); userID != "" {
		return userID
	}
	return "system"
}
