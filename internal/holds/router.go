package holds

import (
	"boletera/internal/shared/config"
	"boletera/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupHoldRoutes configures hold lifecycle routes
func SetupHoldRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	holds := rg.Group("/holds")
	{
		holds.POST("", controller.CreateHolds)       // POST /api/v1/holds
		holds.DELETE("/:id", controller.CancelHold)  // DELETE /api/v1/holds/:id
	}

	internal := rg.Group("/internal/holds")
	internal.Use(middleware.InternalOnly(cfg))
	{
		internal.POST("/sweep", controller.SweepExpired) // POST /api/v1/internal/holds/sweep
	}
}
