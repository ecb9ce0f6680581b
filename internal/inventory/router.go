package inventory

import (
	"github.com/gin-gonic/gin"
)

// SetupInventoryRoutes configures tier read routes
func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller) {
	tiers := rg.Group("/tiers")
	{
		tiers.GET("/:id", controller.GetTier)                       // GET /api/v1/tiers/:id
		tiers.GET("/:id/availability", controller.GetAvailability)  // GET /api/v1/tiers/:id/availability
	}
}
