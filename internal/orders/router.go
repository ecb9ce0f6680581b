package orders

import (
	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes configures checkout routes
func SetupOrderRoutes(rg *gin.RouterGroup, controller *Controller) {
	group := rg.Group("/orders")
	{
		group.POST("", controller.CreateOrder)            // POST /api/v1/orders
		group.GET("/:id", controller.GetOrder)            // GET /api/v1/orders/:id
		group.POST("/:id/cancel", controller.CancelOrder) // POST /api/v1/orders/:id/cancel
	}
}
