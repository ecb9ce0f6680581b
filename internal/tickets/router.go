package tickets

import (
	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes configures ticket retrieval routes
func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller) {
	orders := rg.Group("/orders")
	{
		orders.GET("/:id/tickets", controller.GetOrderTickets) // GET /api/v1/orders/:id/tickets
	}
}
