package tickets

import (
	"net/http"

	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetOrderTickets handles GET /api/v1/orders/:id/tickets
func (c *Controller) GetOrderTickets(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid order id"))
		return
	}

	list, err := c.service.GetByOrder(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tickets retrieved successfully", gin.H{
		"tickets": list,
		"count":   len(list),
	})
}
