package inventory

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

// GetTier handles GET /api/v1/tiers/:id
func (c *Controller) GetTier(ctx *gin.Context) {
	tierID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid tier id"))
		return
	}

	tier, err := c.service.GetTier(ctx.Request.Context(), tierID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tier retrieved successfully", tier)
}

// GetAvailability handles GET /api/v1/tiers/:id/availability
func (c *Controller) GetAvailability(ctx *gin.Context) {
	tierID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid tier id"))
		return
	}

	availability, err := c.service.GetAvailability(ctx.Request.Context(), tierID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Availability retrieved successfully", availability)
}
