package orders

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

type CreateOrderRequest struct {
	HoldIDs    []string `json:"hold_ids" binding:"required,min=1,dive,uuid"`
	UserID     string   `json:"user_id" binding:"omitempty,uuid"`
	GuestEmail string   `json:"guest_email" binding:"omitempty,email"`
	Discount   int64    `json:"discount" binding:"omitempty,min=0"`
}

// CreateOrder handles POST /api/v1/orders
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))
		return
	}

	input := CreateOrderInput{
		GuestEmail: req.GuestEmail,
		Discount:   req.Discount,
	}
	for _, raw := range req.HoldIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid hold id"))
			return
		}
		input.HoldIDs = append(input.HoldIDs, id)
	}
	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid user id"))
			return
		}
		input.UserID = &userID
	}

	order, err := c.service.CreateOrder(ctx.Request.Context(), input)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Order created successfully", order)
}

// GetOrder handles GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid order id"))
		return
	}

	order, err := c.service.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Order retrieved successfully", order)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func (c *Controller) CancelOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid order id"))
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), orderID); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Order cancelled successfully", nil)
}
