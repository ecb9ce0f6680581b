package payments

import (
	"net/http"

	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

type CreatePaymentRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

// CreatePayment handles POST /api/v1/payments
func (c *Controller) CreatePayment(ctx *gin.Context) {
	var req CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid order id"))
		return
	}

	payment, redirectURL, err := c.service.CreateAndInitiate(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Payment initiated successfully", gin.H{
		"payment":      payment,
		"redirect_url": redirectURL,
	})
}

// Return handles GET and POST /api/v1/payments/return, the browser coming
// back from the provider with token_ws.
func (c *Controller) Return(ctx *gin.Context) {
	token := ctx.Query("token_ws")
	if token == "" {
		token = ctx.PostForm("token_ws")
	}
	if token == "" {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "token_ws is required"))
		return
	}
	c.confirm(ctx, token)
}

type WebhookRequest struct {
	Token string `json:"token" binding:"required"`
}

// Webhook handles POST /api/v1/payments/webhook
func (c *Controller) Webhook(ctx *gin.Context) {
	var req WebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))
		return
	}
	c.confirm(ctx, req.Token)
}

func (c *Controller) confirm(ctx *gin.Context, token string) {
	result, err := c.service.Confirm(ctx.Request.Context(), token)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	message := "Payment confirmed successfully"
	if !result.Settled {
		message = "Payment was not approved"
	}
	response.Success(ctx, http.StatusOK, message, gin.H{
		"payment": result.Payment,
		"tickets": result.Tickets,
		"settled": result.Settled,
	})
}

type RefundRequest struct {
	Amount *int64 `json:"amount" validate:"omitempty,min=1"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// Refund handles POST /api/v1/internal/payments/:id/refund
func (c *Controller) Refund(ctx *gin.Context) {
	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid payment id"))
		return
	}
	var req RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.Error(ctx, apperrors.Wrap(apperrors.KindValidation, "invalid refund request", err))
		return
	}

	payment, err := c.service.Refund(ctx.Request.Context(), paymentID, req.Amount, req.Reason)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Refund processed successfully", payment)
}

// GetPayment handles GET /api/v1/payments/:id
func (c *Controller) GetPayment(ctx *gin.Context) {
	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid payment id"))
		return
	}

	payment, transactions, err := c.service.GetPayment(ctx.Request.Context(), paymentID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Payment retrieved successfully", gin.H{
		"payment":      payment,
		"transactions": transactions,
	})
}
