package holds

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

type AttendeeRequest struct {
	Name        string `json:"name" binding:"max=255"`
	Email       string `json:"email" binding:"omitempty,email"`
	FormAnswers string `json:"form_answers"`
	CustomPrice *int64 `json:"custom_price" binding:"omitempty,min=0"`
}

type CartItemRequest struct {
	TierID    string            `json:"tier_id" binding:"required,uuid"`
	Quantity  int               `json:"quantity" binding:"required,min=1"`
	Attendees []AttendeeRequest `json:"attendees" binding:"omitempty,dive"`
}

type CreateHoldsRequest struct {
	Items []CartItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateHolds handles POST /api/v1/holds
func (c *Controller) CreateHolds(ctx *gin.Context) {
	var req CreateHoldsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))
		return
	}

	items := make([]CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		tierID, err := uuid.Parse(item.TierID)
		if err != nil {
			response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid tier id"))
			return
		}
		attendees := make([]Attendee, 0, len(item.Attendees))
		for _, a := range item.Attendees {
			attendees = append(attendees, Attendee{
				Name:        a.Name,
				Email:       a.Email,
				FormAnswers: a.FormAnswers,
				CustomPrice: a.CustomPrice,
			})
		}
		items = append(items, CartItem{
			TierID:    tierID,
			Quantity:  item.Quantity,
			Attendees: attendees,
		})
	}

	created, err := c.service.CreateHolds(ctx.Request.Context(), items)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Holds created successfully", gin.H{
		"holds":      created,
		"expires_at": created[0].ExpiresAt,
	})
}

// CancelHold handles DELETE /api/v1/holds/:id
func (c *Controller) CancelHold(ctx *gin.Context) {
	holdID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, apperrors.New(apperrors.KindValidation, "invalid hold id"))
		return
	}

	if err := c.service.ReleaseHold(ctx.Request.Context(), holdID); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Hold released successfully", nil)
}

// SweepExpired handles POST /api/v1/internal/holds/sweep
func (c *Controller) SweepExpired(ctx *gin.Context) {
	released, err := c.service.SweepExpired(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Sweep completed", gin.H{
		"released": released,
	})
}
