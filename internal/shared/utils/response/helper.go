package response

import (
	"net/http"

	"boletera/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

// StandardApiResponse is the envelope every endpoint writes.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// Success writes a success envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error maps an application error kind to a stable HTTP status and reason
// code. Provider and internal error text is never surfaced here.
func Error(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	message := string(kind)
	switch kind {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindConflict, apperrors.KindInsufficientCapacity:
		message = err.Error()
	}
	RespondJSON(c, "error", httpStatusFor(kind), message, nil, gin.H{"reason": string(kind)})
}

func httpStatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInsufficientCapacity:
		return http.StatusConflict
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindProviderRejected:
		return http.StatusBadGateway
	case apperrors.KindProviderTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
