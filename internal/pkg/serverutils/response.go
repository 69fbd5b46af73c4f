package serverutils

import "github.com/gofiber/fiber/v2"

// Response is the envelope for every non-dialog endpoint
type Response struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Status:  StatusSuccess,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response {
	return Response{
		Status:  StatusError,
		Code:    code,
		Message: message,
	}
}
