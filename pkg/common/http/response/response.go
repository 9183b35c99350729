package response

import (
	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/common/apperr"
	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// SuccessResponse writes data under a success code.
func SuccessResponse(c *gin.Context, code int, data any) {
	c.JSON(Status(code), Response{
		Code:    code,
		Message: Message(code),
		Data:    data,
	})
}

// ErrorResponse aborts the request with an error envelope.
// An *apperr.AppError passed as data overrides code, status and message.
func ErrorResponse(c *gin.Context, code int, data any) {
	status := Status(code)
	msg := Message(code)

	switch v := data.(type) {
	case *apperr.AppError:
		code, status, msg, data = v.Code, v.HTTPStatus, v.Message, nil
	case error:
		data = ToErrorResponse(v)
	}

	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: msg,
		Data:    data,
	})
}

// ToErrorResponse converts an error into a client-facing payload:
// field errors for validation failures, the message otherwise.
func ToErrorResponse(err any) any {
	switch v := err.(type) {
	case nil:
		return nil
	case []validation.FieldError:
		return v
	case error:
		if fields := validation.FieldErrors(v); fields != nil {
			return fields
		}
		return v.Error()
	default:
		return v
	}
}
