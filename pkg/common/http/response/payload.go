package response

import (
	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
)

// Kind classifies a resource payload; the HTTP status is chosen here, not by producers.
type Kind int

const (
	KindEntity Kind = iota
	KindCollection
	KindCreated
	KindEmpty
	KindAbsent
	KindInvalid
)

// Payload is a resource outcome waiting to be put on the wire.
type Payload struct {
	Kind   Kind
	Body   any
	Errors []validation.FieldError
}

// WritePayload translates a Payload into a status code and envelope.
func WritePayload(c *gin.Context, p Payload) {
	switch p.Kind {
	case KindEntity, KindCollection, KindEmpty:
		SuccessResponse(c, CodeSuccess, p.Body)
	case KindCreated:
		SuccessResponse(c, CodeCreated, p.Body)
	case KindInvalid:
		ErrorResponse(c, CodeValidationFailed, p.Errors)
	default:
		ErrorResponse(c, CodeNotFound, nil)
	}
}
