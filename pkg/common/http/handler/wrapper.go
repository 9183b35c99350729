package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/common/http/request"
	"github.com/huynhanx03/go-crud/pkg/common/http/response"
)

// Endpoint is a typed JSON endpoint that receives the decoded and validated body.
type Endpoint[Req any, Res any] func(context.Context, *Req) (Res, error)

// Wrap adapts e to gin. An *apperr.AppError from e keeps its own status; any
// other failure answers 500.
func Wrap[Req any, Res any](e Endpoint[Req, Res]) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := request.ParseRequest[Req](c)
		if !ok {
			return
		}
		reply(c, func(ctx context.Context) (Res, error) { return e(ctx, req) })
	}
}

// Read adapts a bodiless endpoint, such as a listing, to gin.
func Read[Res any](f func(context.Context) (Res, error)) gin.HandlerFunc {
	return func(c *gin.Context) { reply(c, f) }
}

func reply[Res any](c *gin.Context, f func(context.Context) (Res, error)) {
	res, err := f(c.Request.Context())
	if err != nil {
		response.ErrorResponse(c, response.CodeInternalServer, err)
		return
	}
	response.SuccessResponse(c, response.CodeSuccess, res)
}
