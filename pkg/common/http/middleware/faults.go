package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/common/apperr"
	"github.com/huynhanx03/go-crud/pkg/common/http/response"
	"github.com/huynhanx03/go-crud/pkg/constraints"
)

// MaskedFaultMessage replaces fault detail in release mode.
const MaskedFaultMessage = "Oops! Sorry! Something went wrong."

// Faults recovers panics and answers the errors handlers leave on the context.
//
// Client errors (*apperr.AppError below 500) keep their message. Everything else is a
// 500 whose detail is only shown when debug is set.
func Faults(logger *zap.Logger, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				logger.Error("panic recovered",
					zap.Error(err),
					zap.String("requestId", c.GetString(constraints.ContextKeyRequestID)),
					zap.String("uri", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				writeFault(c, err, debug)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		c.Set(constraints.ContextKeyFault, err)

		if c.Writer.Written() {
			// Status already chosen by the handler (bad route ids, malformed bodies).
			logger.Info("request rejected",
				zap.Error(err),
				zap.Int("status", c.Writer.Status()),
				zap.String("requestId", c.GetString(constraints.ContextKeyRequestID)),
				zap.String("uri", c.Request.URL.Path),
			)
			return
		}

		logger.Error("request fault",
			zap.Error(err),
			zap.String("requestId", c.GetString(constraints.ContextKeyRequestID)),
			zap.String("httpMethod", c.Request.Method),
			zap.String("uri", c.Request.URL.Path),
		)
		writeFault(c, err, debug)
	}
}

func writeFault(c *gin.Context, err error, debug bool) {
	if c.Writer.Written() {
		c.Abort()
		return
	}

	code, status, msg := response.CodeInternalServer, http.StatusInternalServerError, MaskedFaultMessage
	if appErr, ok := apperr.As(err); ok && appErr.HTTPStatus < http.StatusInternalServerError {
		code, status, msg = appErr.Code, appErr.HTTPStatus, appErr.Message
	} else if debug {
		msg = err.Error()
	}

	switch c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML, gin.MIMEPlain) {
	case gin.MIMEJSON:
		c.AbortWithStatusJSON(status, response.Response{Code: code, Message: msg})
	default:
		c.Abort()
		c.String(status, msg)
	}
}
