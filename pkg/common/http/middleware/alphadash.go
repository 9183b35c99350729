package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/utils"
)

// AlphaDashParam answers 404 when any named route parameter holds characters
// other than A-Z, a-z, 0-9 and dashes. Absent parameters pass.
func AlphaDashParam(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			if v := c.Param(name); v != "" && !utils.IsAlphaDash(v) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
		}
		c.Next()
	}
}
