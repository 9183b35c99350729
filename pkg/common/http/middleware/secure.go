package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/constraints"
)

// RequireSecureConnection redirects plain HTTP to HTTPS unless the request is local.
// Safe methods get a 301; anything else is refused with 403, since a redirect would drop the body.
func RequireSecureConnection() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSecure(c.Request) || IsLocal(c.Request) {
			c.Next()
			return
		}

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		target := "https://" + c.Request.Host + c.Request.URL.RequestURI()
		c.Redirect(http.StatusMovedPermanently, target)
		c.Abort()
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get(constraints.HeaderForwardedProto), "https")
}

// IsLocal reports whether the request came from a loopback address.
func IsLocal(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
