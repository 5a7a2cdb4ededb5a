package middleware

import (
	"net/url"

	"github.com/gin-gonic/gin"
)

// ContextCookies is the gin context key holding the parsed cookie map.
const ContextCookies = "cookies"

// Cookies parses the request cookies into a map[string]string stored under
// ContextCookies. Values are percent-decoded, falling back to the raw value
// when the encoding is malformed. Cookies are not signed; when a name
// repeats, the first occurrence wins.
func Cookies() gin.HandlerFunc {
	return func(c *gin.Context) {
		parsed := make(map[string]string)
		for _, ck := range c.Request.Cookies() {
			if _, seen := parsed[ck.Name]; !seen {
				parsed[ck.Name] = decodeCookie(ck.Value)
			}
		}
		c.Set(ContextCookies, parsed)
		c.Next()
	}
}

// Cookie returns a cookie parsed by Cookies, falling back to the raw request
// when the middleware did not run.
func Cookie(c *gin.Context, name string) (string, bool) {
	if v, ok := c.Get(ContextCookies); ok {
		if m, ok := v.(map[string]string); ok {
			val, found := m[name]
			return val, found
		}
	}
	val, err := c.Cookie(name)
	if err != nil {
		return "", false
	}
	return val, true
}

// decodeCookie percent-decodes v. '+' is kept as is.
func decodeCookie(v string) string {
	if d, err := url.PathUnescape(v); err == nil {
		return d
	}
	return v
}
