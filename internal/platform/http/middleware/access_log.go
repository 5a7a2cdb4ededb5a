package middleware

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
)

// clfTime is the Common Log Format timestamp layout. Times are written in UTC.
const clfTime = "02/Jan/2006:15:04:05 -0700"

// AccessLog writes one Apache combined log format line per request to w.
func AccessLog(w io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: CombinedLogFormat,
		Output:    w,
	})
}

// CombinedLogFormat renders a request in Apache combined log format:
//
//	remote - user [time] "METHOD path PROTO" status size "referer" "user-agent"
func CombinedLogFormat(p gin.LogFormatterParams) string {
	user := "-"
	if p.Request != nil {
		if u, _, ok := p.Request.BasicAuth(); ok && u != "" {
			user = u
		}
	}

	size := "-"
	if p.BodySize >= 0 {
		size = strconv.Itoa(p.BodySize)
	}

	proto, referer, agent := "HTTP/1.1", "-", "-"
	if p.Request != nil {
		proto = p.Request.Proto
		if r := p.Request.Referer(); r != "" {
			referer = r
		}
		if ua := p.Request.UserAgent(); ua != "" {
			agent = ua
		}
	}

	return fmt.Sprintf("%s - %s [%s] \"%s %s %s\" %d %s \"%s\" \"%s\"\n",
		p.ClientIP,
		user,
		p.TimeStamp.UTC().Format(clfTime),
		p.Method,
		p.Path,
		proto,
		p.StatusCode,
		size,
		referer,
		agent,
	)
}
