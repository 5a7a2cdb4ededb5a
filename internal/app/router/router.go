// Package router builds the HTTP engine: the fixed middleware pipeline, the
// service routes, the mounted feature groups and the fallback 404.
package router

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"acquisitions/internal/platform/http/middleware"
	"acquisitions/internal/platform/logger"
)

const (
	// AuthPrefix はauthグループのマウント先です。
	AuthPrefix = "/api/auth"
	// UsersPrefix はusersグループのマウント先です。
	UsersPrefix = "/api/users"
)

// Mount is a route group that can be attached under a path prefix.
// NotFound answers any request under the prefix that none of its routes match.
type Mount interface {
	Register(rg *gin.RouterGroup)
	NotFound(c *gin.Context)
}

// System serves the service-level routes.
type System interface {
	Root(c *gin.Context)
	Health(c *gin.Context)
	API(c *gin.Context)
}

// Deps are the collaborators the router wires together.
type Deps struct {
	Logger    *logger.Logger
	AccessLog io.Writer
	System    System
	Auth      Mount
	Users     Mount

	// TrustedProxies may set X-Forwarded-For. Nil trusts no proxy, so the
	// client IP used by the access log and rate limits is the peer address.
	TrustedProxies []string
}

type mounted struct {
	prefix string
	group  Mount
}

// NewRouter returns the configured engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.AccessLog == nil {
		d.AccessLog = d.Logger.Writer(zerolog.InfoLevel)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = false
	// "/health/" は301ではなく同じハンドラーで応答する
	r.RedirectTrailingSlash = false
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Logger.Error().Err(err).Strs("trusted_proxies", d.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	// パニック時は500を返す
	r.Use(gin.RecoveryWithWriter(d.Logger.Writer(zerolog.ErrorLevel)))

	// ミドルウェアの適用順は固定
	r.Use(
		middleware.SecurityHeaders(),
		middleware.JSONBody(),
		middleware.URLEncodedBody(),
		middleware.AccessLog(d.AccessLog),
		middleware.CORS(),
		middleware.Cookies(),
	)

	// 認証不要
	for _, rt := range []struct {
		path string
		h    gin.HandlerFunc
	}{
		{"/", d.System.Root},
		{"/health", d.System.Health},
		{"/api", d.System.API},
	} {
		paths := []string{rt.path}
		if rt.path != "/" {
			paths = append(paths, rt.path+"/")
		}
		for _, p := range paths {
			r.GET(p, rt.h)
			r.HEAD(p, rt.h)
		}
	}

	var mounts []mounted
	for _, m := range []mounted{{AuthPrefix, d.Auth}, {UsersPrefix, d.Users}} {
		if m.group == nil {
			continue
		}
		m.group.Register(r.Group(m.prefix))
		mounts = append(mounts, m)
	}

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, m := range mounts {
			if path == m.prefix || strings.HasPrefix(path, m.prefix+"/") {
				m.group.NotFound(c)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return r
}
