package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes mounts the authentication endpoints.
type Routes struct {
	h           *AuthHandler
	middlewares []gin.HandlerFunc
}

// NewRoutes binds h to the group. middlewares run before every auth route.
func NewRoutes(h *AuthHandler, middlewares ...gin.HandlerFunc) *Routes {
	return &Routes{h: h, middlewares: middlewares}
}

// Register adds the auth routes to rg.
func (r *Routes) Register(rg *gin.RouterGroup) {
	if len(r.middlewares) > 0 {
		rg.Use(r.middlewares...)
	}
	rg.POST("/sign-up", r.h.SignUp)
	rg.POST("/sign-in", r.h.SignIn)
	rg.POST("/sign-out", r.h.SignOut)
}

// NotFound answers requests under the group that match no route.
func (r *Routes) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Auth route not found"})
}
