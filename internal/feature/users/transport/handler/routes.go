package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes mounts the users endpoints behind an authentication middleware.
type Routes struct {
	h    *UsersHandler
	auth gin.HandlerFunc
}

// NewRoutes binds h to the group; auth guards every route.
func NewRoutes(h *UsersHandler, auth gin.HandlerFunc) *Routes {
	return &Routes{h: h, auth: auth}
}

// Register adds the users routes to rg.
func (r *Routes) Register(rg *gin.RouterGroup) {
	if r.auth != nil {
		rg.Use(r.auth)
	}
	for _, p := range []string{"", "/"} {
		rg.GET(p, r.h.List)
		rg.HEAD(p, r.h.List)
	}
	rg.GET("/:id", r.h.Get)
	rg.HEAD("/:id", r.h.Get)
	rg.PUT("/:id", r.h.Update)
	rg.DELETE("/:id", r.h.Delete)
}

// NotFound answers requests under the group that match no route.
func (r *Routes) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Users route not found"})
}
