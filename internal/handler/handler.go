package handler

import (
	"context"
	"strconv"

	"hospital-admission/internal/middleware"
	"hospital-admission/internal/service"

	"github.com/gin-gonic/gin"
)

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// actorContext returns the request context tagged with the authenticated
// staff member, if any
func actorContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if userID, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := userID.(uint); ok {
			ctx = service.WithActor(ctx, id)
		}
	}
	return ctx
}
