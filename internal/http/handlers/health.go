package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	control *gorm.DB
}

// NewHealthHandler pings control when it is set.
func NewHealthHandler(control *gorm.DB) *HealthHandler { return &HealthHandler{control: control} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.control != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := h.control.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.String(http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
