package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/models"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

var errDatabaseUnavailable = errors.New("database not initialized")

// Health 健康检查，数据库不可用时返回 503
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok"}
	code := http.StatusOK

	if err := pingDatabase(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if cache.Enabled() {
		if err := cache.Ping(ctx); err != nil {
			status["redis"] = err.Error()
		} else {
			status["redis"] = "ok"
		}
	}
	c.JSON(code, status)
}

func pingDatabase(ctx context.Context) error {
	if models.DB == nil {
		return errDatabaseUnavailable
	}
	sqlDB, err := models.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
