package api

import (
	handlershared "github.com/vendapay/internal/http/handlers/shared"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func currentActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.ActorFromContext(c)
}

func paramID(c *gin.Context) (uint, bool) {
	return handlershared.ParamUint(c, "id")
}
