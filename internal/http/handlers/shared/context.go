package shared

import (
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyAccountID = "account_id"
	ContextKeyUsername  = "username"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// ActorFromContext 由鉴权上下文构建当前操作人，失败时已写入响应。
func ActorFromContext(c *gin.Context) (service.Actor, bool) {
	accountID, ok := GetContextUintWithKeys(c, ContextKeyAccountID, "error.unauthorized", "error.internal")
	if !ok {
		return service.Actor{}, false
	}
	if accountID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Actor{}, false
	}
	return service.Actor{
		ID:        accountID,
		Username:  c.GetString(ContextKeyUsername),
		Role:      c.GetString(ContextKeyRole),
		RequestID: c.GetString(ContextKeyRequestID),
	}, true
}
