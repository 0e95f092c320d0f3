package shared

import (
	"strconv"
	"strings"

	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/models"

	"github.com/gin-gonic/gin"
)

// ParamUint 读取路径中的正整数 ID，非法时已写入响应。
func ParamUint(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}

// QueryUint 读取可选的正整数查询参数，缺省或非法时返回 0
func QueryUint(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}

// QueryInt 读取可选的整数查询参数，缺省或非法时返回 0
func QueryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return value
}

// QueryBool 读取可选的布尔查询参数，缺省或非法时返回 nil
func QueryBool(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

// QueryDate 读取可选的 YYYY-MM-DD 查询参数，格式非法时 ok 为 false
func QueryDate(c *gin.Context, name string) (*models.Date, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return nil, false
	}
	return &date, true
}
