package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/i18n"
	"github.com/vendapay/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
// 窗口内超过 MaxRequests 次后封禁 BlockSeconds 秒（为 0 时仅按窗口计数）
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// KEYS[1] 计数 key，KEYS[2] 封禁 key
// ARGV[1] 窗口秒数，ARGV[2] 最大次数，ARGV[3] 封禁秒数
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {-1, blocked}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[3])
if current > tonumber(ARGV[2]) and block > 0 then
	redis.call("SET", KEYS[2], "1", "EX", block)
	redis.call("DEL", KEYS[1])
	return {current, block}
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// rateLimitDecision 单次限流判定结果
type rateLimitDecision struct {
	Limited     bool
	WaitSeconds int
}

// rateLimiter 限流存储
type rateLimiter interface {
	Allow(ctx context.Context, key string) (rateLimitDecision, error)
}

type redisRateLimiter struct {
	client *redis.Client
	rule   RateLimitRule
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) (rateLimitDecision, error) {
	result, err := rateLimitScript.Run(ctx, l.client, []string{key, key + ":block"},
		l.rule.WindowSeconds, l.rule.MaxRequests, l.rule.BlockSeconds).Result()
	if err != nil {
		return rateLimitDecision{}, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return rateLimitDecision{}, fmt.Errorf("unexpected rate limit result: %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return rateLimitDecision{}, fmt.Errorf("unexpected rate limit counter: %v", values[0])
	}
	ttlSeconds, _ := toInt64(values[1])
	if count < 0 || count > int64(l.rule.MaxRequests) {
		return rateLimitDecision{Limited: true, WaitSeconds: int(ttlSeconds)}, nil
	}
	return rateLimitDecision{}, nil
}

// memoryRateLimiter 进程内限流，Redis 不可用时兜底；不支持封禁期
type memoryRateLimiter struct {
	instance *limiter.Limiter
}

func newMemoryRateLimiter(rule RateLimitRule) *memoryRateLimiter {
	rate := limiter.Rate{
		Period: time.Duration(rule.WindowSeconds) * time.Second,
		Limit:  int64(rule.MaxRequests),
	}
	return &memoryRateLimiter{instance: limiter.New(memory.NewStore(), rate)}
}

func (l *memoryRateLimiter) Allow(ctx context.Context, key string) (rateLimitDecision, error) {
	lctx, err := l.instance.Get(ctx, key)
	if err != nil {
		return rateLimitDecision{}, err
	}
	if !lctx.Reached {
		return rateLimitDecision{}, nil
	}
	return rateLimitDecision{
		Limited:     true,
		WaitSeconds: int(time.Until(time.Unix(lctx.Reset, 0)).Seconds()),
	}, nil
}

// RateLimitMiddleware 频率限制中间件
// 优先使用 Redis 计数，client 为空或 Redis 报错时退回进程内计数。
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if !rule.enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	fallback := newMemoryRateLimiter(rule)
	var primary rateLimiter = fallback
	if client != nil {
		primary = &redisRateLimiter{client: client, rule: rule}
	}

	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		decision, err := primary.Allow(c.Request.Context(), key)
		if err != nil && client != nil {
			logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
			decision, err = fallback.Allow(c.Request.Context(), key)
		}
		if err != nil {
			logger.Errorw("rate_limit_failed", "key", key, "error", err)
			c.Next()
			return
		}

		if decision.Limited {
			waitSeconds := decision.WaitSeconds
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.too_many_requests"
			}
			msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
			response.Error(c, response.CodeTooManyRequests, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
