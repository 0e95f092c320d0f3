package i18n

import (
	"fmt"
	"strings"

	"github.com/vendapay/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = constants.LocalePtBR

// ResolveLocale 解析请求语言：X-Locale > lang 查询参数 > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := NormalizeLocale(c.GetHeader("X-Locale")); locale != "" {
		return locale
	}
	if locale := NormalizeLocale(c.Query("lang")); locale != "" {
		return locale
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := NormalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 归一化语言标签，不支持时返回空字符串
func NormalizeLocale(raw string) string {
	tag := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	if tag == "" {
		return ""
	}
	for _, locale := range constants.SupportedLocales {
		if strings.ToLower(locale) == tag {
			return locale
		}
	}
	switch strings.SplitN(tag, "-", 2)[0] {
	case "pt":
		return constants.LocalePtBR
	case "en":
		return constants.LocaleEnUS
	}
	return ""
}

// T 翻译消息键，缺失时按支持顺序回退，最终返回键本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	for _, fallback := range constants.SupportedLocales {
		if msg, ok := lookup(fallback, key); ok {
			return msg
		}
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}
