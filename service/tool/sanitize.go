package tool

import (
	"regexp"
	"strings"
)

// 工具输出在喂回模型前做输出净化：
// 字符串叶子去掉 script 标签、javascript: 伪协议和内联事件属性，
// 对象丢弃 __ 或 $ 开头的键，防止原型/元字段注入进 prompt
var (
	scriptTagPattern     = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	javascriptURIPattern = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern  = regexp.MustCompile(`(?i)on\w+\s*=`)
)

func SanitizeOutput(output any) any {
	switch v := output.(type) {
	case string:
		s := scriptTagPattern.ReplaceAllString(v, "")
		s = javascriptURIPattern.ReplaceAllString(s, "")
		s = eventHandlerPattern.ReplaceAllString(s, "")
		return s
	case []any:
		sanitized := make([]any, 0, len(v))
		for _, item := range v {
			sanitized = append(sanitized, SanitizeOutput(item))
		}
		return sanitized
	case map[string]any:
		sanitized := make(map[string]any, len(v))
		for key, value := range v {
			if strings.HasPrefix(key, "__") || strings.HasPrefix(key, "$") {
				continue
			}
			sanitized[key] = SanitizeOutput(value)
		}
		return sanitized
	default:
		return output
	}
}

// WrapForModel 数组输出包装为 {count, items}。
// count 是模型被指示唯一可以按字面引用的数字
func WrapForModel(output any) any {
	if items, ok := output.([]any); ok {
		return map[string]any{
			"count": len(items),
			"items": items,
		}
	}
	return output
}
