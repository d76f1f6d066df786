package response

// Response 非流式接口的统一响应体
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RateLimitResponse 限流拒绝时返回，reset 为窗口重置的毫秒时间戳
type RateLimitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Reset   int64  `json:"reset"`
}
