package request

// 对外 JSON 字段沿用嵌入端既有的驼峰命名

type ChatRequest struct {
	AgentID      string `json:"agentId" binding:"required"`
	SessionID    string `json:"sessionId"`
	Message      string `json:"message" binding:"required"`
	VisitorID    string `json:"visitorId"`
	VisitorEmail string `json:"visitorEmail"`
}

// ToolResultRequest 客户端委托工具的执行结果回报
type ToolResultRequest struct {
	Token   string `json:"token" binding:"required"`
	Success bool   `json:"success"`
	Output  any    `json:"output"`
	Error   string `json:"error"`
}
