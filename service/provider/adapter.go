// Package provider 将各家 LLM 后端的流式接口归一化为统一的事件流契约。
// 每个后端一个 Adapter 变体，按存储的枚举经工厂选择
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// StreamChunk 事件类型
const (
	ChunkContent = "content"

	// ChunkToolCall 一次完整组装好的工具调用请求
	ChunkToolCall = "tool_call"

	// ChunkToolCallEnd 部分后端在新调用开始时需要的内部边界事件
	ChunkToolCallEnd = "tool_call_end"

	// ChunkEnd 终止事件，可携带用量计数
	ChunkEnd = "end"
)

var (
	ErrStreamClosed       = errors.New("stream is closed")
	ErrUnsupportedVariant = errors.New("unsupported provider type")
)

// Message 线性对话历史中的一条。assistant 可携带工具调用请求，
// tool 通过 ToolCallID 关联其回应的调用
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall 归一化后的调用请求，跨后端统一为 {id, name, argumentsJSON}
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition 工具声明，参数为 JSON-Schema 形式
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

type ToolParameters struct {
	Type       string                     `json:"type"`
	Properties map[string]json.RawMessage `json:"properties"`
	Required   []string                   `json:"required"`
}

type StreamChunk struct {
	Type     string    `json:"type"`
	Content  string    `json:"content,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	Usage    *Usage    `json:"usage,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int

	// BaseURL 覆盖默认接入点，留空用各后端默认值
	BaseURL string

	// HTTPClient 留空用 http.DefaultClient，超时由调用方 context 控制
	HTTPClient *http.Client
}

// Stream 惰性、有限、不可重放的事件序列。
// 终止事件之后 Recv 返回 io.EOF；后端报错时 Recv 返回该错误，
// 已发出的内容不回收
type Stream interface {
	Recv() (StreamChunk, error)
	Close() error
}

type Adapter interface {
	// StreamChat 发起一轮生成。非 2xx 响应在此处即返回错误
	StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (Stream, error)

	SupportsToolCalling() bool
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Config) temperature() float64 {
	if c.Temperature <= 0 {
		return 0.7
	}
	return c.Temperature
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 2048
	}
	return c.MaxTokens
}
