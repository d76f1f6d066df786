package provider

import "encoding/json"

// OpenAI 兼容系后端（OpenAI / Groq / OpenRouter）共用的线格式

// StreamDoneMarker 兼容系后端的流终止标记
const StreamDoneMarker = "[DONE]"

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []chatMessage     `json:"messages"`
	Tools       []chatToolWrapper `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
	StreamOpts  *streamOptions    `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type chatToolWrapper struct {
	Type     string         `json:"type"`
	Function ToolDefinition `json:"function"`
}

type chatCompletionChunk struct {
	Choices []chunkChoice `json:"choices"`
	Usage   *chunkUsage   `json:"usage"`
	Error   *apiError     `json:"error"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason"`
}

type chunkDelta struct {
	Content   string          `json:"content"`
	ToolCalls []toolCallDelta `json:"tool_calls"`
}

type toolCallDelta struct {
	Index    int               `json:"index"`
	ID       string            `json:"id"`
	Function toolFunctionDelta `json:"function"`
}

type toolFunctionDelta struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chunkUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type apiErrorBody struct {
	Error *apiError `json:"error"`
}

func buildChatRequest(cfg Config, messages []Message, tools []ToolDefinition) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       cfg.Model,
		Temperature: cfg.temperature(),
		MaxTokens:   cfg.maxTokens(),
		Stream:      true,
	}

	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
		})
	}

	for _, t := range tools {
		req.Tools = append(req.Tools, chatToolWrapper{Type: "function", Function: t})
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	return req
}

func decodeAPIError(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return "unknown error"
}
