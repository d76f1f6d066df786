package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiAdapter 对接 Gemini streamGenerateContent 接口。
// Gemini 的 functionResponse 必须回填所回应调用的函数名（而非 id），
// 组装历史时从紧邻的前一个 functionCall 轮次找回名字；
// 这个按位置回查的修正只存在于本适配器内，共享历史模型仍按 id 关联
type GeminiAdapter struct {
	cfg Config
}

func NewGeminiAdapter(cfg Config) *GeminiAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiBaseURL
	}
	return &GeminiAdapter{cfg: cfg}
}

func (a *GeminiAdapter) SupportsToolCalling() bool {
	return true
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiSystemInstruction `json:"system_instruction,omitempty"`
	Contents          []geminiContent          `json:"contents"`
	Tools             []geminiToolGroup        `json:"tools,omitempty"`
	GenerationConfig  geminiGenerationConfig   `json:"generationConfig"`
}

type geminiSystemInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiToolGroup struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"function_declarations"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiChunk struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *GeminiAdapter) StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (Stream, error) {
	reqBody := geminiRequest{
		Contents: buildGeminiContents(messages),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     a.cfg.temperature(),
			MaxOutputTokens: a.cfg.maxTokens(),
		},
	}

	for _, m := range messages {
		if m.Role == RoleSystem {
			reqBody.SystemInstruction = &geminiSystemInstruction{
				Parts: []geminiPart{{Text: m.Content}},
			}
			break
		}
	}

	if len(tools) > 0 {
		group := geminiToolGroup{}
		for _, t := range tools {
			group.FunctionDeclarations = append(group.FunctionDeclarations, geminiFunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		reqBody.Tools = []geminiToolGroup{group}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", a.cfg.BaseURL, a.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.cfg.APIKey)

	resp, err := a.cfg.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("provider API error (status %d): %s", resp.StatusCode, decodeGeminiError(body))
	}

	return &geminiStream{resp: resp, dec: newSSEDecoder(resp.Body)}, nil
}

// buildGeminiContents 把统一历史转成 Gemini 轮次表示
func buildGeminiContents(messages []Message) []geminiContent {
	var contents []geminiContent

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleAssistant:
			if len(m.ToolCalls) > 0 {
				var parts []geminiPart
				for _, tc := range m.ToolCalls {
					args := json.RawMessage(tc.Function.Arguments)
					if len(args) == 0 {
						args = json.RawMessage("{}")
					}
					parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{
						Name: tc.Function.Name,
						Args: args,
					}})
				}
				contents = append(contents, geminiContent{Role: "model", Parts: parts})
				continue
			}
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		case RoleTool:
			contents = append(contents, geminiContent{
				Role: "function",
				Parts: []geminiPart{{FunctionResponse: &geminiFunctionResponse{
					Name:     "unknown_tool",
					Response: json.RawMessage(m.Content),
				}}},
			})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	// 回查前一轮的 functionCall，补全 functionResponse 的函数名
	for i := range contents {
		if contents[i].Role != "function" {
			continue
		}
		if i == 0 {
			continue
		}
		prev := contents[i-1]
		if len(prev.Parts) > 0 && prev.Parts[0].FunctionCall != nil {
			contents[i].Parts[0].FunctionResponse.Name = prev.Parts[0].FunctionCall.Name
		}
	}

	return contents
}

func decodeGeminiError(body []byte) string {
	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return "unknown error"
}

type geminiStream struct {
	resp *http.Response
	dec  *sseDecoder

	pending []StreamChunk
	usage   *Usage
	closed  bool
	done    bool
}

func (s *geminiStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Body.Close()
}

func (s *geminiStream) Recv() (StreamChunk, error) {
	for {
		if s.closed {
			return StreamChunk{}, ErrStreamClosed
		}
		if len(s.pending) > 0 {
			ck := s.pending[0]
			s.pending = s.pending[1:]
			return ck, nil
		}
		if s.done {
			return StreamChunk{}, io.EOF
		}

		data, err := s.dec.Next()
		if err != nil {
			if err == io.EOF {
				s.done = true
				continue
			}
			return StreamChunk{}, err
		}

		var chunk geminiChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return StreamChunk{}, fmt.Errorf("failed to decode stream chunk: %v", err)
		}
		if chunk.Error != nil {
			return StreamChunk{}, fmt.Errorf("provider stream error: %s", chunk.Error.Message)
		}

		if chunk.UsageMetadata != nil {
			s.usage = &Usage{
				PromptTokens:     chunk.UsageMetadata.PromptTokenCount,
				CompletionTokens: chunk.UsageMetadata.CandidatesTokenCount,
				TotalTokens:      chunk.UsageMetadata.TotalTokenCount,
			}
		}

		for _, candidate := range chunk.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					s.pending = append(s.pending, StreamChunk{Type: ChunkContent, Content: part.Text})
				}
				if part.FunctionCall != nil {
					s.pending = append(s.pending, StreamChunk{
						Type:     ChunkToolCall,
						ToolCall: normalizeGeminiToolCall(part.FunctionCall),
					})
				}
			}
			if candidate.FinishReason == "STOP" {
				s.pending = append(s.pending, StreamChunk{Type: ChunkEnd, Usage: s.usage})
			}
		}
	}
}

// normalizeGeminiToolCall Gemini 不下发调用 id，生成一个带名字前缀的
func normalizeGeminiToolCall(fc *geminiFunctionCall) *ToolCall {
	args := "{}"
	if len(fc.Args) > 0 {
		args = string(fc.Args)
	}
	return &ToolCall{
		ID:   fmt.Sprintf("%s_%s", fc.Name, uuid.NewString()),
		Type: "function",
		Function: ToolCallFunction{
			Name:      fc.Name,
			Arguments: args,
		},
	}
}
