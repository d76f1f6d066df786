package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIAdapter 对接 OpenAI Chat Completions 流式接口。
// 工具调用以增量分片下发，在流内逐片组装，新调用开始时补发
// tool_call_end 边界事件
type OpenAIAdapter struct {
	cfg Config
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIBaseURL
	}
	return &OpenAIAdapter{cfg: cfg}
}

func (a *OpenAIAdapter) SupportsToolCalling() bool {
	return true
}

func (a *OpenAIAdapter) StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (Stream, error) {
	reqBody := buildChatRequest(a.cfg, messages, tools)
	reqBody.StreamOpts = &streamOptions{IncludeUsage: true}

	resp, err := postChatCompletions(ctx, a.cfg, reqBody)
	if err != nil {
		return nil, err
	}

	return &openAIStream{resp: resp, dec: newSSEDecoder(resp.Body)}, nil
}

func postChatCompletions(ctx context.Context, cfg Config, reqBody chatCompletionRequest) (*http.Response, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := cfg.httpClient().Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("provider API error (status %d): %s", resp.StatusCode, decodeAPIError(body))
	}

	return resp, nil
}

type openAIStream struct {
	resp *http.Response
	dec  *sseDecoder

	// current 流生命周期内的工具调用累积器，不跨流共享
	current *ToolCall
	usage   *Usage

	pending  []StreamChunk
	closed   bool
	done     bool
	finished bool
}

func (s *openAIStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Body.Close()
}

func (s *openAIStream) Recv() (StreamChunk, error) {
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
				s.flushEnd()
				continue
			}
			return StreamChunk{}, err
		}

		data = bytes.TrimSpace(data)
		if bytes.Equal(data, []byte(StreamDoneMarker)) {
			s.done = true
			s.flushEnd()
			continue
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return StreamChunk{}, fmt.Errorf("failed to decode stream chunk: %v", err)
		}
		if chunk.Error != nil {
			return StreamChunk{}, fmt.Errorf("provider stream error: %s", chunk.Error.Message)
		}

		if chunk.Usage != nil {
			s.usage = &Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}

		for _, choice := range chunk.Choices {
			s.consumeChoice(choice)
		}
	}
}

func (s *openAIStream) consumeChoice(choice chunkChoice) {
	if len(choice.Delta.ToolCalls) > 0 {
		delta := choice.Delta.ToolCalls[0]

		if delta.ID != "" {
			// 新调用开始，上一个未完结的调用先发边界事件
			if s.current != nil {
				s.pending = append(s.pending, StreamChunk{Type: ChunkToolCallEnd, ToolCall: s.current})
			}
			s.current = &ToolCall{
				ID:   delta.ID,
				Type: "function",
				Function: ToolCallFunction{
					Name:      delta.Function.Name,
					Arguments: delta.Function.Arguments,
				},
			}
		} else if s.current != nil {
			s.current.Function.Name += delta.Function.Name
			s.current.Function.Arguments += delta.Function.Arguments
		}
	}

	if choice.Delta.Content != "" {
		s.pending = append(s.pending, StreamChunk{Type: ChunkContent, Content: choice.Delta.Content})
	}

	switch choice.FinishReason {
	case "tool_calls":
		if s.current != nil {
			s.pending = append(s.pending, StreamChunk{Type: ChunkToolCall, ToolCall: s.current})
			s.current = nil
		}
	case "stop":
		s.finished = true
	}
}

// flushEnd usage 计数在 stop 之后的空 choices 分片里下发，
// 终止事件延迟到流尾补发才能带上计数
func (s *openAIStream) flushEnd() {
	if !s.finished {
		return
	}
	s.finished = false
	s.pending = append(s.pending, StreamChunk{Type: ChunkEnd, Usage: s.usage})
}
