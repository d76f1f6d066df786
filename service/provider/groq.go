package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter 对接 Groq 的 OpenAI 兼容接口。
// Groq 在单个分片内下发完整的工具调用（带名字），无需跨分片组装
type GroqAdapter struct {
	cfg Config
}

func NewGroqAdapter(cfg Config) *GroqAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = groqBaseURL
	}
	return &GroqAdapter{cfg: cfg}
}

func (a *GroqAdapter) SupportsToolCalling() bool {
	return true
}

func (a *GroqAdapter) StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (Stream, error) {
	resp, err := postChatCompletions(ctx, a.cfg, buildChatRequest(a.cfg, messages, tools))
	if err != nil {
		return nil, err
	}
	return &groqStream{resp: resp, dec: newSSEDecoder(resp.Body)}, nil
}

type groqStream struct {
	resp *http.Response
	dec  *sseDecoder

	pending []StreamChunk
	closed  bool
	done    bool
}

func (s *groqStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Body.Close()
}

func (s *groqStream) Recv() (StreamChunk, error) {
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

		data = bytes.TrimSpace(data)
		if bytes.Equal(data, []byte(StreamDoneMarker)) {
			s.done = true
			s.pending = append(s.pending, StreamChunk{Type: ChunkEnd})
			continue
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// 跳过无法解析的分片，与后端偶发的心跳杂音兼容
			continue
		}
		if chunk.Error != nil {
			return StreamChunk{}, fmt.Errorf("provider stream error: %s", chunk.Error.Message)
		}

		for _, choice := range chunk.Choices {
			for _, delta := range choice.Delta.ToolCalls {
				if delta.Function.Name == "" {
					continue
				}
				id := delta.ID
				if id == "" {
					id = fmt.Sprintf("call_%d", time.Now().UnixMilli())
				}
				s.pending = append(s.pending, StreamChunk{
					Type: ChunkToolCall,
					ToolCall: &ToolCall{
						ID:   id,
						Type: "function",
						Function: ToolCallFunction{
							Name:      delta.Function.Name,
							Arguments: delta.Function.Arguments,
						},
					},
				})
			}

			if choice.Delta.Content != "" {
				s.pending = append(s.pending, StreamChunk{Type: ChunkContent, Content: choice.Delta.Content})
			}
		}
	}
}
