package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sseServer(t *testing.T, lines []string, onRequest func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = w.Write([]byte("data: " + line + "\n\n"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collectChunks(t *testing.T, s Stream) []StreamChunk {
	t.Helper()
	var chunks []StreamChunk
	for {
		ck, err := s.Recv()
		if err == io.EOF {
			return chunks
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		chunks = append(chunks, ck)
	}
}

func TestOpenAIStream_ContentAndEnd(t *testing.T) {
	var gotAuth string
	srv := sseServer(t, []string{
		`{"choices":[{"delta":{"content":"Hello"}}]}`,
		`{"choices":[{"delta":{"content":" world"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`,
		"[DONE]",
	}, func(r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	})

	a := NewOpenAIAdapter(Config{APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL})
	s, err := a.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer s.Close()

	chunks := collectChunks(t, s)
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Type != ChunkContent || chunks[0].Content != "Hello" {
		t.Errorf("chunk[0] = %+v", chunks[0])
	}
	if chunks[1].Content != " world" {
		t.Errorf("chunk[1] = %+v", chunks[1])
	}
	end := chunks[2]
	if end.Type != ChunkEnd || end.Usage == nil || end.Usage.TotalTokens != 15 {
		t.Errorf("end chunk = %+v", end)
	}

	// 终止事件之后必须持续返回 io.EOF
	if _, err := s.Recv(); err != io.EOF {
		t.Errorf("Recv after end: err = %v, want io.EOF", err)
	}
}

func TestOpenAIStream_UsageAfterStop(t *testing.T) {
	// OpenAI 把 usage 放在 stop 之后的空 choices 分片里下发
	srv := sseServer(t, []string{
		`{"choices":[{"delta":{"content":"hi"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`{"choices":[],"usage":{"prompt_tokens":8,"completion_tokens":2,"total_tokens":10}}`,
		"[DONE]",
	}, nil)

	a := NewOpenAIAdapter(Config{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL})
	s, err := a.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer s.Close()

	chunks := collectChunks(t, s)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(chunks), chunks)
	}
	end := chunks[1]
	if end.Type != ChunkEnd {
		t.Fatalf("chunk[1] = %+v", end)
	}
	if end.Usage == nil || end.Usage.PromptTokens != 8 || end.Usage.TotalTokens != 10 {
		t.Errorf("usage = %+v", end.Usage)
	}
}

func TestOpenAIStream_ToolCallAssembly(t *testing.T) {
	srv := sseServer(t, []string{
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"get_weather","arguments":""}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"city\":"}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Oslo\"}"}}]}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
		"[DONE]",
	}, nil)

	a := NewOpenAIAdapter(Config{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL})
	s, err := a.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "weather?"}}, []ToolDefinition{{Name: "get_weather"}})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer s.Close()

	chunks := collectChunks(t, s)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %+v", len(chunks), chunks)
	}
	tc := chunks[0]
	if tc.Type != ChunkToolCall || tc.ToolCall == nil {
		t.Fatalf("chunk = %+v", tc)
	}
	if tc.ToolCall.ID != "call_1" || tc.ToolCall.Function.Name != "get_weather" {
		t.Errorf("tool call = %+v", tc.ToolCall)
	}
	if tc.ToolCall.Function.Arguments != `{"city":"Oslo"}` {
		t.Errorf("arguments = %q", tc.ToolCall.Function.Arguments)
	}
}

func TestOpenAIStream_MultipleToolCallBoundary(t *testing.T) {
	srv := sseServer(t, []string{
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"a","arguments":"{}"}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":1,"id":"call_2","function":{"name":"b","arguments":"{}"}}]}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
		"[DONE]",
	}, nil)

	a := NewOpenAIAdapter(Config{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL})
	s, err := a.StreamChat(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer s.Close()

	chunks := collectChunks(t, s)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(chunks), chunks)
	}
	if chunks[0].Type != ChunkToolCallEnd || chunks[0].ToolCall.ID != "call_1" {
		t.Errorf("chunk[0] = %+v", chunks[0])
	}
	if chunks[1].Type != ChunkToolCall || chunks[1].ToolCall.ID != "call_2" {
		t.Errorf("chunk[1] = %+v", chunks[1])
	}
}

func TestOpenAIAdapter_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	a := NewOpenAIAdapter(Config{APIKey: "bad", Model: "gpt-4o", BaseURL: srv.URL})
	_, err := a.StreamChat(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 401") || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("err = %v", err)
	}
}

func TestOpenRouterAdapter_BaseURL(t *testing.T) {
	a := NewOpenRouterAdapter(Config{APIKey: "k", Model: "m"})
	if a.inner.cfg.BaseURL != openRouterBaseURL {
		t.Errorf("BaseURL = %q", a.inner.cfg.BaseURL)
	}
}
