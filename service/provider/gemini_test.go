package provider

import (
	"context"
	"net/http"
	"testing"
)

func TestBuildGeminiContents_RolesAndNameLookback(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "you are helpful"},
		{Role: RoleUser, Content: "weather in Oslo?"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: ToolCallFunction{Name: "get_weather", Arguments: `{"city":"Oslo"}`},
		}}},
		{Role: RoleTool, ToolCallID: "call_1", Content: `{"temp":5}`},
	}

	contents := buildGeminiContents(messages)
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3 (system excluded)", len(contents))
	}
	if contents[0].Role != "user" {
		t.Errorf("contents[0].Role = %q", contents[0].Role)
	}
	if contents[1].Role != "model" || contents[1].Parts[0].FunctionCall == nil {
		t.Fatalf("contents[1] = %+v", contents[1])
	}
	fr := contents[2].Parts[0].FunctionResponse
	if fr == nil {
		t.Fatal("contents[2] missing functionResponse")
	}
	// functionResponse 的函数名从前一轮 functionCall 回查补全
	if fr.Name != "get_weather" {
		t.Errorf("functionResponse.Name = %q, want get_weather", fr.Name)
	}
}

func TestBuildGeminiContents_OrphanToolTurn(t *testing.T) {
	contents := buildGeminiContents([]Message{
		{Role: RoleTool, ToolCallID: "call_x", Content: `{}`},
	})
	if len(contents) != 1 {
		t.Fatalf("got %d contents", len(contents))
	}
	if name := contents[0].Parts[0].FunctionResponse.Name; name != "unknown_tool" {
		t.Errorf("Name = %q, want unknown_tool", name)
	}
}

func TestGeminiStream_ContentFunctionCallEnd(t *testing.T) {
	var gotKey, gotPath string
	srv := sseServer(t, []string{
		`{"candidates":[{"content":{"parts":[{"text":"Looking it up"}]}}]}`,
		`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_weather","args":{"city":"Oslo"}}}]}}]}`,
		`{"candidates":[{"content":{"parts":[]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":4,"totalTokenCount":14}}`,
	}, func(r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
	})

	a := NewGeminiAdapter(Config{APIKey: "g-key", Model: "gemini-2.0-flash", BaseURL: srv.URL})
	s, err := a.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer s.Close()

	chunks := collectChunks(t, s)
	if gotKey != "g-key" {
		t.Errorf("x-goog-api-key = %q", gotKey)
	}
	if gotPath != "/models/gemini-2.0-flash:streamGenerateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %+v", len(chunks), chunks)
	}
	if chunks[0].Type != ChunkContent || chunks[0].Content != "Looking it up" {
		t.Errorf("chunk[0] = %+v", chunks[0])
	}
	tc := chunks[1]
	if tc.Type != ChunkToolCall || tc.ToolCall.Function.Name != "get_weather" {
		t.Fatalf("chunk[1] = %+v", tc)
	}
	if tc.ToolCall.Function.Arguments != `{"city":"Oslo"}` {
		t.Errorf("arguments = %q", tc.ToolCall.Function.Arguments)
	}
	if tc.ToolCall.ID == "" {
		t.Error("tool call id not synthesized")
	}
	end := chunks[2]
	if end.Type != ChunkEnd || end.Usage == nil || end.Usage.TotalTokens != 14 {
		t.Errorf("end chunk = %+v", end)
	}
}

func TestGroqStream_ImmediateToolCall(t *testing.T) {
	srv := sseServer(t, []string{
		`{"choices":[{"delta":{"content":"On it. "}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_g","function":{"name":"lookup","arguments":"{}"}}]}}]}`,
		"not-json-heartbeat",
		"[DONE]",
	}, nil)

	a := NewGroqAdapter(Config{APIKey: "k", Model: "llama-3.3-70b-versatile", BaseURL: srv.URL})
	s, err := a.StreamChat(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer s.Close()

	chunks := collectChunks(t, s)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %+v", len(chunks), chunks)
	}
	if chunks[0].Type != ChunkContent {
		t.Errorf("chunk[0] = %+v", chunks[0])
	}
	if chunks[1].Type != ChunkToolCall || chunks[1].ToolCall.ID != "call_g" {
		t.Errorf("chunk[1] = %+v", chunks[1])
	}
	if chunks[2].Type != ChunkEnd {
		t.Errorf("chunk[2] = %+v", chunks[2])
	}
}

func TestFactory_UnsupportedProvider(t *testing.T) {
	if _, err := New("WATSON", Config{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
