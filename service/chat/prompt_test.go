package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"vanta-agent-backend/model"
	"vanta-agent-backend/service/provider"
)

func TestBuildSystemPrompt(t *testing.T) {
	agent := &model.Agent{
		Name:         "Nova",
		Description:  "support assistant",
		SystemPrompt: "Answer politely.",
		Theme:        json.RawMessage(`{"mood":"cheerful"}`),
	}

	prompt := BuildSystemPrompt(agent)
	if !strings.HasPrefix(prompt, "Answer politely.") {
		t.Errorf("agent instruction not first: %q", prompt[:40])
	}
	for _, want := range []string{
		`named "Nova"`,
		`"support assistant"`,
		"[cheerful]",
		"ZERO HALLUCINATION",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_NoThemeNoDescription(t *testing.T) {
	prompt := BuildSystemPrompt(&model.Agent{Name: "Nova", SystemPrompt: "Hi."})
	if strings.Contains(prompt, "persona/mood") {
		t.Error("mood section present without theme")
	}
	if strings.Contains(prompt, "purpose/description") {
		t.Error("description section present without description")
	}
}

func TestBuildMessageHistory_ReversesRecentWindow(t *testing.T) {
	// 查询返回倒序的最近消息（最新在前）
	now := time.Now()
	recent := []model.Message{
		{Role: model.MessageRoleAssistant, Content: "second reply", CreatedAt: now},
		{Role: model.MessageRoleUser, Content: "second question", CreatedAt: now.Add(-time.Minute)},
		{Role: model.MessageRoleAssistant, Content: "first reply", CreatedAt: now.Add(-2 * time.Minute)},
		{Role: model.MessageRoleUser, Content: "first question", CreatedAt: now.Add(-3 * time.Minute)},
	}

	messages := BuildMessageHistory("sys", recent, "third question")
	if len(messages) != 6 {
		t.Fatalf("got %d messages, want 6", len(messages))
	}
	if messages[0].Role != provider.RoleSystem || messages[0].Content != "sys" {
		t.Errorf("messages[0] = %+v", messages[0])
	}
	wantOrder := []string{"first question", "first reply", "second question", "second reply", "third question"}
	for i, want := range wantOrder {
		if messages[i+1].Content != want {
			t.Errorf("messages[%d] = %q, want %q", i+1, messages[i+1].Content, want)
		}
	}
	if messages[1].Role != provider.RoleUser {
		t.Errorf("role not lowercased: %q", messages[1].Role)
	}
	if messages[5].Role != provider.RoleUser {
		t.Errorf("new message role = %q", messages[5].Role)
	}
}

func TestBuildMessageHistory_CarriesToolCalls(t *testing.T) {
	toolCalls, _ := json.Marshal([]provider.ToolCall{{
		ID:       "call_1",
		Type:     "function",
		Function: provider.ToolCallFunction{Name: "lookup", Arguments: "{}"},
	}})
	recent := []model.Message{
		{Role: model.MessageRoleTool, Content: `{"x":1}`, ToolCallID: "call_1"},
		{Role: model.MessageRoleAssistant, ToolCalls: toolCalls},
	}

	messages := BuildMessageHistory("sys", recent, "next")
	if len(messages[1].ToolCalls) != 1 || messages[1].ToolCalls[0].ID != "call_1" {
		t.Errorf("assistant tool calls = %+v", messages[1].ToolCalls)
	}
	if messages[2].Role != provider.RoleTool || messages[2].ToolCallID != "call_1" {
		t.Errorf("tool turn = %+v", messages[2])
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 100), 25},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
