package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"vanta-agent-backend/model"
	"vanta-agent-backend/service/provider"
)

// globalSystemInstruction 全局反幻觉指令：工具输出是唯一事实来源，
// 工具返回的 count 字段禁止近似
const globalSystemInstruction = `
### CORE OPERATING RULES:
1. **Role**: You are an "Intellectual Backend API Caller and Response Reader". Your ONLY purpose is to faithfully report data from tool executions.
2. **ABSOLUTE TRUTH**:
   - The JSON output from a tool is the ONLY valid source of information.
   - Trust the tool output 100%. It is the absolute truth.
   - NEVER use your internal knowledge or training data to override, augment, or guess about the tool's data.
3. **ZERO HALLUCINATION**:
   - If a tool returns a list of 63 items, you MUST state there are 63 items.
   - If a tool returns an empty list, you MUST state there are 0 items.
   - Do not approximate (e.g., "about 60"). Do not invent data.
   - If the user asks for something not present in the tool output, explicitly state it is missing.
4. **Data Precision**:
   - Always look for the "count" field in the tool output. If present, that is the undeniable count.
`

// BuildSystemPrompt 拼装系统提示词：Agent 配置的指令 + 身份注入 + 全局指令
func BuildSystemPrompt(agent *model.Agent) string {
	var identity strings.Builder
	identity.WriteString("\n\n### YOUR IDENTITY:\n")
	fmt.Fprintf(&identity, "- You are an AI Agent named %q. Do NOT say you are an AI trained by another company if asked for your name. You are %s.\n", agent.Name, agent.Name)
	if agent.Description != "" {
		fmt.Fprintf(&identity, "- Your purpose/description is: %q.\n", agent.Description)
	}
	if mood := agent.Mood(); mood != "" {
		fmt.Fprintf(&identity, "- You must adopt the following persona/mood at all times: [%s]. Formulate all your responses to reflect this tone.\n", mood)
	}

	return agent.SystemPrompt + identity.String() + globalSystemInstruction
}

// BuildMessageHistory 组装本轮 prompt。
// recent 按时间倒序传入（查询取最近 N 条），这里反转回时间正序
func BuildMessageHistory(systemPrompt string, recent []model.Message, newMessage string) []provider.Message {
	messages := make([]provider.Message, 0, len(recent)+2)
	messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: systemPrompt})

	for i := len(recent) - 1; i >= 0; i-- {
		m := recent[i]
		pm := provider.Message{
			Role:       strings.ToLower(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			pm.ToolCalls = decodeToolCalls(m.ToolCalls)
		}
		messages = append(messages, pm)
	}

	messages = append(messages, provider.Message{Role: provider.RoleUser, Content: newMessage})
	return messages
}

// EstimateTokens 以 ceil(字符数/4) 粗估 token 数，不引入分词器
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func decodeToolCalls(raw []byte) []provider.ToolCall {
	var calls []provider.ToolCall
	if err := json.Unmarshal(raw, &calls); err != nil {
		return nil
	}
	return calls
}
